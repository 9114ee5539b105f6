package config

import (
	"github.com/BurntSushi/toml"
	"tlog.app/go/errors"
)

type (
	Config struct {
		Inline Inline `toml:"inline"`
		Fold   Fold   `toml:"fold"`
		Verify Verify `toml:"verify"`
		Output Output `toml:"output"`
	}

	Inline struct {
		Enabled   bool `toml:"enabled"`
		MaxRounds int  `toml:"max_rounds"`
	}

	Fold struct {
		Enabled bool `toml:"enabled"`
	}

	Verify struct {
		Enabled bool `toml:"enabled"`
	}

	Output struct {
		Color bool `toml:"color"`

		// Parallel bounds concurrent per function work, 0 means unbounded.
		Parallel int `toml:"parallel"`
	}
)

func Default() Config {
	return Config{
		Inline: Inline{Enabled: true, MaxRounds: 256},
		Fold:   Fold{Enabled: true},
		Verify: Verify{Enabled: true},
		Output: Output{Color: true},
	}
}

// Load decodes a TOML file over the defaults.
func Load(name string) (Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(name, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(err, "decode %v", name)
	}

	if u := meta.Undecoded(); len(u) != 0 {
		return Config{}, errors.New("%v: unknown keys: %v", name, u)
	}

	return cfg, cfg.Check()
}

// Parse decodes TOML text over the defaults.
func Parse(text string) (Config, error) {
	cfg := Default()

	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(err, "decode")
	}

	if u := meta.Undecoded(); len(u) != 0 {
		return Config{}, errors.New("unknown keys: %v", u)
	}

	return cfg, cfg.Check()
}

func (c Config) Check() error {
	if c.Inline.MaxRounds < 0 {
		return errors.New("inline.max_rounds: negative")
	}

	if c.Output.Parallel < 0 {
		return errors.New("output.parallel: negative")
	}

	return nil
}
