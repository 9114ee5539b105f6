package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sirelang/sire/compiler"
	"github.com/sirelang/sire/compiler/config"
	"github.com/sirelang/sire/compiler/format"
	"github.com/sirelang/sire/compiler/irfile"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
	noteColor = color.New(color.FgYellow)
)

func main() {
	dumpCmd := &cli.Command{
		Name:        "dump",
		Description: "print canonical text of ir files",
		Action:      dumpAct,
		Args:        cli.Args{},
	}

	checkCmd := &cli.Command{
		Name:        "check",
		Description: "verify ir files",
		Action:      checkAct,
		Args:        cli.Args{},
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "optimize ir files and print the result",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("out,o", "", "write optimized ir file (single input only)"),
		},
	}

	app := &cli.Command{
		Name:        "sire",
		Description: "sire is a tool for inspecting and optimizing sire ir files",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("config,c", "", "toml config file"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.NewFlag("no-color", false, "disable colored output"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			dumpCmd,
			checkCmd,
			compileCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func setup(c *cli.Command) (context.Context, config.Config, error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	cfg := config.Default()

	if name := c.String("config"); name != "" {
		var err error

		cfg, err = config.Load(name)
		if err != nil {
			return ctx, cfg, errors.Wrap(err, "load config")
		}
	}

	if c.Bool("no-color") || !cfg.Output.Color {
		color.NoColor = true
	}

	return ctx, cfg, nil
}

func dumpAct(c *cli.Command) (err error) {
	ctx, _, err := setup(c)
	if err != nil {
		return err
	}

	for _, a := range c.Args {
		pkg, err := irfile.ReadFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "dump %v", a)
		}

		b, err := format.Format(ctx, nil, pkg)
		if err != nil {
			return errors.Wrap(err, "dump %v", a)
		}

		fmt.Printf("%s", b)
	}

	return nil
}

func checkAct(c *cli.Command) (err error) {
	ctx, _, err := setup(c)
	if err != nil {
		return err
	}

	var failed int

	for _, a := range c.Args {
		err := compiler.CheckFile(ctx, a)
		if err != nil {
			failed++

			fmt.Fprintf(os.Stderr, "%v %v: %v\n", errColor.Sprint("FAIL"), a, err)

			continue
		}

		fmt.Printf("%v %v\n", okColor.Sprint("ok"), a)
	}

	if failed != 0 {
		return errors.New("%d of %d files failed", failed, len(c.Args))
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}

	out := c.String("out")
	if out != "" && len(c.Args) != 1 {
		return errors.New("--out needs exactly one input, got %d", len(c.Args))
	}

	for _, a := range c.Args {
		text, err := compiler.CompileFile(ctx, a, out, cfg)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		fmt.Printf("%s", text)

		if out != "" {
			fmt.Fprintf(os.Stderr, "%v %v\n", noteColor.Sprint("written"), out)
		}
	}

	return nil
}
