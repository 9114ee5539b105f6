package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sirelang/sire/compiler/config"
	"github.com/sirelang/sire/compiler/format"
	"github.com/sirelang/sire/compiler/ir"
	"github.com/sirelang/sire/compiler/irfile"
	"github.com/sirelang/sire/compiler/opt"
	"github.com/sirelang/sire/compiler/verify"
)

type (
	Result[ID ir.Ident] struct {
		Package *ir.Package[ID]
		Report  opt.Report[ID]

		// Folded is the number of switches resolved to a single target.
		Folded int

		Text []byte
	}
)

// CompileFile compiles the package stored in name.
// The optimized package is written to out unless it is empty.
func CompileFile(ctx context.Context, name, out string, cfg config.Config) (text []byte, err error) {
	x, err := irfile.ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}

	switch pkg := x.(type) {
	case *ir.Package[ir.Name]:
		return compileTo(ctx, pkg, out, cfg)
	case *ir.Package[ir.DefID]:
		return compileTo(ctx, pkg, out, cfg)
	default:
		return nil, errors.New("unsupported package: %T", x)
	}
}

// CheckFile verifies the package stored in name.
func CheckFile(ctx context.Context, name string) error {
	x, err := irfile.ReadFile(ctx, name)
	if err != nil {
		return err
	}

	switch pkg := x.(type) {
	case *ir.Package[ir.Name]:
		return verify.Package(ctx, pkg)
	case *ir.Package[ir.DefID]:
		return verify.Package(ctx, pkg)
	default:
		return errors.New("unsupported package: %T", x)
	}
}

func compileTo[ID ir.Ident](ctx context.Context, pkg *ir.Package[ID], out string, cfg config.Config) ([]byte, error) {
	res, err := Compile(ctx, pkg, cfg)
	if err != nil {
		return nil, err
	}

	if out == "" {
		return res.Text, nil
	}

	err = irfile.WriteFile(ctx, out, res.Package)
	if err != nil {
		return nil, errors.Wrap(err, "write %v", out)
	}

	return res.Text, nil
}

// Compile optimizes pkg in place and renders the result.
func Compile[ID ir.Ident](ctx context.Context, pkg *ir.Package[ID], cfg config.Config) (res *Result[ID], err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "pkg", pkg.Path, "tier", ir.TierOf[ID]())
	defer tr.Finish("err", &err)

	err = cfg.Check()
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}

	res = &Result[ID]{Package: pkg}

	if cfg.Verify.Enabled {
		err = verify.Package(ctx, pkg)
		if err != nil {
			return nil, errors.Wrap(err, "verify")
		}
	}

	if cfg.Inline.Enabled {
		res.Report, err = opt.Inline(ctx, pkg, opt.Options{MaxRounds: cfg.Inline.MaxRounds})
		if err != nil {
			return nil, errors.Wrap(err, "inline")
		}
	} else {
		res.Report = opt.Recursion(pkg)
	}

	if cfg.Fold.Enabled {
		for _, f := range pkg.Funcs {
			res.Folded += opt.FoldFunc(f)
		}

		tr.V("fold").Printw("folded", "switches", res.Folded)
	}

	if tr.If("dump_ir") {
		for _, f := range pkg.Funcs {
			tr.Printw("func", "id", f.ID, "ir", f.String())
		}
	}

	res.Text, err = format.Package(ctx, nil, pkg, cfg.Output.Parallel)
	if err != nil {
		return nil, errors.Wrap(err, "format")
	}

	return res, nil
}
