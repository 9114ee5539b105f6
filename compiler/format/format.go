package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"golang.org/x/sync/errgroup"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sirelang/sire/compiler/ir"
)

type (
	appender interface {
		AppendTo(b []byte) []byte
	}
)

// Format appends the canonical text of a package, function, expression, type or param.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	switch x := x.(type) {
	case *ir.Package[ir.Name]:
		return Package(ctx, b, x, 0)
	case *ir.Package[ir.DefID]:
		return Package(ctx, b, x, 0)
	case appender:
		return x.AppendTo(b), nil
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

// Package renders functions concurrently, at most parallel at once if positive,
// and joins them in package order. Parallel 1 renders in place.
func Package[ID ir.Ident](ctx context.Context, b []byte, pkg *ir.Package[ID], parallel int) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "format: package", "pkg", pkg.Path, "funcs", len(pkg.Funcs))
	defer tr.Finish("err", &err)

	b = hfmt.Appendf(b, "; package %v (%v)\n", pkg.Path, ir.TierOf[ID]())

	if parallel == 1 || len(pkg.Funcs) < 2 {
		return pkg.AppendTo(b), nil
	}

	out := make([][]byte, len(pkg.Funcs))

	g, ctx := errgroup.WithContext(ctx)

	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for i, f := range pkg.Funcs {
		i, f := i, f

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			out[i] = f.AppendTo(nil)

			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		return nil, errors.Wrap(err, "render")
	}

	for _, f := range out {
		b = append(b, f...)
		b = append(b, '\n')
	}

	return b, nil
}
