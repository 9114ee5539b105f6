package verify

import (
	"context"

	"golang.org/x/sync/errgroup"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sirelang/sire/compiler/ir"
	"github.com/sirelang/sire/compiler/tp"
)

// Package checks every function concurrently and returns the first defect found.
func Package[ID ir.Ident](ctx context.Context, pkg *ir.Package[ID]) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "verify: package", "pkg", pkg.Path, "funcs", len(pkg.Funcs))
	defer tr.Finish("err", &err)

	seen := make(map[ID]int, len(pkg.Funcs))

	for i, f := range pkg.Funcs {
		if j, ok := seen[f.ID]; ok {
			return errors.New("func %v defined twice: %d and %d", f.ID, j, i)
		}

		seen[f.ID] = i
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, f := range pkg.Funcs {
		f := f

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			err := Func(f)
			if err != nil {
				return errors.Wrap(err, "func %v", f.ID)
			}

			return nil
		})
	}

	return g.Wait()
}

// Func checks that f is closed and well shaped.
// Arguments are numbered from 1 to the arity, Arg 0 names the result slot
// of the function type and is rejected in a body.
// Operand types are not checked.
func Func[ID ir.Ident](f *ir.FuncDef[ID]) (err error) {
	var zero ID

	if len(f.Type.Args) == 0 {
		return errors.New("function type without result slot")
	}

	if len(f.Type.Params) != 0 && !zero.HasConstParams() {
		return errors.New("constant parameters in a tier without them")
	}

	if f.Body == nil {
		return errors.New("no body")
	}

	var nodes []ir.Expr[ID]

	ir.Walk[ID](f.Body, func(x ir.Expr[ID]) bool {
		nodes = append(nodes, x)
		return true
	})

	// reversed pre-order: descendants are checked before their parent,
	// so deriving callee types below never meets a malformed subtree
	for i := len(nodes) - 1; i >= 0; i-- {
		err = node(f, nodes[i])
		if err != nil {
			return err
		}
	}

	return nil
}

func node[ID ir.Ident](f *ir.FuncDef[ID], x ir.Expr[ID]) error {
	switch x := x.(type) {
	case ir.Uninitialized:
		return errors.New("uninitialized expression")
	case nil:
		return errors.New("nil expression")
	case ir.Arg:
		if x.Index == 0 {
			return errors.New("%v: argument 0 is the result slot, arguments start at 1", x)
		}

		if x.Index < 1 || x.Index > f.Type.Arity() {
			return errors.New("%v: argument outside of arity %d", x, f.Type.Arity())
		}

		if !tp.Equal(x.Type, f.Type.Args[x.Index]) {
			return errors.New("%v: type %v, declared %v", x, x.Type, f.Type.Args[x.Index])
		}
	case ir.Const:
		if x.Lit != nil && x.Lit.Sign() < 0 {
			return errors.New("%v: negative literal", x.Lit)
		}

		if x.Type == nil {
			return errors.New("untyped constant")
		}
	case ir.Function[ID]:
		if _, ok := x.Type.(tp.Func); !ok {
			return errors.New("%v: function of non-function type %v", x.ID, x.Type)
		}
	case ir.ConstParam:
		if x.Param == nil {
			return errors.New("constant parameter without param")
		}

		var zero ID

		if !zero.HasConstParams() {
			return errors.New("%v: constant parameter in a tier without them", x)
		}

		found := false

		for _, p := range f.Type.Params {
			found = found || tp.ParamEqual(p, x.Param)
		}

		if !found {
			return errors.New("%v: undeclared constant parameter", x)
		}
	case ir.Apply[ID]:
		if x.Func == nil {
			return errors.New("apply of nil")
		}

		t := ir.Type[ID](x.Func)

		ft, ok := t.(tp.Func)
		if !ok {
			return errors.New("apply of non-function type %v", t)
		}

		if len(ft.Args) == 0 {
			return errors.New("apply of function type without result slot")
		}

		if len(x.Args) != ft.Arity() {
			return errors.New("apply of %v: %d args for arity %d", ft, len(x.Args), ft.Arity())
		}
	case ir.BinaryOp[ID]:
		if x.L == nil || x.R == nil {
			return errors.New("binary op %v: missing operand", x.Op)
		}
	case ir.Switch[ID]:
		if x.Value == nil {
			return errors.New("switch without scrutinee")
		}

		if len(x.Targets) != len(x.Cases)+1 {
			return errors.New("switch with %d cases and %d targets", len(x.Cases), len(x.Targets))
		}
	}

	return nil
}
