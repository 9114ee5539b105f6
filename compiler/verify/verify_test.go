package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirelang/sire/compiler/ir"
	"github.com/sirelang/sire/compiler/tp"
)

type R = ir.Expr[ir.DefID]

var (
	i32   = tp.I(32)
	unary = tp.Fn(i32, i32)

	p0 = tp.Const{Index: 0, Type: i32}

	fID = ir.DefID{Index: 1}
	gID = ir.DefID{Index: 2}
)

func def(t tp.Func, body R) *ir.FuncDef[ir.DefID] {
	return &ir.FuncDef[ir.DefID]{ID: fID, Type: t, Body: body}
}

func arg(i int) ir.Arg { return ir.Arg{Index: i, Type: i32} }

func TestFuncOK(t *testing.T) {
	g := ir.Function[ir.DefID]{ID: gID, Type: unary}

	f := def(tp.Func{Args: []tp.Type{i32, i32, i32}, Params: []tp.Param{p0}}, ir.Switch[ir.DefID]{
		Value: ir.BinaryOp[ir.DefID]{Op: ir.OpLt, L: arg(1), R: arg(2)},
		Cases: []R{ir.ConstUint(1, tp.Bool{})},
		Targets: []R{
			ir.Apply[ir.DefID]{Func: g, Args: []R{arg(1)}},
			ir.BinaryOp[ir.DefID]{Op: ir.OpMul, L: arg(2), R: ir.ConstParam{Param: p0}},
		},
	})

	assert.NoError(t, Func(f))
}

func TestFuncDefects(t *testing.T) {
	g := ir.Function[ir.DefID]{ID: gID, Type: unary}

	for name, f := range map[string]*ir.FuncDef[ir.DefID]{
		"uninitialized": def(unary, ir.BinaryOp[ir.DefID]{Op: ir.OpAdd, L: arg(1), R: ir.Uninitialized{}}),
		"no_body":       def(unary, nil),
		"no_result":     def(tp.Func{}, arg(1)),
		"arg_zero":      def(unary, ir.Arg{Index: 0, Type: i32}),
		"arg_beyond":    def(unary, arg(2)),
		"arg_type":      def(unary, ir.Arg{Index: 1, Type: tp.U(32)}),
		"untyped_const": def(unary, ir.Const{}),
		"undeclared":    def(unary, ir.ConstParam{Param: p0}),
		"nil_param":     def(unary, ir.ConstParam{}),
		"switch_shape": def(unary, ir.Switch[ir.DefID]{
			Value:   arg(1),
			Cases:   []R{ir.ConstUint(0, i32)},
			Targets: []R{arg(1)},
		}),
		"arity":       def(unary, ir.Apply[ir.DefID]{Func: g, Args: []R{arg(1), arg(1)}}),
		"non_func":    def(unary, ir.Apply[ir.DefID]{Func: arg(1)}),
		"func_type":   def(unary, ir.Function[ir.DefID]{ID: gID, Type: i32}),
		"nil_operand": def(unary, ir.BinaryOp[ir.DefID]{Op: ir.OpAdd, L: arg(1)}),
		"callee_placeholder": def(unary, ir.Apply[ir.DefID]{
			Func: ir.Switch[ir.DefID]{Value: arg(1), Targets: []R{ir.Uninitialized{}}},
		}),
	} {
		assert.Error(t, Func(f), name)
	}
}

func TestArgNumbering(t *testing.T) {
	binary := tp.Fn(i32, i32, i32)

	assert.NoError(t, Func(def(binary, arg(1))), "first argument")
	assert.NoError(t, Func(def(binary, arg(2))), "last argument")

	err := Func(def(binary, arg(0)))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "result slot")
	}

	assert.Error(t, Func(def(binary, arg(3))))
	assert.Error(t, Func(def(binary, ir.Arg{Index: -1, Type: i32})))

	// a self call passes its first argument as Arg 1
	self := def(unary, nil)
	self.Body = ir.Apply[ir.DefID]{Func: self.Ref(), Args: []R{arg(1)}}

	assert.NoError(t, Func(self))
}

func TestSymbolicTier(t *testing.T) {
	p := tp.Const{Index: 0, Type: i32}

	f := &ir.FuncDef[ir.Name]{
		ID:   "f",
		Type: tp.Func{Args: []tp.Type{i32}, Params: []tp.Param{p}},
		Body: ir.ConstUint(0, i32),
	}

	assert.Error(t, Func(f), "params declared")

	f = &ir.FuncDef[ir.Name]{
		ID:   "f",
		Type: unary,
		Body: ir.ConstParam{Param: p},
	}

	assert.Error(t, Func(f), "const param referenced")
}

func TestPackage(t *testing.T) {
	ctx := context.Background()

	ok := &ir.Package[ir.DefID]{
		Path: "ok",
		Funcs: []*ir.FuncDef[ir.DefID]{
			{ID: fID, Type: unary, Body: arg(1)},
			{ID: gID, Type: unary, Body: ir.Apply[ir.DefID]{Func: ir.Function[ir.DefID]{ID: fID, Type: unary}, Args: []R{arg(1)}}},
		},
	}

	require.NoError(t, Package(ctx, ok))

	bad := &ir.Package[ir.DefID]{
		Path: "bad",
		Funcs: []*ir.FuncDef[ir.DefID]{
			{ID: fID, Type: unary, Body: arg(1)},
			{ID: gID, Type: unary, Body: ir.Uninitialized{}},
		},
	}

	assert.Error(t, Package(ctx, bad))

	dup := &ir.Package[ir.DefID]{
		Funcs: []*ir.FuncDef[ir.DefID]{
			{ID: fID, Type: unary, Body: arg(1)},
			{ID: fID, Type: unary, Body: arg(1)},
		},
	}

	assert.Error(t, Package(ctx, dup))
}
