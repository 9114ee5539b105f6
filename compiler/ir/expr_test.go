package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirelang/sire/compiler/tp"
)

func c32(v uint64) Const { return ConstUint(v, tp.I(32)) }

func TestTypeBinaryOp(t *testing.T) {
	lt := BinaryOp[DefID]{Op: OpLt, L: c32(3), R: c32(4)}
	add := BinaryOp[DefID]{Op: OpAdd, L: c32(3), R: c32(4)}

	assert.Equal(t, tp.Type(tp.Bool{}), Type[DefID](lt))
	assert.Equal(t, tp.Type(tp.I(32)), Type[DefID](add))

	for op := OpAdd; op <= OpOffset; op++ {
		x := BinaryOp[Name]{Op: op, L: ConstUint(1, tp.U(16)), R: ConstUint(2, tp.U(16))}

		if op.IsComparison() {
			assert.Equal(t, tp.Type(tp.Bool{}), Type[Name](x), "op %v", op)
		} else {
			assert.Equal(t, tp.Type(tp.U(16)), Type[Name](x), "op %v", op)
		}
	}
}

func TestTypeValues(t *testing.T) {
	f := tp.Fn(tp.Bool{}, tp.I(8))

	assert.Equal(t, tp.Type(tp.I(8)), Type[DefID](Arg{Index: 1, Type: tp.I(8)}))
	assert.Equal(t, tp.Type(tp.U(64)), Type[DefID](ConstUint(1, tp.U(64))))
	assert.Equal(t, tp.Type(f), Type[DefID](Function[DefID]{ID: DefID{Index: 1}, Type: f}))
	assert.Equal(t, tp.Type(tp.U(8)), Type[DefID](ConstParam{Param: tp.Const{Index: 0, Type: tp.U(8)}}))
}

func TestTypeApply(t *testing.T) {
	f := Function[Name]{ID: "f", Type: tp.Fn(tp.Bool{}, tp.I(8))}

	call := Apply[Name]{Func: f, Args: []Expr[Name]{Arg{Index: 1, Type: tp.I(8)}}}
	assert.Equal(t, tp.Type(tp.Bool{}), Type[Name](call))

	// function returning a function
	g := Function[Name]{ID: "g", Type: tp.Fn(f.Type)}
	curried := Apply[Name]{Func: Apply[Name]{Func: g}, Args: []Expr[Name]{ConstUint(1, tp.I(8))}}
	assert.Equal(t, tp.Type(tp.Bool{}), Type[Name](curried))

	sw := Switch[Name]{
		Value:   Arg{Index: 1, Type: tp.I(8)},
		Cases:   []Expr[Name]{ConstUint(0, tp.I(8))},
		Targets: []Expr[Name]{call, ConstUint(0, tp.Bool{})},
	}
	assert.Equal(t, tp.Type(tp.Bool{}), Type[Name](sw))
}

func TestTypePanics(t *testing.T) {
	assert.Panics(t, func() { Type[Name](Uninitialized{}) })

	assert.Panics(t, func() {
		Type[Name](Apply[Name]{Func: ConstUint(1, tp.I(8))})
	}, "non-function callee")

	assert.Panics(t, func() {
		Type[Name](Apply[Name]{Func: Function[Name]{ID: "f", Type: tp.Func{}}})
	}, "empty argument type list")

	assert.Panics(t, func() {
		Type[Name](BinaryOp[Name]{Op: OpAdd, L: Uninitialized{}, R: c32(1)})
	})
}

func TestSwitchSelect(t *testing.T) {
	a, b, c := c32(10), c32(20), c32(30)

	sw := func(v uint64) Switch[DefID] {
		return Switch[DefID]{
			Value:   ConstUint(v, tp.U(8)),
			Cases:   []Expr[DefID]{ConstUint(1, tp.U(8)), ConstUint(5, tp.U(8))},
			Targets: []Expr[DefID]{a, b, c},
		}
	}

	x, ok := sw(5).Select()
	require.True(t, ok)
	assert.Equal(t, Expr[DefID](b), x)

	x, ok = sw(1).Select()
	require.True(t, ok)
	assert.Equal(t, Expr[DefID](a), x)

	x, ok = sw(7).Select()
	require.True(t, ok)
	assert.Equal(t, Expr[DefID](c), x, "default")

	dyn := sw(5)
	dyn.Value = Arg{Index: 1, Type: tp.U(8)}

	_, ok = dyn.Select()
	assert.False(t, ok)

	dyn = sw(5)
	dyn.Cases[0] = Arg{Index: 1, Type: tp.U(8)}

	_, ok = dyn.Select()
	assert.False(t, ok, "undecidable case before the match")

	assert.Panics(t, func() {
		Switch[DefID]{Value: c32(1), Targets: []Expr[DefID]{a, b}}.Select()
	})
}

func TestOp(t *testing.T) {
	s, ok := OpLe.Symbol()
	assert.True(t, ok)
	assert.Equal(t, "<=", s)

	_, ok = OpShl.Symbol()
	assert.False(t, ok)

	assert.Equal(t, "Shl", OpShl.String())
	assert.Equal(t, "Op(200)", Op(200).String())
}
