package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sirelang/sire/compiler/tp"
)

func TestRenderValues(t *testing.T) {
	assert.Equal(t, "_3", Arg{Index: 3, Type: i32}.String())
	assert.Equal(t, "(const (uint 8) 255)", ConstUint(255, tp.U(8)).String())
	assert.Equal(t, "(const bool 0)", Const{Type: tp.Bool{}}.String())
	assert.Equal(t, "DefId(0:7)", fRef.String())
	assert.Equal(t, "DefId(1:2 ~ core::add)", Function[DefID]{ID: DefID{Krate: 1, Index: 2, Path: "core::add"}}.String())
	assert.Equal(t, "fib", Function[Name]{ID: "fib"}.String())
	assert.Equal(t, "p2", ConstParam{Param: tp.Const{Index: 2, Type: i32}}.String())
}

func TestRenderExprs(t *testing.T) {
	for _, tc := range []struct {
		e    Expr[Name]
		want string
	}{
		{
			e:    Apply[Name]{Func: Function[Name]{ID: "f"}, Args: []Expr[Name]{Arg{Index: 1}, Arg{Index: 2}}},
			want: "(f _1 _2)",
		},
		{
			e:    Apply[Name]{Func: Function[Name]{ID: "now"}},
			want: "(now )",
		},
		{
			e:    BinaryOp[Name]{Op: OpNe, L: Arg{Index: 1}, R: ConstUint(0, tp.U(64))},
			want: "(!= _1 (const (uint 64) 0))",
		},
		{
			e: Switch[Name]{
				Value:   Arg{Index: 1},
				Cases:   []Expr[Name]{ConstUint(0, tp.U(8)), ConstUint(1, tp.U(8))},
				Targets: []Expr[Name]{Arg{Index: 2}, Arg{Index: 3}, Arg{Index: 4}},
			},
			want: "(switch _1 ((const (uint 8) 0) -> _2) ((const (uint 8) 1) -> _3) (else -> _4))",
		},
		{
			e:    Switch[Name]{Value: Arg{Index: 1}, Targets: []Expr[Name]{Arg{Index: 2}}},
			want: "(switch _1  (else -> _2))",
		},
		{
			e:    Uninitialized{},
			want: "uninitialized",
		},
	} {
		assert.Equal(t, tc.want, tc.e.String())
		assert.Equal(t, tc.want, string(AppendExpr[Name](nil, tc.e)))
	}
}

func TestRenderOps(t *testing.T) {
	want := []string{"+", "-", "*", "/", "%", "=", "<", "<=", "!=", ">=", ">"}

	for op := OpAdd; op <= OpGt; op++ {
		x := BinaryOp[Name]{Op: op, L: Arg{Index: 1}, R: Arg{Index: 2}}

		assert.Equal(t, "("+want[op]+" _1 _2)", x.String())
	}

	for _, op := range []Op{OpBitXor, OpBitAnd, OpBitOr, OpShl, OpShr, OpOffset} {
		x := BinaryOp[Name]{Op: op, L: Arg{Index: 1}, R: Arg{Index: 2}}

		assert.Panics(t, func() { _ = x.String() }, "op %v", op)
	}
}

func TestRenderDistinct(t *testing.T) {
	variants := []Expr[DefID]{
		sample(),
		BinaryOp[DefID]{Op: OpAdd, L: arg1, R: arg2},
		BinaryOp[DefID]{Op: OpSub, L: arg1, R: arg2},
		BinaryOp[DefID]{Op: OpAdd, L: arg2, R: arg1},
		BinaryOp[DefID]{Op: OpAdd, L: arg1, R: c32(2)},
		BinaryOp[DefID]{Op: OpAdd, L: arg1, R: c32(3)},
		Apply[DefID]{Func: fRef, Args: []Expr[DefID]{arg1, arg2}},
		Apply[DefID]{Func: fRef, Args: []Expr[DefID]{arg2, arg1}},
		Apply[DefID]{Func: gRef, Args: []Expr[DefID]{arg1, arg2}},
	}

	seen := map[string]int{}

	for i, e := range variants {
		s := e.String()

		assert.Equal(t, s, variants[i].String(), "deterministic")

		if j, ok := seen[s]; ok {
			t.Errorf("variants %d and %d render the same: %s", j, i, s)
		}

		seen[s] = i
	}

	assert.Equal(t, sample().String(), sample().String())
}
