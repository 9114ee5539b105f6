package ir

import (
	"math/big"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/sirelang/sire/compiler/tp"
)

type (
	// Value is a leaf of an expression tree.
	Value[ID Ident] interface {
		Expr[ID]

		ValueType() tp.Type
	}

	// Arg is a reference to the Index-th runtime argument.
	// Indexes are aligned with function type slots, so the first argument is 1.
	Arg struct {
		Index int
		Type  tp.Type
	}

	// Const is a literal. Lit is an unsigned magnitude, nil means zero.
	Const struct {
		Lit  *big.Int
		Type tp.Type
	}

	// Function is a reference to a function definition.
	Function[ID Ident] struct {
		ID   ID
		Type tp.Type
	}

	// ConstParam is a reference to a constant parameter of the enclosing function.
	ConstParam struct {
		Param tp.Param
	}
)

// ConstUint makes a constant from a machine word.
func ConstUint(v uint64, t tp.Type) Const {
	return Const{Lit: new(big.Int).SetUint64(v), Type: t}
}

func (x Arg) ValueType() tp.Type         { return x.Type }
func (x Const) ValueType() tp.Type       { return x.Type }
func (x Function[ID]) ValueType() tp.Type { return x.Type }
func (x ConstParam) ValueType() tp.Type  { return x.Param.ParamType() }

// Literal returns the magnitude, never nil.
func (x Const) Literal() *big.Int {
	if x.Lit == nil {
		return new(big.Int)
	}

	if x.Lit.Sign() < 0 {
		panic(errors.New("negative constant magnitude: %v", x.Lit))
	}

	return x.Lit
}

// SameLiteral compares magnitudes ignoring types.
func (x Const) SameLiteral(y Const) bool {
	return x.Literal().Cmp(y.Literal()) == 0
}

func (x Arg) AppendTo(b []byte) []byte {
	return hfmt.Appendf(b, "_%d", x.Index)
}

func (x Const) AppendTo(b []byte) []byte {
	b = append(b, "(const "...)
	b = x.Type.AppendTo(b)
	b = append(b, ' ')
	b = x.Literal().Append(b, 10)

	return append(b, ')')
}

func (x Function[ID]) AppendTo(b []byte) []byte {
	return append(b, x.ID.String()...)
}

func (x ConstParam) AppendTo(b []byte) []byte {
	switch p := x.Param.(type) {
	case tp.Const:
		return hfmt.Appendf(b, "p%d", p.Index)
	default:
		panic(errors.New("unsupported param: %T", p))
	}
}

func (x Arg) String() string          { return string(x.AppendTo(nil)) }
func (x Const) String() string        { return string(x.AppendTo(nil)) }
func (x Function[ID]) String() string { return x.ID.String() }
func (x ConstParam) String() string   { return string(x.AppendTo(nil)) }

func (Arg) expr()          {}
func (Const) expr()        {}
func (Function[ID]) expr() {}
func (ConstParam) expr()   {}
