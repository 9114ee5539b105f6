package tp

import (
	"strconv"

	"tlog.app/go/errors"
)

type (
	// Type is a value type of the IR.
	// Scalars have a fixed bit width, functions have none.
	Type interface {
		Size() (bits int, ok bool)
		AppendTo(b []byte) []byte
		String() string
	}

	// Int is a signed or unsigned integer of Bits width.
	Int struct {
		Bits   int
		Signed bool
	}

	// Bool is sized as a byte.
	Bool struct{}

	// Func is a function type.
	// Args[0] is the result type, Args[1:] are the runtime argument types.
	// Params are compile-time constant parameters, resolved tier only.
	Func struct {
		Args   []Type
		Params []Param
	}
)

// I is a signed integer type.
func I(bits int) Int { return Int{Bits: bits, Signed: true} }

// U is an unsigned integer type.
func U(bits int) Int { return Int{Bits: bits} }

// Fn is a function type without constant parameters.
func Fn(res Type, args ...Type) Func {
	return Func{Args: append([]Type{res}, args...)}
}

func (x Int) Size() (int, bool) { return x.Bits, true }

func (x Bool) Size() (int, bool) { return 8, true }

func (x Func) Size() (int, bool) { return 0, false }

// Result is the first slot of the argument type list.
func (x Func) Result() Type {
	if len(x.Args) == 0 {
		panic(errors.New("function type without result slot"))
	}

	return x.Args[0]
}

// Arity is the number of runtime arguments.
func (x Func) Arity() int {
	if len(x.Args) == 0 {
		return 0
	}

	return len(x.Args) - 1
}

func (x Int) AppendTo(b []byte) []byte {
	if x.Signed {
		b = append(b, "(int "...)
	} else {
		b = append(b, "(uint "...)
	}

	b = strconv.AppendInt(b, int64(x.Bits), 10)

	return append(b, ')')
}

func (x Bool) AppendTo(b []byte) []byte {
	return append(b, "bool"...)
}

// AppendTo renders argument types only. Params are rendered by the function definition.
func (x Func) AppendTo(b []byte) []byte {
	for i, a := range x.Args {
		if i != 0 {
			b = append(b, ' ')
		}

		b = a.AppendTo(b)
	}

	return b
}

func (x Int) String() string  { return string(x.AppendTo(nil)) }
func (x Bool) String() string { return "bool" }
func (x Func) String() string { return string(x.AppendTo(nil)) }

// Equal is structural type equality.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case Int:
		b, ok := b.(Int)
		return ok && a == b
	case Bool:
		_, ok := b.(Bool)
		return ok
	case Func:
		b, ok := b.(Func)
		if !ok || len(a.Args) != len(b.Args) || len(a.Params) != len(b.Params) {
			return false
		}

		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}

		for i := range a.Params {
			if !ParamEqual(a.Params[i], b.Params[i]) {
				return false
			}
		}

		return true
	case nil:
		return b == nil
	default:
		panic(errors.New("unsupported type: %T", a))
	}
}
