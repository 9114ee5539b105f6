package tp

import (
	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
)

type (
	// Param is a compile-time constant parameter declared on a function type.
	Param interface {
		ParamType() Type
		AppendTo(b []byte) []byte
		String() string
	}

	// Const is the Index-th constant parameter.
	Const struct {
		Index int
		Type  Type
	}
)

func (p Const) ParamType() Type { return p.Type }

func (p Const) AppendTo(b []byte) []byte {
	return hfmt.Appendf(b, "(p%d %v)", p.Index, p.Type)
}

func (p Const) String() string { return string(p.AppendTo(nil)) }

// ParamEqual reports whether both index and type match.
func ParamEqual(a, b Param) bool {
	switch a := a.(type) {
	case Const:
		b, ok := b.(Const)
		return ok && a.Index == b.Index && Equal(a.Type, b.Type)
	case nil:
		return b == nil
	default:
		panic(errors.New("unsupported param: %T", a))
	}
}

// AppendParams renders params space separated.
func AppendParams(b []byte, ps []Param) []byte {
	for i, p := range ps {
		if i != 0 {
			b = append(b, ' ')
		}

		b = p.AppendTo(b)
	}

	return b
}
