package ir

import (
	"tlog.app/go/errors"
)

// MaxDepth limits expression nesting for rendering.
const MaxDepth = 1 << 14

// AppendExpr appends canonical text of e to b.
func AppendExpr[ID Ident](b []byte, e Expr[ID]) []byte {
	return appendExpr[ID](b, e, 0)
}

func appendExpr[ID Ident](b []byte, e Expr[ID], d int) []byte {
	if d > MaxDepth {
		panic(errors.New("expression nesting exceeds %d", MaxDepth))
	}

	switch x := e.(type) {
	case Apply[ID]:
		b = append(b, '(')
		b = appendExpr[ID](b, x.Func, d+1)
		b = append(b, ' ')

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ' ')
			}

			b = appendExpr[ID](b, a, d+1)
		}

		b = append(b, ')')
	case BinaryOp[ID]:
		sym, ok := x.Op.Symbol()
		if !ok {
			panic(errors.New("unsupported binary operator: %v", x.Op))
		}

		b = append(b, '(')
		b = append(b, sym...)
		b = append(b, ' ')
		b = appendExpr[ID](b, x.L, d+1)
		b = append(b, ' ')
		b = appendExpr[ID](b, x.R, d+1)
		b = append(b, ')')
	case Switch[ID]:
		if len(x.Targets) != len(x.Cases)+1 {
			panic(errors.New("switch with %d cases and %d targets", len(x.Cases), len(x.Targets)))
		}

		b = append(b, "(switch "...)
		b = appendExpr[ID](b, x.Value, d+1)
		b = append(b, ' ')

		for i, c := range x.Cases {
			if i != 0 {
				b = append(b, ' ')
			}

			b = append(b, '(')
			b = appendExpr[ID](b, c, d+1)
			b = append(b, " -> "...)
			b = appendExpr[ID](b, x.Targets[i], d+1)
			b = append(b, ')')
		}

		b = append(b, " (else -> "...)
		b = appendExpr[ID](b, x.Targets[len(x.Targets)-1], d+1)
		b = append(b, "))"...)
	case nil:
		panic(errors.New("nil expression"))
	default:
		b = e.AppendTo(b)
	}

	return b
}
