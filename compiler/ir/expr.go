package ir

import (
	"strconv"

	"tlog.app/go/errors"

	"github.com/sirelang/sire/compiler/tp"
)

type (
	// Expr is a node of a function body tree.
	// Trees are immutable once built, substitution produces new trees
	// sharing unchanged subtrees with the old ones.
	Expr[ID Ident] interface {
		AppendTo(b []byte) []byte
		String() string

		expr()
	}

	Apply[ID Ident] struct {
		Func Expr[ID]
		Args []Expr[ID]
	}

	BinaryOp[ID Ident] struct {
		Op   Op
		L, R Expr[ID]
	}

	// Switch selects Targets[i] for the first Cases[i] equal to Value,
	// the last target is the default.
	Switch[ID Ident] struct {
		Value   Expr[ID]
		Cases   []Expr[ID]
		Targets []Expr[ID]
	}

	// Uninitialized is a placeholder for a value not yet produced.
	Uninitialized struct{}

	Op uint8
)

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpLt
	OpLe
	OpNe
	OpGe
	OpGt

	// Produced upstream, not representable in rendered output.
	OpBitXor
	OpBitAnd
	OpBitOr
	OpShl
	OpShr
	OpOffset
)

var opSymbols = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpRem: "%",
	OpEq:  "=",
	OpLt:  "<",
	OpLe:  "<=",
	OpNe:  "!=",
	OpGe:  ">=",
	OpGt:  ">",
}

func (op Op) IsComparison() bool {
	switch op {
	case OpEq, OpLt, OpLe, OpNe, OpGe, OpGt:
		return true
	}

	return false
}

// Symbol is the rendered operator. ok is false for ops outside the fixed table.
func (op Op) Symbol() (s string, ok bool) {
	if int(op) >= len(opSymbols) {
		return "", false
	}

	return opSymbols[op], true
}

func (op Op) String() string {
	if s, ok := op.Symbol(); ok {
		return s
	}

	switch op {
	case OpBitXor:
		return "BitXor"
	case OpBitAnd:
		return "BitAnd"
	case OpBitOr:
		return "BitOr"
	case OpShl:
		return "Shl"
	case OpShr:
		return "Shr"
	case OpOffset:
		return "Offset"
	}

	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// Type derives the type e evaluates to.
// It panics on malformed trees: Uninitialized nodes, Apply of a non-function
// or of a function type without a result slot, Switch without targets.
func Type[ID Ident](e Expr[ID]) tp.Type {
	results := 0 // pending Apply nodes on the derivation path

	var t tp.Type

loop:
	for {
		switch x := e.(type) {
		case Value[ID]:
			t = x.ValueType()
			break loop
		case Apply[ID]:
			results++
			e = x.Func
		case BinaryOp[ID]:
			if x.Op.IsComparison() {
				t = tp.Bool{}
				break loop
			}

			e = x.L
		case Switch[ID]:
			if len(x.Targets) == 0 {
				panic(errors.New("type of switch without targets"))
			}

			e = x.Targets[0]
		case Uninitialized:
			panic(errors.New("type of uninitialized expression"))
		default:
			panic(errors.New("unsupported expression: %T", e))
		}
	}

	for ; results > 0; results-- {
		f, ok := t.(tp.Func)
		if !ok {
			panic(errors.New("apply of non-function type %v", t))
		}

		if len(f.Args) == 0 {
			panic(errors.New("apply of function type without result slot"))
		}

		t = f.Args[0]
	}

	return t
}

// Select picks the target the switch evaluates to when it can be decided statically:
// the scrutinee and every case compared before the match must be constants.
func (s Switch[ID]) Select() (Expr[ID], bool) {
	if len(s.Targets) != len(s.Cases)+1 {
		panic(errors.New("switch with %d cases and %d targets", len(s.Cases), len(s.Targets)))
	}

	v, ok := s.Value.(Const)
	if !ok {
		return nil, false
	}

	for i, c := range s.Cases {
		c, ok := c.(Const)
		if !ok {
			return nil, false
		}

		if v.SameLiteral(c) {
			return s.Targets[i], true
		}
	}

	return s.Targets[len(s.Targets)-1], true
}

func (x Apply[ID]) AppendTo(b []byte) []byte    { return appendExpr[ID](b, x, 0) }
func (x BinaryOp[ID]) AppendTo(b []byte) []byte { return appendExpr[ID](b, x, 0) }
func (x Switch[ID]) AppendTo(b []byte) []byte   { return appendExpr[ID](b, x, 0) }

func (x Uninitialized) AppendTo(b []byte) []byte { return append(b, "uninitialized"...) }

func (x Apply[ID]) String() string    { return string(x.AppendTo(nil)) }
func (x BinaryOp[ID]) String() string { return string(x.AppendTo(nil)) }
func (x Switch[ID]) String() string   { return string(x.AppendTo(nil)) }

func (x Uninitialized) String() string { return "uninitialized" }

func (Apply[ID]) expr()     {}
func (BinaryOp[ID]) expr()  {}
func (Switch[ID]) expr()    {}
func (Uninitialized) expr() {}
