package ir

import (
	"github.com/sirelang/sire/compiler/tp"
)

type (
	// FuncDef is one compiled function.
	// ID and Type are fixed at construction, Body is republished by substitution.
	FuncDef[ID Ident] struct {
		ID   ID
		Body Expr[ID]
		Type tp.Func
	}

	Package[ID Ident] struct {
		Path string

		Funcs []*FuncDef[ID]
	}
)

// Symbolic tier.
type (
	SymExpr    = Expr[Name]
	SymFuncDef = FuncDef[Name]
	SymPackage = Package[Name]
)

// Resolved tier.
type (
	ResExpr    = Expr[DefID]
	ResFuncDef = FuncDef[DefID]
	ResPackage = Package[DefID]
)

// Ref is the value referencing f.
func (f *FuncDef[ID]) Ref() Function[ID] {
	return Function[ID]{ID: f.ID, Type: f.Type}
}

// IsRecursive reports whether the body references f itself.
// Indirect recursion and references through constant parameters are not detected.
func (f *FuncDef[ID]) IsRecursive() bool {
	return Contains[ID](f.Body, f.Ref())
}

// Replace substitutes target with sub in the body.
func (f *FuncDef[ID]) Replace(target, sub Expr[ID]) {
	f.Body = Replace[ID](f.Body, target, sub)
}

func (f *FuncDef[ID]) AppendTo(b []byte) []byte {
	b = append(b, "(defun "...)
	b = append(b, f.ID.String()...)
	b = append(b, '<')
	b = tp.AppendParams(b, f.Type.Params)
	b = append(b, "> "...)
	b = f.Type.AppendTo(b)
	b = append(b, ' ')
	b = AppendExpr[ID](b, f.Body)
	b = append(b, ')')

	return b
}

func (f *FuncDef[ID]) String() string { return string(f.AppendTo(nil)) }

// Indices maps function identities to their positions in Funcs.
// A duplicated identity maps to its last definition.
func (p *Package[ID]) Indices() map[ID]int {
	idx := make(map[ID]int, len(p.Funcs))

	for i, f := range p.Funcs {
		idx[f.ID] = i
	}

	return idx
}

// AppendTo renders functions one per line.
func (p *Package[ID]) AppendTo(b []byte) []byte {
	for _, f := range p.Funcs {
		b = f.AppendTo(b)
		b = append(b, '\n')
	}

	return b
}
