package opt

import (
	"github.com/sirelang/sire/compiler/ir"
)

// Fold replaces switches on constants with the selected target.
// It returns the folded tree and the number of switches removed.
func Fold[ID ir.Ident](e ir.Expr[ID]) (_ ir.Expr[ID], n int) {
	for {
		changed := false

		e = ir.Rewrite[ID](e, func(x ir.Expr[ID]) (ir.Expr[ID], bool) {
			sw, ok := x.(ir.Switch[ID])
			if !ok {
				return nil, false
			}

			t, ok := sw.Select()
			if !ok {
				return nil, false
			}

			changed = true
			n++

			return t, true
		})

		if !changed {
			return e, n
		}
	}
}

// FoldFunc folds the body of f in place.
func FoldFunc[ID ir.Ident](f *ir.FuncDef[ID]) int {
	body, n := Fold[ID](f.Body)

	f.Body = body

	return n
}
