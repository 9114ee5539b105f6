package opt

import (
	"github.com/sirelang/sire/compiler/ir"
	"github.com/sirelang/sire/compiler/set"
)

// CallGraph returns for each package function the set of package functions its body references.
func CallGraph[ID ir.Ident](pkg *ir.Package[ID]) []set.Bits[int] {
	idx := pkg.Indices()

	g := make([]set.Bits[int], len(pkg.Funcs))

	for i, f := range pkg.Funcs {
		ir.Walk[ID](f.Body, func(x ir.Expr[ID]) bool {
			if fn, ok := x.(ir.Function[ID]); ok {
				if j, ok := idx[fn.ID]; ok {
					g[i].Set(j)
				}
			}

			return true
		})
	}

	return g
}

// Cycles returns functions lying on a call graph cycle, self loops included.
func Cycles(g []set.Bits[int]) (r set.Bits[int]) {
	for i := range g {
		if reaches(g, i, i) {
			r.Set(i)
		}
	}

	return r
}

func reaches(g []set.Bits[int], from, to int) bool {
	var seen set.Bits[int]

	stack := g[from].Slice()

	for len(stack) != 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n == to {
			return true
		}

		if seen.IsSet(n) {
			continue
		}

		seen.Set(n)

		stack = append(stack, g[n].Slice()...)
	}

	return false
}
