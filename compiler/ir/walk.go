package ir

import (
	"tlog.app/go/errors"

	"github.com/sirelang/sire/compiler/tp"
)

type (
	// RewriteFunc returns a replacement for the node and true,
	// or false to descend into the node children.
	RewriteFunc[ID Ident] func(e Expr[ID]) (Expr[ID], bool)

	frame[ID Ident] struct {
		e    Expr[ID]
		kids []Expr[ID]
		i    int

		changed bool
	}

	pair[ID Ident] struct {
		a, b Expr[ID]
	}
)

// Children returns a fresh slice of immediate subexpressions in traversal order:
// Apply: callee, args; Switch: scrutinee, cases, targets; BinaryOp: left, right.
func Children[ID Ident](e Expr[ID]) []Expr[ID] {
	switch x := e.(type) {
	case Apply[ID]:
		r := make([]Expr[ID], 0, 1+len(x.Args))
		r = append(r, x.Func)
		return append(r, x.Args...)
	case BinaryOp[ID]:
		return []Expr[ID]{x.L, x.R}
	case Switch[ID]:
		r := make([]Expr[ID], 0, 1+len(x.Cases)+len(x.Targets))
		r = append(r, x.Value)
		r = append(r, x.Cases...)
		return append(r, x.Targets...)
	default:
		return nil
	}
}

func withChildren[ID Ident](e Expr[ID], kids []Expr[ID]) Expr[ID] {
	switch x := e.(type) {
	case Apply[ID]:
		return Apply[ID]{Func: kids[0], Args: kids[1:]}
	case BinaryOp[ID]:
		return BinaryOp[ID]{Op: x.Op, L: kids[0], R: kids[1]}
	case Switch[ID]:
		n := 1 + len(x.Cases)

		return Switch[ID]{
			Value:   kids[0],
			Cases:   kids[1:n:n],
			Targets: kids[n:],
		}
	default:
		panic(errors.New("leaf has no children: %T", e))
	}
}

// Walk visits e in pre-order until f returns false.
// It reports whether the whole tree was visited.
func Walk[ID Ident](e Expr[ID], f func(Expr[ID]) bool) bool {
	stack := []Expr[ID]{e}

	for len(stack) != 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !f(x) {
			return false
		}

		kids := Children[ID](x)

		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}

	return true
}

// Contains reports whether e or any of its subexpressions is equal to target.
func Contains[ID Ident](e, target Expr[ID]) bool {
	return !Walk[ID](e, func(x Expr[ID]) bool {
		return !Equal[ID](x, target)
	})
}

// Equal is a deep structural equality.
func Equal[ID Ident](a, b Expr[ID]) bool {
	stack := []pair[ID]{{a: a, b: b}}

	for len(stack) != 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !nodeEqual[ID](p.a, p.b) {
			return false
		}

		ak := Children[ID](p.a)
		bk := Children[ID](p.b)

		for i := range ak {
			stack = append(stack, pair[ID]{a: ak[i], b: bk[i]})
		}
	}

	return true
}

// nodeEqual compares node heads and the number of children.
func nodeEqual[ID Ident](a, b Expr[ID]) bool {
	switch a := a.(type) {
	case Arg:
		b, ok := b.(Arg)
		return ok && a.Index == b.Index && tp.Equal(a.Type, b.Type)
	case Const:
		b, ok := b.(Const)
		return ok && a.SameLiteral(b) && tp.Equal(a.Type, b.Type)
	case Function[ID]:
		b, ok := b.(Function[ID])
		return ok && a.ID == b.ID && tp.Equal(a.Type, b.Type)
	case ConstParam:
		b, ok := b.(ConstParam)
		return ok && tp.ParamEqual(a.Param, b.Param)
	case Apply[ID]:
		b, ok := b.(Apply[ID])
		return ok && len(a.Args) == len(b.Args)
	case BinaryOp[ID]:
		b, ok := b.(BinaryOp[ID])
		return ok && a.Op == b.Op
	case Switch[ID]:
		b, ok := b.(Switch[ID])
		return ok && len(a.Cases) == len(b.Cases) && len(a.Targets) == len(b.Targets)
	case Uninitialized:
		_, ok := b.(Uninitialized)
		return ok
	case nil:
		return b == nil
	default:
		panic(errors.New("unsupported expression: %T", a))
	}
}

// Rewrite replaces nodes in pre-order.
// Once f replaces a node its replacement is not descended into.
// Unchanged subtrees are shared with e, e itself is never modified.
func Rewrite[ID Ident](e Expr[ID], f RewriteFunc[ID]) Expr[ID] {
	if r, ok := f(e); ok {
		return r
	}

	kids := Children[ID](e)
	if len(kids) == 0 {
		return e
	}

	stack := []frame[ID]{{e: e, kids: kids}}

	for {
		top := &stack[len(stack)-1]

		if top.i < len(top.kids) {
			k := top.kids[top.i]

			if r, ok := f(k); ok {
				top.kids[top.i] = r
				top.changed = true
				top.i++

				continue
			}

			kk := Children[ID](k)
			if len(kk) == 0 {
				top.i++
				continue
			}

			stack = append(stack, frame[ID]{e: k, kids: kk})

			continue
		}

		done := *top
		stack = stack[:len(stack)-1]

		res := done.e
		if done.changed {
			res = withChildren[ID](done.e, done.kids)
		}

		if len(stack) == 0 {
			return res
		}

		parent := &stack[len(stack)-1]

		if done.changed {
			parent.kids[parent.i] = res
			parent.changed = true
		}

		parent.i++
	}
}

// RewriteUp replaces nodes in post-order: children first, then the rebuilt node.
// A replacement is not visited again.
// Unchanged subtrees are shared with e, e itself is never modified.
func RewriteUp[ID Ident](e Expr[ID], f RewriteFunc[ID]) Expr[ID] {
	stack := []frame[ID]{{e: e, kids: Children[ID](e)}}

	for {
		top := &stack[len(stack)-1]

		if top.i < len(top.kids) {
			k := top.kids[top.i]

			if kk := Children[ID](k); len(kk) != 0 {
				stack = append(stack, frame[ID]{e: k, kids: kk})
				continue
			}

			if r, ok := f(k); ok {
				top.kids[top.i] = r
				top.changed = true
			}

			top.i++

			continue
		}

		done := *top
		stack = stack[:len(stack)-1]

		res := done.e
		changed := done.changed

		if changed {
			res = withChildren[ID](done.e, done.kids)
		}

		if r, ok := f(res); ok {
			res = r
			changed = true
		}

		if len(stack) == 0 {
			return res
		}

		parent := &stack[len(stack)-1]

		if changed {
			parent.kids[parent.i] = res
			parent.changed = true
		}

		parent.i++
	}
}

// Replace substitutes every occurrence of target in e with sub.
func Replace[ID Ident](e, target, sub Expr[ID]) Expr[ID] {
	return Rewrite[ID](e, func(x Expr[ID]) (Expr[ID], bool) {
		if Equal[ID](x, target) {
			return sub, true
		}

		return nil, false
	})
}

// ReplaceAll substitutes targets with subs simultaneously.
// The first matching target wins, replacements are never substituted again.
func ReplaceAll[ID Ident](e Expr[ID], targets, subs []Expr[ID]) Expr[ID] {
	if len(targets) != len(subs) {
		panic(errors.New("%d targets for %d substitutions", len(targets), len(subs)))
	}

	return Rewrite[ID](e, func(x Expr[ID]) (Expr[ID], bool) {
		for i, t := range targets {
			if Equal[ID](x, t) {
				return subs[i], true
			}
		}

		return nil, false
	})
}
