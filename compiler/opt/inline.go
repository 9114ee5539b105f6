package opt

import (
	"context"

	"nikand.dev/go/heap"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/sirelang/sire/compiler/ir"
	"github.com/sirelang/sire/compiler/set"
	"github.com/sirelang/sire/compiler/tp"
)

type (
	Options struct {
		// MaxRounds bounds the passes over one body that still inline a call.
		MaxRounds int
	}

	Report[ID ir.Ident] struct {
		Inlined int

		// Recursive functions lie on a call graph cycle and are never inlined.
		Recursive []ID
		// SelfRecursive functions reference themselves syntactically.
		SelfRecursive []ID
		// Parametric functions declare constant parameters and are never inlined.
		Parametric []ID
	}

	ready struct {
		heap.Heap[int]
	}
)

const DefaultMaxRounds = 256

// Inline replaces calls to non-recursive package functions with their bodies.
// Functions are processed callees first so every inlined body is already final.
// The package is owned exclusively by Inline while it runs.
func Inline[ID ir.Ident](ctx context.Context, pkg *ir.Package[ID], opts Options) (rep Report[ID], err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "opt: inline", "pkg", pkg.Path, "funcs", len(pkg.Funcs))
	defer tr.Finish("err", &err)

	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}

	calls := CallGraph(pkg)
	cyclic := Cycles(calls)

	if tr.If("dump_callgraph") {
		for i, f := range pkg.Funcs {
			tr.Printw("calls", "i", i, "func", f.ID, "callees", calls[i], "cyclic", cyclic.IsSet(i))
		}
	}

	callers := make([]set.Bits[int], len(pkg.Funcs))
	pending := make([]int, len(pkg.Funcs))

	for i := range calls {
		calls[i].Range(func(j int) bool {
			if cyclic.IsSet(j) {
				return true
			}

			callers[j].Set(i)
			pending[i]++

			return true
		})
	}

	var inlinable set.Bits[int]

	rep = classify(pkg, cyclic)

	idx := pkg.Indices()

	lookup := func(id ID) *ir.FuncDef[ID] {
		i, ok := idx[id]
		if !ok || !inlinable.IsSet(i) {
			return nil
		}

		return pkg.Funcs[i]
	}

	q := ready{Heap: heap.Heap[int]{Less: readyLess}}

	for i := range pkg.Funcs {
		if pending[i] == 0 {
			q.Push(i)
		}
	}

	for q.Len() != 0 {
		i := q.Pop()
		f := pkg.Funcs[i]

		n, err := inlineInto(ctx, f, lookup, opts)
		rep.Inlined += n
		if err != nil {
			return rep, errors.Wrap(err, "func %v", f.ID)
		}

		if !cyclic.IsSet(i) && len(f.Type.Params) == 0 {
			inlinable.Set(i)
		}

		callers[i].Range(func(c int) bool {
			pending[c]--

			if pending[c] == 0 {
				q.Push(c)
			}

			return true
		})
	}

	tr.Printw("inlined", "calls", rep.Inlined, "recursive", rep.Recursive, "parametric", rep.Parametric)

	return rep, nil
}

// Recursion reports recursive and parametric functions without changing the package.
func Recursion[ID ir.Ident](pkg *ir.Package[ID]) Report[ID] {
	return classify(pkg, Cycles(CallGraph(pkg)))
}

func classify[ID ir.Ident](pkg *ir.Package[ID], cyclic set.Bits[int]) (rep Report[ID]) {
	for i, f := range pkg.Funcs {
		switch {
		case cyclic.IsSet(i):
			rep.Recursive = append(rep.Recursive, f.ID)

			if f.IsRecursive() {
				rep.SelfRecursive = append(rep.SelfRecursive, f.ID)
			}
		case len(f.Type.Params) != 0:
			rep.Parametric = append(rep.Parametric, f.ID)
		}
	}

	return rep
}

// inlineInto replaces inlinable calls in f, arguments before the call itself,
// so nested calls take one round. Further rounds only pick up calls made
// reachable by substitution, such as a function passed as an argument.
// On error the body of f is left unchanged.
func inlineInto[ID ir.Ident](ctx context.Context, f *ir.FuncDef[ID], lookup func(ID) *ir.FuncDef[ID], opts Options) (n int, err error) {
	tr := tlog.SpanFromContext(ctx)

	body := f.Body

	for round := 0; ; round++ {
		changed := 0

		next := ir.RewriteUp[ID](body, func(x ir.Expr[ID]) (ir.Expr[ID], bool) {
			if err != nil {
				return nil, false
			}

			app, ok := x.(ir.Apply[ID])
			if !ok {
				return nil, false
			}

			fn, ok := app.Func.(ir.Function[ID])
			if !ok {
				return nil, false
			}

			g := lookup(fn.ID)
			if g == nil {
				return nil, false
			}

			if !tp.Equal(fn.Type, g.Type) {
				err = errors.New("call of %v as %v, declared %v", fn.ID, fn.Type, g.Type)
				return nil, false
			}

			var r ir.Expr[ID]

			r, err = Call(g, app.Args)
			if err != nil {
				err = errors.Wrap(err, "inline %v", g.ID)
				return nil, false
			}

			tr.V("inline").Printw("inline call", "into", f.ID, "callee", g.ID, "round", round)

			changed++

			return r, true
		})
		if err != nil {
			return 0, err
		}

		if changed == 0 {
			f.Body = body

			return n, nil
		}

		if round == opts.MaxRounds {
			return 0, errors.New("no fixed point in %d rounds", opts.MaxRounds)
		}

		n += changed
		body = next
	}
}

// Call instantiates the body of f with args bound to its arguments.
func Call[ID ir.Ident](f *ir.FuncDef[ID], args []ir.Expr[ID]) (ir.Expr[ID], error) {
	if len(args) != f.Type.Arity() {
		return nil, errors.New("%d args for arity %d", len(args), f.Type.Arity())
	}

	targets := make([]ir.Expr[ID], len(args))

	for k := range args {
		targets[k] = ir.Arg{Index: k + 1, Type: f.Type.Args[k+1]}
	}

	return ir.ReplaceAll[ID](f.Body, targets, args), nil
}

func readyLess(d []int, i, j int) bool {
	return d[i] < d[j]
}

func (q *ready) Push(i int) {
	tlog.V("ready_push").Printw("func ready", "i", i, "from", loc.Caller(1))

	q.Heap.Push(i)
}
