package irfile

import (
	"context"
	"math/big"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sirelang/sire/compiler/ir"
	"github.com/sirelang/sire/compiler/tp"
)

// Current format version, increment when node encoding changes.
const (
	Magic   = "sire"
	Version = 1
)

type (
	header struct {
		Magic   string `msgpack:"magic"`
		Version uint16 `msgpack:"version"`
		Tier    string `msgpack:"tier"`
		Path    string `msgpack:"path,omitempty"`
	}

	file[ID ir.Ident] struct {
		Header header         `msgpack:"header"`
		Funcs  []funcNode[ID] `msgpack:"funcs"`
	}

	funcNode[ID ir.Ident] struct {
		ID   ID           `msgpack:"id"`
		Type typeNode     `msgpack:"type"`
		Body exprNode[ID] `msgpack:"body"`
	}

	typeNode struct {
		K      kind        `msgpack:"k"`
		Bits   uint64      `msgpack:"bits,omitempty"`
		Args   []typeNode  `msgpack:"args,omitempty"`
		Params []paramNode `msgpack:"params,omitempty"`
	}

	paramNode struct {
		Index uint64   `msgpack:"i"`
		Type  typeNode `msgpack:"t"`
	}

	exprNode[ID ir.Ident] struct {
		K     kind           `msgpack:"k"`
		Op    ir.Op          `msgpack:"op,omitempty"`
		Index uint64         `msgpack:"i,omitempty"` // arg index or number of switch cases
		Lit   []byte         `msgpack:"lit,omitempty"`
		ID    *ID            `msgpack:"id,omitempty"`
		Type  *typeNode      `msgpack:"t,omitempty"`
		Param *paramNode     `msgpack:"p,omitempty"`
		Kids  []exprNode[ID] `msgpack:"kids,omitempty"`
	}

	kind uint8
)

const (
	_ kind = iota

	tInt
	tUint
	tBool
	tFunc

	eArg
	eConst
	eFunction
	eConstParam
	eApply
	eBinaryOp
	eSwitch
	eUninitialized
)

// Tier reads the tier of encoded package data without decoding functions.
func Tier(data []byte) (string, error) {
	var f struct {
		Header header `msgpack:"header"`
	}

	err := msgpack.Unmarshal(data, &f)
	if err != nil {
		return "", errors.Wrap(err, "decode header")
	}

	err = f.Header.check()
	if err != nil {
		return "", err
	}

	return f.Header.Tier, nil
}

func Marshal[ID ir.Ident](pkg *ir.Package[ID]) ([]byte, error) {
	f := file[ID]{
		Header: header{
			Magic:   Magic,
			Version: Version,
			Tier:    ir.TierOf[ID](),
			Path:    pkg.Path,
		},
		Funcs: make([]funcNode[ID], len(pkg.Funcs)),
	}

	for i, fn := range pkg.Funcs {
		t, err := encodeType(fn.Type)
		if err != nil {
			return nil, errors.Wrap(err, "func %v: type", fn.ID)
		}

		body, err := encodeExpr[ID](fn.Body, 0)
		if err != nil {
			return nil, errors.Wrap(err, "func %v: body", fn.ID)
		}

		f.Funcs[i] = funcNode[ID]{ID: fn.ID, Type: t, Body: body}
	}

	return msgpack.Marshal(&f)
}

func Unmarshal[ID ir.Ident](data []byte) (*ir.Package[ID], error) {
	var f file[ID]

	err := msgpack.Unmarshal(data, &f)
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	err = f.Header.check()
	if err != nil {
		return nil, err
	}

	if want := ir.TierOf[ID](); f.Header.Tier != want {
		return nil, errors.New("tier mismatch: file %v, want %v", f.Header.Tier, want)
	}

	pkg := &ir.Package[ID]{
		Path:  f.Header.Path,
		Funcs: make([]*ir.FuncDef[ID], len(f.Funcs)),
	}

	for i, fn := range f.Funcs {
		t, err := decodeType(fn.Type)
		if err != nil {
			return nil, errors.Wrap(err, "func %v: type", fn.ID)
		}

		ft, ok := t.(tp.Func)
		if !ok {
			return nil, errors.New("func %v: non-function type %v", fn.ID, t)
		}

		body, err := decodeExpr(fn.Body, 0)
		if err != nil {
			return nil, errors.Wrap(err, "func %v: body", fn.ID)
		}

		pkg.Funcs[i] = &ir.FuncDef[ID]{ID: fn.ID, Type: ft, Body: body}
	}

	return pkg, nil
}

// ReadFile loads a package of the tier recorded in the file:
// *ir.Package[ir.Name] or *ir.Package[ir.DefID].
func ReadFile(ctx context.Context, name string) (pkg any, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "irfile: read", "name", name)
	defer tr.Finish("err", &err)

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tier, err := Tier(data)
	if err != nil {
		return nil, errors.Wrap(err, "%v", name)
	}

	switch tier {
	case ir.TierSymbolic:
		pkg, err = Unmarshal[ir.Name](data)
	case ir.TierResolved:
		pkg, err = Unmarshal[ir.DefID](data)
	default:
		err = errors.New("unsupported tier: %q", tier)
	}

	if err != nil {
		return nil, errors.Wrap(err, "unmarshal %v", name)
	}

	tr.Printw("package loaded", "size", len(data), "tier", tier)

	return pkg, nil
}

// WriteFile replaces the file atomically.
func WriteFile[ID ir.Ident](ctx context.Context, name string, pkg *ir.Package[ID]) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "irfile: write", "name", name)
	defer tr.Finish("err", &err)

	data, err := Marshal(pkg)
	if err != nil {
		return errors.Wrap(err, "marshal")
	}

	tmp, err := os.CreateTemp(filepath.Dir(name), ".sire-*")
	if err != nil {
		return errors.Wrap(err, "create temp")
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	_, err = tmp.Write(data)
	if err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write")
	}

	err = tmp.Close()
	if err != nil {
		return errors.Wrap(err, "close")
	}

	err = os.Rename(tmp.Name(), name)
	if err != nil {
		return errors.Wrap(err, "rename")
	}

	tr.Printw("package written", "size", len(data), "funcs", len(pkg.Funcs))

	return nil
}

func (h header) check() error {
	if h.Magic != Magic {
		return errors.New("not a sire file: magic %q", h.Magic)
	}

	if h.Version != Version {
		return errors.New("unsupported version %d", h.Version)
	}

	switch h.Tier {
	case ir.TierSymbolic, ir.TierResolved:
	default:
		return errors.New("unknown tier %q", h.Tier)
	}

	return nil
}

func encodeType(t tp.Type) (n typeNode, err error) {
	switch t := t.(type) {
	case tp.Int:
		n.K = tUint
		if t.Signed {
			n.K = tInt
		}

		n.Bits, err = safecast.Conv[uint64](t.Bits)
		if err != nil {
			return n, errors.Wrap(err, "width")
		}
	case tp.Bool:
		n.K = tBool
	case tp.Func:
		n.K = tFunc

		for _, a := range t.Args {
			an, err := encodeType(a)
			if err != nil {
				return n, err
			}

			n.Args = append(n.Args, an)
		}

		for _, p := range t.Params {
			pn, err := encodeParam(p)
			if err != nil {
				return n, err
			}

			n.Params = append(n.Params, pn)
		}
	default:
		return n, errors.New("unsupported type: %T", t)
	}

	return n, nil
}

func decodeType(n typeNode) (tp.Type, error) {
	switch n.K {
	case tInt, tUint:
		bits, err := safecast.Conv[int](n.Bits)
		if err != nil {
			return nil, errors.Wrap(err, "width")
		}

		return tp.Int{Bits: bits, Signed: n.K == tInt}, nil
	case tBool:
		return tp.Bool{}, nil
	case tFunc:
		var f tp.Func

		for _, a := range n.Args {
			t, err := decodeType(a)
			if err != nil {
				return nil, err
			}

			f.Args = append(f.Args, t)
		}

		for _, p := range n.Params {
			x, err := decodeParam(p)
			if err != nil {
				return nil, err
			}

			f.Params = append(f.Params, x)
		}

		return f, nil
	default:
		return nil, errors.New("unsupported type kind: %d", n.K)
	}
}

func encodeParam(p tp.Param) (n paramNode, err error) {
	c, ok := p.(tp.Const)
	if !ok {
		return n, errors.New("unsupported param: %T", p)
	}

	n.Index, err = safecast.Conv[uint64](c.Index)
	if err != nil {
		return n, errors.Wrap(err, "param index")
	}

	n.Type, err = encodeType(c.Type)

	return n, err
}

func decodeParam(n paramNode) (tp.Param, error) {
	idx, err := safecast.Conv[int](n.Index)
	if err != nil {
		return nil, errors.Wrap(err, "param index")
	}

	t, err := decodeType(n.Type)
	if err != nil {
		return nil, err
	}

	return tp.Const{Index: idx, Type: t}, nil
}

func encodeExpr[ID ir.Ident](e ir.Expr[ID], d int) (n exprNode[ID], err error) {
	if d > ir.MaxDepth {
		return n, errors.New("expression nesting exceeds %d", ir.MaxDepth)
	}

	switch x := e.(type) {
	case ir.Arg:
		n.K = eArg

		n.Index, err = safecast.Conv[uint64](x.Index)
		if err != nil {
			return n, errors.Wrap(err, "arg index")
		}

		n.Type, err = encodeTypePtr(x.Type)
	case ir.Const:
		n.K = eConst
		n.Lit = x.Literal().Bytes()
		n.Type, err = encodeTypePtr(x.Type)
	case ir.Function[ID]:
		n.K = eFunction
		n.ID = &x.ID
		n.Type, err = encodeTypePtr(x.Type)
	case ir.ConstParam:
		n.K = eConstParam

		var p paramNode

		p, err = encodeParam(x.Param)
		n.Param = &p
	case ir.Apply[ID]:
		n.K = eApply
		n.Kids, err = encodeKids[ID](e, d)
	case ir.BinaryOp[ID]:
		n.K = eBinaryOp
		n.Op = x.Op
		n.Kids, err = encodeKids[ID](e, d)
	case ir.Switch[ID]:
		n.K = eSwitch
		n.Index = uint64(len(x.Cases))
		n.Kids, err = encodeKids[ID](e, d)
	case ir.Uninitialized:
		n.K = eUninitialized
	default:
		return n, errors.New("unsupported expression: %T", e)
	}

	return n, err
}

func encodeKids[ID ir.Ident](e ir.Expr[ID], d int) ([]exprNode[ID], error) {
	kids := ir.Children[ID](e)
	r := make([]exprNode[ID], len(kids))

	for i, k := range kids {
		var err error

		r[i], err = encodeExpr[ID](k, d+1)
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

func encodeTypePtr(t tp.Type) (*typeNode, error) {
	n, err := encodeType(t)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

func decodeExpr[ID ir.Ident](n exprNode[ID], d int) (ir.Expr[ID], error) {
	if d > ir.MaxDepth {
		return nil, errors.New("expression nesting exceeds %d", ir.MaxDepth)
	}

	var t tp.Type

	if n.Type != nil {
		var err error

		t, err = decodeType(*n.Type)
		if err != nil {
			return nil, err
		}
	}

	switch n.K {
	case eArg:
		idx, err := safecast.Conv[int](n.Index)
		if err != nil {
			return nil, errors.Wrap(err, "arg index")
		}

		return ir.Arg{Index: idx, Type: t}, nil
	case eConst:
		return ir.Const{Lit: new(big.Int).SetBytes(n.Lit), Type: t}, nil
	case eFunction:
		if n.ID == nil {
			return nil, errors.New("function reference without identity")
		}

		return ir.Function[ID]{ID: *n.ID, Type: t}, nil
	case eConstParam:
		if n.Param == nil {
			return nil, errors.New("constant parameter reference without param")
		}

		p, err := decodeParam(*n.Param)
		if err != nil {
			return nil, err
		}

		return ir.ConstParam{Param: p}, nil
	case eUninitialized:
		return ir.Uninitialized{}, nil
	}

	kids := make([]ir.Expr[ID], len(n.Kids))

	for i, k := range n.Kids {
		var err error

		kids[i], err = decodeExpr(k, d+1)
		if err != nil {
			return nil, err
		}
	}

	switch n.K {
	case eApply:
		if len(kids) == 0 {
			return nil, errors.New("apply without callee")
		}

		return ir.Apply[ID]{Func: kids[0], Args: kids[1:]}, nil
	case eBinaryOp:
		if len(kids) != 2 {
			return nil, errors.New("binary op with %d operands", len(kids))
		}

		return ir.BinaryOp[ID]{Op: n.Op, L: kids[0], R: kids[1]}, nil
	case eSwitch:
		cases, err := safecast.Conv[int](n.Index)
		if err != nil || cases+2 > len(kids) {
			return nil, errors.New("switch with %d cases and %d subexpressions", n.Index, len(kids))
		}

		return ir.Switch[ID]{
			Value:   kids[0],
			Cases:   kids[1 : 1+cases : 1+cases],
			Targets: kids[1+cases:],
		}, nil
	default:
		return nil, errors.New("unsupported expression kind: %d", n.K)
	}
}
