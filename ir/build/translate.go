package build

import (
	"fmt"
	"go/constant"
	"go/token"
	"go/types"

	gossa "golang.org/x/tools/go/ssa"

	"github.com/vecpal/vecpal/ir"
)

// Translate lowers a built go/ssa function body into the dataflow
// graph the analyses run on. Operations the graph has no precise
// shape for (calls, aggregate accesses, channel operations) become
// opaque nodes, which every analysis treats conservatively.
func Translate(f *gossa.Function) *ir.Func {
	t := &translator{
		fn:     ir.NewFunc(f.String()),
		vals:   make(map[gossa.Value]ir.Value),
		blocks: make(map[*gossa.BasicBlock]*ir.Block),
	}
	return t.run(f)
}

type translator struct {
	fn     *ir.Func
	vals   map[gossa.Value]ir.Value
	blocks map[*gossa.BasicBlock]*ir.Block
	phis   []phiFixup
}

// phiFixup defers phi edges until all blocks are lowered.
type phiFixup struct {
	ssa *gossa.Phi
	ir  *ir.Instr
}

func (t *translator) run(f *gossa.Function) *ir.Func {
	for _, p := range f.Params {
		t.vals[p] = t.fn.NewParam(p.Name(), typeOf(p.Type()))
	}
	for _, fv := range f.FreeVars {
		t.vals[fv] = t.fn.NewParam(fv.Name(), typeOf(fv.Type()))
	}
	for _, b := range f.Blocks {
		t.blocks[b] = t.fn.NewBlock(fmt.Sprintf("b%d", b.Index))
	}
	// Dominator preorder sees every non-phi operand before its use.
	for _, b := range f.DomPreorder() {
		irb := t.blocks[b]
		for _, instr := range b.Instrs {
			t.instr(irb, instr)
		}
	}
	for _, fix := range t.phis {
		for n, e := range fix.ssa.Edges {
			pred := t.blocks[fix.ssa.Block().Preds[n]]
			fix.ir.Block().AddIncoming(fix.ir, t.value(e), pred)
		}
	}
	return t.fn
}

func (t *translator) instr(b *ir.Block, i gossa.Instruction) {
	switch i := i.(type) {
	case *gossa.Phi:
		p := b.Phi(typeOf(i.Type()), i.Comment)
		t.vals[i] = p
		t.phis = append(t.phis, phiFixup{ssa: i, ir: p})
	case *gossa.BinOp:
		t.vals[i] = t.binop(b, i)
	case *gossa.UnOp:
		t.vals[i] = t.unop(b, i)
	case *gossa.ChangeType:
		// Representation preserving.
		t.vals[i] = t.value(i.X)
	case *gossa.Convert:
		t.vals[i] = t.convert(b, i)
	case *gossa.IndexAddr:
		t.vals[i] = t.indexAddr(b, i)
	case *gossa.Store:
		b.Store(t.value(i.Addr), t.value(i.Val))
	case *gossa.Jump:
		b.Br(t.blocks[i.Block().Succs[0]])
	case *gossa.If:
		b.CondBr(t.value(i.Cond), t.blocks[i.Block().Succs[0]], t.blocks[i.Block().Succs[1]])
	case *gossa.Return:
		var vs []ir.Value
		for _, r := range i.Results {
			vs = append(vs, t.value(r))
		}
		b.Ret(vs...)
	case *gossa.Panic:
		b.Ret(t.value(i.X))
	default:
		var args []ir.Value
		for _, r := range i.Operands(nil) {
			if *r != nil {
				args = append(args, t.value(*r))
			}
		}
		if v, ok := i.(gossa.Value); ok {
			t.vals[v] = b.Opaque(typeOf(v.Type()), args...)
		} else {
			b.Opaque(ir.Void, args...)
		}
	}
}

func (t *translator) binop(b *ir.Block, i *gossa.BinOp) ir.Value {
	x := t.value(i.X)
	y := t.value(i.Y)
	fp := isFloatType(i.X.Type())
	signed := isSignedType(i.X.Type())
	scalar := ir.IsInteger(x.Type()) || ir.IsFloat(x.Type())

	switch i.Op {
	case token.ADD:
		if fp {
			return b.FBinary(ir.OpFAdd, x, y, 0)
		}
		if scalar {
			return b.Binary(ir.OpAdd, x, y)
		}
	case token.SUB:
		if fp {
			return b.FBinary(ir.OpFSub, x, y, 0)
		}
		if scalar {
			return b.Binary(ir.OpSub, x, y)
		}
	case token.MUL:
		if fp {
			return b.FBinary(ir.OpFMul, x, y, 0)
		}
		if scalar {
			return b.Binary(ir.OpMul, x, y)
		}
	case token.QUO:
		if fp {
			return b.FBinary(ir.OpFDiv, x, y, 0)
		}
		if scalar {
			if signed {
				return b.Binary(ir.OpSDiv, x, y)
			}
			return b.Binary(ir.OpUDiv, x, y)
		}
	case token.AND:
		return b.Binary(ir.OpAnd, x, y)
	case token.OR:
		return b.Binary(ir.OpOr, x, y)
	case token.XOR:
		return b.Binary(ir.OpXor, x, y)
	case token.SHL:
		return b.Binary(ir.OpShl, x, y)
	case token.SHR:
		if signed {
			return b.Binary(ir.OpAShr, x, y)
		}
		return b.Binary(ir.OpLShr, x, y)
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
		if fp {
			return b.FCmp(floatPred(i.Op), x, y, 0)
		}
		if scalar || ir.IsPointer(x.Type()) {
			return b.ICmp(intPred(i.Op, signed), x, y)
		}
	}
	// REM, AND_NOT, string concatenation and the like.
	return b.Opaque(typeOf(i.Type()), x, y)
}

func (t *translator) unop(b *ir.Block, i *gossa.UnOp) ir.Value {
	x := t.value(i.X)
	switch i.Op {
	case token.MUL: // pointer load
		if pt, ok := x.Type().(*ir.PtrType); ok && pt.Elem != nil {
			return b.Load(x)
		}
		return b.Opaque(typeOf(i.Type()), x)
	case token.SUB:
		if isFloatType(i.X.Type()) {
			return b.FBinary(ir.OpFSub, ir.ConstFloat(x.Type(), 0), x, 0)
		}
		if ir.IsInteger(x.Type()) {
			return b.Binary(ir.OpSub, ir.ConstInt(x.Type(), 0), x)
		}
	case token.XOR:
		return b.Binary(ir.OpXor, x, ir.ConstInt(x.Type(), -1))
	case token.NOT:
		return b.Binary(ir.OpXor, x, ir.ConstBool(true))
	}
	return b.Opaque(typeOf(i.Type()), x)
}

func (t *translator) convert(b *ir.Block, i *gossa.Convert) ir.Value {
	x := t.value(i.X)
	from := typeOf(i.X.Type())
	to := typeOf(i.Type())
	switch {
	case ir.IsInteger(from) && ir.IsInteger(to):
		fb, tb := ir.Bits(from), ir.Bits(to)
		switch {
		case tb < fb:
			return b.Cast(ir.OpTrunc, x, to)
		case tb > fb:
			if isSignedType(i.X.Type()) {
				return b.Cast(ir.OpSExt, x, to)
			}
			return b.Cast(ir.OpZExt, x, to)
		}
		return x
	case ir.IsFloat(from) && ir.IsFloat(to):
		fb, tb := ir.Bits(from), ir.Bits(to)
		switch {
		case tb < fb:
			return b.Cast(ir.OpFPTrunc, x, to)
		case tb > fb:
			return b.Cast(ir.OpFPExt, x, to)
		}
		return x
	}
	// Conversions between type families.
	return b.Opaque(to, x)
}

// indexAddr lowers &x[i] to a byte-offset pointer advance when the
// element size is known.
func (t *translator) indexAddr(b *ir.Block, i *gossa.IndexAddr) ir.Value {
	ptr := t.value(i.X)
	idx := t.value(i.Index)
	pt, ok := typeOf(i.Type()).(*ir.PtrType)
	if !ok || pt.Elem == nil || pt.Elem.Size() <= 0 {
		return b.Opaque(typeOf(i.Type()), ptr, idx)
	}
	off := idx
	if size := pt.Elem.Size(); size > 1 {
		off = b.Binary(ir.OpMul, idx, ir.ConstInt(idx.Type(), size))
	}
	return b.PtrAdd(ptr, off)
}

func (t *translator) value(v gossa.Value) ir.Value {
	if x, ok := t.vals[v]; ok {
		return x
	}
	if c, ok := v.(*gossa.Const); ok {
		x := constValue(c)
		t.vals[v] = x
		return x
	}
	// Globals, functions, builtins, and anything defined outside the
	// translated region become external values.
	p := ir.NewParam(v.Name(), typeOf(v.Type()))
	t.vals[v] = p
	return p
}

func constValue(c *gossa.Const) ir.Value {
	t := typeOf(c.Type())
	if c.Value == nil {
		return ir.ConstInt(t, 0) // zero value / nil pointer
	}
	if basic, ok := c.Type().Underlying().(*types.Basic); ok {
		switch {
		case basic.Info()&types.IsBoolean != 0:
			return ir.ConstBool(constant.BoolVal(c.Value))
		case basic.Info()&types.IsInteger != 0:
			return ir.ConstInt(t, c.Int64())
		case basic.Info()&types.IsFloat != 0:
			return ir.ConstFloat(t, c.Float64())
		}
	}
	return ir.NewParam(c.Name(), t)
}

func typeOf(t types.Type) ir.Type {
	switch t := t.Underlying().(type) {
	case *types.Basic:
		switch t.Kind() {
		case types.Bool, types.UntypedBool:
			return ir.I1
		case types.Int8, types.Uint8:
			return ir.I8
		case types.Int16, types.Uint16:
			return ir.I16
		case types.Int32, types.Uint32, types.UntypedRune:
			return ir.I32
		case types.Float32:
			return ir.F32
		case types.Float64, types.UntypedFloat:
			return ir.F64
		case types.UnsafePointer:
			return ir.Ptr(nil)
		}
		return ir.I64 // int, uint, 64-bit and untyped integers
	case *types.Pointer:
		return ir.Ptr(scalarOf(t.Elem()))
	case *types.Slice:
		return ir.Ptr(scalarOf(t.Elem()))
	}
	// Aggregates and other opaque values are carried as word-sized
	// scalars; nothing inspects their bits.
	return ir.I64
}

// scalarOf returns the lowered element type if it has a known fixed
// size, nil otherwise. Unsized pointees block stride computation by
// design of the pointer induction rules.
func scalarOf(t types.Type) ir.Type {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		if u.Info()&(types.IsInteger|types.IsFloat|types.IsBoolean) != 0 {
			return typeOf(t)
		}
	case *types.Pointer:
		return typeOf(t)
	}
	return nil
}

func isFloatType(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsFloat != 0
}

func isSignedType(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsUnsigned == 0
}

func intPred(op token.Token, signed bool) ir.Pred {
	switch op {
	case token.EQL:
		return ir.PredEQ
	case token.NEQ:
		return ir.PredNE
	case token.LSS:
		if signed {
			return ir.PredSLT
		}
		return ir.PredULT
	case token.LEQ:
		if signed {
			return ir.PredSLE
		}
		return ir.PredULE
	case token.GTR:
		if signed {
			return ir.PredSGT
		}
		return ir.PredUGT
	case token.GEQ:
		if signed {
			return ir.PredSGE
		}
		return ir.PredUGE
	}
	return ir.PredInvalid
}

func floatPred(op token.Token) ir.Pred {
	switch op {
	case token.EQL:
		return ir.PredOEQ
	case token.NEQ:
		return ir.PredONE
	case token.LSS:
		return ir.PredOLT
	case token.LEQ:
		return ir.PredOLE
	case token.GTR:
		return ir.PredOGT
	case token.GEQ:
		return ir.PredOGE
	}
	return ir.PredInvalid
}
