package ir

import "fmt"

// Block is a basic block: a straight-line instruction sequence ended
// by a terminator, connected to other blocks by control edges.
type Block struct {
	name  string
	index int
	fn    *Func

	Instrs []*Instr
	Preds  []*Block
	Succs  []*Block
}

// Name returns the block label.
func (b *Block) Name() string { return b.name }

// Index returns the position of the block within its function.
func (b *Block) Index() int { return b.index }

// Fn returns the function the block belongs to.
func (b *Block) Fn() *Func { return b.fn }

func (b *Block) String() string {
	return fmt.Sprintf("%s#%d", b.name, b.index)
}

// Terminator returns the final instruction of the block, or nil if
// the block is unterminated.
func (b *Block) Terminator() *Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	if t := b.Instrs[len(b.Instrs)-1]; t.IsTerminator() {
		return t
	}
	return nil
}

// append wires an instruction into the block and registers it as a
// user of each of its operands.
func (b *Block) append(i *Instr) *Instr {
	i.blk = b
	i.pos = len(b.Instrs)
	if i.name == "" && !SameType(i.typ, Void) {
		i.name = fmt.Sprintf("t%d", b.fn.nextValue())
	}
	b.Instrs = append(b.Instrs, i)
	for _, a := range i.args {
		if def, ok := a.(*Instr); ok {
			def.users = append(def.users, i)
		}
	}
	return i
}

// NewInstr appends a generic instruction. Most callers use the typed
// constructors below.
func (b *Block) NewInstr(op Op, t Type, args ...Value) *Instr {
	return b.append(&Instr{op: op, typ: t, args: args})
}

// Phi appends a merge node of type t. Incoming edges are attached
// afterwards with AddIncoming.
func (b *Block) Phi(t Type, name string) *Instr {
	return b.append(&Instr{op: OpPhi, typ: t, name: name})
}

// AddIncoming attaches an incoming edge to a phi.
func (b *Block) AddIncoming(phi *Instr, v Value, pred *Block) {
	if phi.op != OpPhi {
		panic("ir: AddIncoming on non-phi")
	}
	phi.args = append(phi.args, v)
	phi.incoming = append(phi.incoming, pred)
	if def, ok := v.(*Instr); ok {
		def.users = append(def.users, phi)
	}
}

// Binary appends a two-operand arithmetic or bitwise instruction; the
// result type is taken from x.
func (b *Block) Binary(op Op, x, y Value) *Instr {
	return b.append(&Instr{op: op, typ: x.Type(), args: []Value{x, y}})
}

// FBinary appends a floating-point binary instruction carrying the
// given relaxed-math flags.
func (b *Block) FBinary(op Op, x, y Value, fmf FastMathFlags) *Instr {
	return b.append(&Instr{op: op, typ: x.Type(), args: []Value{x, y}, fmf: fmf})
}

// ICmp appends an integer comparison.
func (b *Block) ICmp(p Pred, x, y Value) *Instr {
	return b.append(&Instr{op: OpICmp, typ: I1, args: []Value{x, y}, pred: p})
}

// FCmp appends a floating-point comparison.
func (b *Block) FCmp(p Pred, x, y Value, fmf FastMathFlags) *Instr {
	return b.append(&Instr{op: OpFCmp, typ: I1, args: []Value{x, y}, pred: p, fmf: fmf})
}

// Select appends a conditional select; the result type is taken from
// the true operand.
func (b *Block) Select(cond, t, f Value) *Instr {
	return b.append(&Instr{op: OpSelect, typ: t.Type(), args: []Value{cond, t, f}})
}

// FSelect appends a select carrying relaxed-math flags.
func (b *Block) FSelect(cond, t, f Value, fmf FastMathFlags) *Instr {
	return b.append(&Instr{op: OpSelect, typ: t.Type(), args: []Value{cond, t, f}, fmf: fmf})
}

// Cast appends a truncation or extension of x to type t.
func (b *Block) Cast(op Op, x Value, t Type) *Instr {
	if !op.IsCast() {
		panic("ir: Cast with non-cast opcode")
	}
	return b.append(&Instr{op: op, typ: t, args: []Value{x}})
}

// PtrAdd appends a pointer advance of ptr by off bytes.
func (b *Block) PtrAdd(ptr, off Value) *Instr {
	return b.append(&Instr{op: OpPtrAdd, typ: ptr.Type(), args: []Value{ptr, off}})
}

// Load appends a memory read through ptr.
func (b *Block) Load(ptr Value) *Instr {
	t := Type(Void)
	if pt, ok := ptr.Type().(*PtrType); ok && pt.Elem != nil {
		t = pt.Elem
	}
	return b.append(&Instr{op: OpLoad, typ: t, args: []Value{ptr}})
}

// Store appends a memory write of v through ptr.
func (b *Block) Store(ptr, v Value) *Instr {
	return b.append(&Instr{op: OpStore, typ: Void, args: []Value{ptr, v}})
}

// Opaque appends an instruction the analyses treat conservatively.
func (b *Block) Opaque(t Type, args ...Value) *Instr {
	return b.append(&Instr{op: OpOpaque, typ: t, args: args})
}

// Br appends an unconditional branch and records the control edge.
func (b *Block) Br(target *Block) *Instr {
	i := b.append(&Instr{op: OpBr, typ: Void})
	b.addEdge(target)
	return i
}

// CondBr appends a conditional branch and records both control edges.
func (b *Block) CondBr(cond Value, then, els *Block) *Instr {
	i := b.append(&Instr{op: OpCondBr, typ: Void, args: []Value{cond}})
	b.addEdge(then)
	b.addEdge(els)
	return i
}

// Ret appends a return; vals may be empty.
func (b *Block) Ret(vals ...Value) *Instr {
	return b.append(&Instr{op: OpRet, typ: Void, args: vals})
}

func (b *Block) addEdge(target *Block) {
	b.Succs = append(b.Succs, target)
	target.Preds = append(target.Preds, b)
}
