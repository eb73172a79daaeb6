package ir

// Op is an instruction opcode.
type Op int

const (
	OpInvalid Op = iota

	// OpPhi merges one incoming value per predecessor edge.
	OpPhi

	// Integer arithmetic and bitwise operations.
	OpAdd
	OpSub
	OpMul
	OpSDiv
	OpUDiv
	OpAnd
	OpOr
	OpXor
	OpShl
	OpLShr
	OpAShr

	// Floating-point operations.
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv

	// Comparison and selection.
	OpICmp
	OpFCmp
	OpSelect

	// Casts.
	OpTrunc
	OpZExt
	OpSExt
	OpFPTrunc
	OpFPExt

	// Memory and address computation. OpPtrAdd advances a pointer by a
	// byte offset.
	OpPtrAdd
	OpLoad
	OpStore

	// Control flow.
	OpBr
	OpCondBr
	OpRet

	// OpOpaque stands for an operation the frontend cannot model
	// precisely (calls, conversions between type families, ...). All
	// analyses treat it conservatively.
	OpOpaque
)

var opNames = [...]string{
	OpInvalid: "invalid",
	OpPhi:     "phi",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpSDiv:    "sdiv",
	OpUDiv:    "udiv",
	OpAnd:     "and",
	OpOr:      "or",
	OpXor:     "xor",
	OpShl:     "shl",
	OpLShr:    "lshr",
	OpAShr:    "ashr",
	OpFAdd:    "fadd",
	OpFSub:    "fsub",
	OpFMul:    "fmul",
	OpFDiv:    "fdiv",
	OpICmp:    "icmp",
	OpFCmp:    "fcmp",
	OpSelect:  "select",
	OpTrunc:   "trunc",
	OpZExt:    "zext",
	OpSExt:    "sext",
	OpFPTrunc: "fptrunc",
	OpFPExt:   "fpext",
	OpPtrAdd:  "ptradd",
	OpLoad:    "load",
	OpStore:   "store",
	OpBr:      "br",
	OpCondBr:  "condbr",
	OpRet:     "ret",
	OpOpaque:  "opaque",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "op?"
}

// IsCommutative returns true if the operands of op can be swapped.
func (op Op) IsCommutative() bool {
	switch op {
	case OpAdd, OpMul, OpAnd, OpOr, OpXor, OpFAdd, OpFMul:
		return true
	}
	return false
}

// IsCast returns true for truncation and extension opcodes.
func (op Op) IsCast() bool {
	switch op {
	case OpTrunc, OpZExt, OpSExt, OpFPTrunc, OpFPExt:
		return true
	}
	return false
}

// IsTerminator returns true for opcodes that end a block.
func (op Op) IsTerminator() bool {
	switch op {
	case OpBr, OpCondBr, OpRet:
		return true
	}
	return false
}

// IsBinary returns true for two-operand arithmetic and bitwise opcodes.
func (op Op) IsBinary() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpSDiv, OpUDiv, OpAnd, OpOr, OpXor,
		OpShl, OpLShr, OpAShr, OpFAdd, OpFSub, OpFMul, OpFDiv:
		return true
	}
	return false
}

// Pred is a comparison predicate for OpICmp and OpFCmp.
type Pred int

const (
	PredInvalid Pred = iota

	// Integer predicates.
	PredEQ
	PredNE
	PredSGT
	PredSGE
	PredSLT
	PredSLE
	PredUGT
	PredUGE
	PredULT
	PredULE

	// Ordered floating-point predicates.
	PredOEQ
	PredONE
	PredOGT
	PredOGE
	PredOLT
	PredOLE

	// Unordered floating-point predicates.
	PredFUGT
	PredFUGE
	PredFULT
	PredFULE
)

var predNames = [...]string{
	PredInvalid: "?",
	PredEQ:      "eq",
	PredNE:      "ne",
	PredSGT:     "sgt",
	PredSGE:     "sge",
	PredSLT:     "slt",
	PredSLE:     "sle",
	PredUGT:     "ugt",
	PredUGE:     "uge",
	PredULT:     "ult",
	PredULE:     "ule",
	PredOEQ:     "oeq",
	PredONE:     "one",
	PredOGT:     "ogt",
	PredOGE:     "oge",
	PredOLT:     "olt",
	PredOLE:     "ole",
	PredFUGT:    "fugt",
	PredFUGE:    "fuge",
	PredFULT:    "fult",
	PredFULE:    "fule",
}

func (p Pred) String() string {
	if int(p) < len(predNames) {
		return predNames[p]
	}
	return "?"
}

// Swapped returns the predicate with the operand roles exchanged,
// e.g. sgt becomes slt.
func (p Pred) Swapped() Pred {
	switch p {
	case PredSGT:
		return PredSLT
	case PredSGE:
		return PredSLE
	case PredSLT:
		return PredSGT
	case PredSLE:
		return PredSGE
	case PredUGT:
		return PredULT
	case PredUGE:
		return PredULE
	case PredULT:
		return PredUGT
	case PredULE:
		return PredUGE
	case PredOGT:
		return PredOLT
	case PredOGE:
		return PredOLE
	case PredOLT:
		return PredOGT
	case PredOLE:
		return PredOGE
	case PredFUGT:
		return PredFULT
	case PredFUGE:
		return PredFULE
	case PredFULT:
		return PredFUGT
	case PredFULE:
		return PredFUGE
	}
	return p
}
