package ir

import "fmt"

// Type describes the value type of a node in the graph.
//
// Size reports the storage size in bytes; a zero size means the type
// is unsized (pointer strides cannot be computed through it).
type Type interface {
	Size() int64
	String() string
}

// IntType is a fixed-width integer type.
type IntType struct {
	Bits int
}

func (t *IntType) Size() int64    { return int64((t.Bits + 7) / 8) }
func (t *IntType) String() string { return fmt.Sprintf("i%d", t.Bits) }

// FloatType is a fixed-width floating-point type.
type FloatType struct {
	Bits int
}

func (t *FloatType) Size() int64    { return int64(t.Bits / 8) }
func (t *FloatType) String() string { return fmt.Sprintf("f%d", t.Bits) }

// PtrType is a pointer type. Elem may be nil for pointers whose
// pointee is unsized or unknown.
type PtrType struct {
	Elem Type
}

func (t *PtrType) Size() int64 { return 8 }
func (t *PtrType) String() string {
	if t.Elem == nil {
		return "*?"
	}
	return "*" + t.Elem.String()
}

// VoidType is the type of instructions that produce no value.
type VoidType struct{}

func (t *VoidType) Size() int64    { return 0 }
func (t *VoidType) String() string { return "void" }

// Singleton types shared by graph builders.
var (
	I1   = &IntType{Bits: 1}
	I8   = &IntType{Bits: 8}
	I16  = &IntType{Bits: 16}
	I32  = &IntType{Bits: 32}
	I64  = &IntType{Bits: 64}
	F16  = &FloatType{Bits: 16}
	F32  = &FloatType{Bits: 32}
	F64  = &FloatType{Bits: 64}
	Void = &VoidType{}
)

// IntN returns the integer type with the given bit width, reusing the
// common singletons where possible.
func IntN(bits int) *IntType {
	switch bits {
	case 1:
		return I1
	case 8:
		return I8
	case 16:
		return I16
	case 32:
		return I32
	case 64:
		return I64
	}
	return &IntType{Bits: bits}
}

// Ptr returns a pointer type to elem.
func Ptr(elem Type) *PtrType { return &PtrType{Elem: elem} }

// IsInteger returns true if t is an integer type.
func IsInteger(t Type) bool {
	_, ok := t.(*IntType)
	return ok
}

// IsFloat returns true if t is a floating-point type.
func IsFloat(t Type) bool {
	_, ok := t.(*FloatType)
	return ok
}

// IsPointer returns true if t is a pointer type.
func IsPointer(t Type) bool {
	_, ok := t.(*PtrType)
	return ok
}

// Bits returns the bit width of an integer or float type, or 0.
func Bits(t Type) int {
	switch t := t.(type) {
	case *IntType:
		return t.Bits
	case *FloatType:
		return t.Bits
	}
	return 0
}

// SameType compares types structurally.
func SameType(a, b Type) bool {
	switch a := a.(type) {
	case *IntType:
		b, ok := b.(*IntType)
		return ok && a.Bits == b.Bits
	case *FloatType:
		b, ok := b.(*FloatType)
		return ok && a.Bits == b.Bits
	case *PtrType:
		b, ok := b.(*PtrType)
		if !ok {
			return false
		}
		if a.Elem == nil || b.Elem == nil {
			return a.Elem == b.Elem
		}
		return SameType(a.Elem, b.Elem)
	case *VoidType:
		_, ok := b.(*VoidType)
		return ok
	}
	return false
}
