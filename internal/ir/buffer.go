package ir

import (
	"fmt"

	"github.com/strata-ir/strata/internal/irerrors"
	"github.com/strata-ir/strata/internal/ntype"
	"github.com/strata-ir/strata/internal/rangeshape"
)

// Buffer is a named, typed region of storage with a shape. It is produced
// by zero or more kernels (its writers) and consumed by zero or more
// kernels (its readers). Storage is an opaque handle owned and populated
// by a backend; the IR never allocates or frees it.
type Buffer struct {
	Shape   rangeshape.Shape
	Ntype   ntype.Ntype
	Depth   int
	Task    *Task
	Storage interface{}
	Number  int

	// Writers maps each kernel that stores into this buffer to its store
	// instructions, in insertion order. Readers is the load-side analog.
	Writers *assoc[*Kernel, *Instruction]
	Readers *assoc[*Kernel, *Instruction]
}

func newBuffer(shape rangeshape.Shape, nt ntype.Ntype, depth int, number int) *Buffer {
	return &Buffer{
		Shape:   shape,
		Ntype:   nt,
		Depth:   depth,
		Number:  number,
		Writers: newAssoc[*Kernel, *Instruction](),
		Readers: newAssoc[*Kernel, *Instruction](),
	}
}

// IsLeaf reports whether the buffer has no writers: it is an input to the
// program, supplied from outside.
func (b *Buffer) IsLeaf() bool { return b.Writers.Len() == 0 }

// IsRoot reports whether the buffer has no readers: it is an output of
// the program.
func (b *Buffer) IsRoot() bool { return b.Readers.Len() == 0 }

// IsInterior reports whether the buffer is neither a leaf nor a root.
func (b *Buffer) IsInterior() bool { return !b.IsLeaf() && !b.IsRoot() }

// Size is the total element count of the buffer's shape.
func (b *Buffer) Size() uint64 { return b.Shape.Size() }

// Bits is the total bit width of the buffer's backing storage.
func (b *Buffer) Bits() uint64 { return uint64(b.Ntype.Bits()) * b.Size() }

// LoadInstructions returns every load instruction reading this buffer,
// across every reader kernel, in kernel (push-to-front) then per-kernel
// insertion order. Implements map_buffer_load_instructions.
func (b *Buffer) LoadInstructions() []*Instruction {
	var out []*Instruction
	for _, k := range b.Readers.Keys() {
		out = append(out, b.Readers.Values(k)...)
	}
	return out
}

// StoreInstructions is the store-side analog of LoadInstructions.
func (b *Buffer) StoreInstructions() []*Instruction {
	var out []*Instruction
	for _, k := range b.Writers.Keys() {
		out = append(out, b.Writers.Values(k)...)
	}
	return out
}

// InputKernels returns the kernels that write this buffer (map_buffer_inputs
// in the traversal API — the buffer is an output of those kernels, so they
// are its inputs).
func (b *Buffer) InputKernels() []*Kernel { return b.Writers.Keys() }

// OutputKernels returns the kernels that read this buffer
// (map_buffer_outputs — the buffer flows out to its readers).
func (b *Buffer) OutputKernels() []*Kernel { return b.Readers.Keys() }

// ExternalArray describes, to the extent the IR's §7 array/buffer
// compatibility check needs, a lazy-array handle from the frontend: its
// per-axis dimension counts and element type. It stands in for the
// "original lazy-array handle" the frontend contract (§6) pairs with a
// leaf buffer in Program.LeafAlist.
type ExternalArray struct {
	Dimensions []uint64
	Ntype      ntype.Ntype
}

// Rank is the external array's axis count.
func (a ExternalArray) Rank() int { return len(a.Dimensions) }

// CheckArrayBuffer reports an ErrArrayBufferMismatch if arr's rank, any
// per-axis dimension, or element type disagrees with buf's shape and
// ntype — the §7 "array <-> buffer mismatch" check a caller binding an
// external array to a buffer (e.g. a leaf binding) must perform.
func CheckArrayBuffer(buf *Buffer, arr ExternalArray) error {
	if arr.Rank() != buf.Shape.Rank() {
		return irerrors.NewArrayBufferMismatch("array/buffer rank mismatch",
			fmt.Sprintf("rank %d", arr.Rank()), fmt.Sprintf("rank %d", buf.Shape.Rank()))
	}
	for axis, dim := range arr.Dimensions {
		want := buf.Shape.Ranges[axis].Size
		if dim != want {
			return irerrors.NewArrayBufferMismatch(
				fmt.Sprintf("array/buffer dimension mismatch at axis %d", axis),
				fmt.Sprintf("size %d", dim), fmt.Sprintf("size %d", want))
		}
	}
	if !ntype.Eq(arr.Ntype, buf.Ntype) {
		return irerrors.NewArrayBufferMismatch("array/buffer element-type mismatch",
			arr.Ntype.Name(), buf.Ntype.Name())
	}
	return nil
}

func (b *Buffer) String() string {
	class := "interior"
	if b.IsLeaf() {
		class = "leaf"
	} else if b.IsRoot() {
		class = "root"
	}
	return fmt.Sprintf("#<buffer %d %s %s %s>", b.Number, class, b.Ntype.Name(), b.Shape)
}
