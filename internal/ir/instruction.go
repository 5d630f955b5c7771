package ir

import (
	"fmt"

	"github.com/strata-ir/strata/internal/affine"
)

// Kind distinguishes the four instruction variants. The variants form a
// closed sum type; shared fields (Inputs, Number) live in the common
// Instruction header, and the iterating variants (Iref, Load, Store)
// additionally carry a Transformation.
type Kind int

const (
	KindCall Kind = iota
	KindIref
	KindLoad
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindCall:
		return "call"
	case KindIref:
		return "iref"
	case KindLoad:
		return "load"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// FnRecord is the external function descriptor carried by a Call
// instruction. The IR treats it as opaque beyond printing a name.
type FnRecord interface {
	String() string
}

// NamedFn is a minimal FnRecord naming an external function by string;
// sufficient for building and testing call instructions without a real
// function-descriptor system.
type NamedFn string

func (n NamedFn) String() string { return string(n) }

// Input is one producer reference: the producer's value at index
// ValueIndex feeds this instruction. Multiple-value-returning producers
// (Call) are selected by ValueIndex; single-value producers always use 0.
type Input struct {
	ValueIndex uint32
	Producer   *Instruction
}

// Instruction is a node in a kernel's DAG. Number is assigned in
// depth-first post-order from the leaves (iref, load) so that stores
// receive the highest numbers — see Kernel.renumber.
type Instruction struct {
	Kind   Kind
	Number int
	Inputs []Input

	// Call-only.
	FnRecord       FnRecord
	NumberOfValues int

	// Iref/Load/Store share a Transformation mapping the kernel's
	// iteration index to a 1-D output (Iref) or a buffer index
	// (Load/Store).
	Transformation affine.Transformation

	// Load/Store only: the buffer referenced.
	Buffer *Buffer
}

// NewCall builds a Call instruction. Construction alone does not attach it
// to a kernel's instruction vector or renumber anything — callers go
// through Kernel.AddInstruction (for Call/Iref) or Kernel.AddLoad /
// Kernel.AddStore.
func NewCall(fn FnRecord, numberOfValues int, inputs ...Input) *Instruction {
	return &Instruction{Kind: KindCall, FnRecord: fn, NumberOfValues: numberOfValues, Inputs: append([]Input(nil), inputs...)}
}

// NewIref builds an Iref instruction mapping the iteration index to a 1-D
// integer output via t.
func NewIref(t affine.Transformation) *Instruction {
	return &Instruction{Kind: KindIref, Transformation: t}
}

// newLoad and newStore are unexported: they're only ever constructed
// through Kernel.AddLoad / Kernel.AddStore so that stencil grouping and
// the buffer's readers/writers table stay consistent with the
// instruction vector.
func newLoad(buf *Buffer, t affine.Transformation) *Instruction {
	return &Instruction{Kind: KindLoad, Buffer: buf, Transformation: t}
}

func newStore(buf *Buffer, t affine.Transformation, value Input) *Instruction {
	return &Instruction{Kind: KindStore, Buffer: buf, Transformation: t, Inputs: []Input{value}}
}

// NumberOfValuesProduced reports how many values this instruction produces.
// Implements the `instruction_number_of_values` backend contract op.
func (i *Instruction) NumberOfValuesProduced() int {
	switch i.Kind {
	case KindCall:
		return i.NumberOfValues
	case KindIref, KindLoad:
		return 1
	case KindStore:
		return 0
	default:
		return 0
	}
}

func (i *Instruction) String() string {
	inputs := make([]string, len(i.Inputs))
	for k, in := range i.Inputs {
		producerNumber := -1
		if in.Producer != nil {
			producerNumber = in.Producer.Number
		}
		inputs[k] = fmt.Sprintf("(%d, %d)", in.ValueIndex, producerNumber)
	}
	switch i.Kind {
	case KindCall:
		return fmt.Sprintf("#<call %d %v fn=%s values=%d>", i.Number, inputs, i.FnRecord, i.NumberOfValues)
	case KindIref:
		return fmt.Sprintf("#<iref %d %s>", i.Number, i.Transformation)
	case KindLoad:
		bufNum := -1
		if i.Buffer != nil {
			bufNum = i.Buffer.Number
		}
		return fmt.Sprintf("#<load %d buffer=%d %s>", i.Number, bufNum, i.Transformation)
	case KindStore:
		bufNum := -1
		if i.Buffer != nil {
			bufNum = i.Buffer.Number
		}
		return fmt.Sprintf("#<store %d buffer=%d %s inputs=%v>", i.Number, bufNum, i.Transformation, inputs)
	default:
		return "#<instruction ?>"
	}
}
