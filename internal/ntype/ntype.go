// Package ntype stands in for the external type system described in the
// frontend contract: a handle supplying bit width, a stable index, and
// numeric-kind promotion. A real compiler plugs in its own type system here;
// this one is just complete enough to build and test the IR against.
package ntype

import "fmt"

// Ntype is the element-type handle threaded through buffers and the rest of
// the IR. The IR never inspects a Ntype beyond this interface.
type Ntype interface {
	// Index is a stable, densely-assigned identifier used to sort buffers
	// for grouping (see internal/edit.GroupByShape).
	Index() int
	// Bits is the in-memory width of one element.
	Bits() int
	// Name is used only for diagnostics.
	Name() string
}

type kind struct {
	index int
	bits  int
	name  string
	rank  int // promotion rank: higher wins in UpgradedArrayElementNtype
}

func (k *kind) Index() int    { return k.index }
func (k *kind) Bits() int     { return k.bits }
func (k *kind) Name() string  { return k.name }
func (k *kind) String() string {
	return fmt.Sprintf("#<ntype %s bits=%d>", k.name, k.bits)
}

// Predefined kinds, ordered by promotion rank.
var (
	Bool    Ntype = &kind{index: 0, bits: 1, name: "bool", rank: 0}
	Int32   Ntype = &kind{index: 1, bits: 32, name: "i32", rank: 1}
	Int64   Ntype = &kind{index: 2, bits: 64, name: "i64", rank: 2}
	Float32 Ntype = &kind{index: 3, bits: 32, name: "f32", rank: 3}
	Float64 Ntype = &kind{index: 4, bits: 64, name: "f64", rank: 4}
)

// Eq reports whether two ntype handles denote the same element type.
func Eq(a, b Ntype) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Index() == b.Index()
}

// UpgradedArrayElementNtype implements `upgraded_array_element_ntype`: the
// element type of an array produced by combining elements of types a and b,
// e.g. for a broadcast of two operand arrays. Promotion is by rank; ties
// (equal type) return either operand unchanged.
func UpgradedArrayElementNtype(a, b Ntype) Ntype {
	ka, oka := a.(*kind)
	kb, okb := b.(*kind)
	if !oka || !okb {
		// Foreign ntype implementations: fall back to "a wins" since we
		// have no rank to compare against.
		return a
	}
	if ka.rank >= kb.rank {
		return a
	}
	return b
}
