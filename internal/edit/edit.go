// Package edit implements the structural-edit and batch-query utilities:
// buffer grouping by shape and element type, kernel deletion, and
// number-indexed lookup.
package edit

import (
	"sort"

	"github.com/strata-ir/strata/internal/irerrors"
	"github.com/strata-ir/strata/internal/ir"
)

// DeleteKernel removes k from every buffer it reads or writes (k is
// dropped from each such buffer's Readers/Writers table) and clears its
// InstructionVector. k itself stays in the program's kernel arena — it is
// logically dead but its Number remains stable and its storage may be
// reclaimed lazily by a backend.
func DeleteKernel(k *ir.Kernel) {
	for _, buf := range k.InputBuffers() {
		buf.Readers.RemoveValues(k, func(i *ir.Instruction) bool { return true })
	}
	for _, buf := range k.OutputBuffers() {
		buf.Writers.RemoveValues(k, func(i *ir.Instruction) bool { return true })
	}
	k.InstructionVector = nil
}

// ProgramBuffer looks up a buffer by its Number in O(1) via the program's
// buffer arena (see DESIGN.md for why this replaces a linear scan).
func ProgramBuffer(p *ir.Program, number int) (*ir.Buffer, error) {
	if number < 0 || number >= len(p.Buffers) {
		return nil, irerrors.NewNumberNotFound("buffer", number)
	}
	return p.Buffers[number], nil
}

// ProgramKernel is the kernel-side analog of ProgramBuffer.
func ProgramKernel(p *ir.Program, number int) (*ir.Kernel, error) {
	if number < 0 || number >= len(p.Kernels) {
		return nil, irerrors.NewNumberNotFound("kernel", number)
	}
	return p.Kernels[number], nil
}

// BufferGroup is one maximal run of non-leaf buffers sharing both Shape
// and Ntype, as produced by GroupByShape.
type BufferGroup struct {
	Buffers []*ir.Buffer
}

// GroupByShape collects every non-leaf buffer in p, stably sorts them by
// Shape's total order and then (stably) by Ntype.Index() — making
// Ntype.Index() the dominant key, per §4.6/§8 scenario 6's
// "(ntype.index, shape<)" order — and returns each maximal run sharing
// both Shape and Ntype as one group. Stable sorting makes group
// membership deterministic across runs, which backends rely on for
// pool/arena assignment and fusion decisions.
func GroupByShape(p *ir.Program) []BufferGroup {
	var nonLeaf []*ir.Buffer
	for _, b := range p.Buffers {
		if !b.IsLeaf() {
			nonLeaf = append(nonLeaf, b)
		}
	}

	sort.SliceStable(nonLeaf, func(i, j int) bool {
		return nonLeaf[i].Shape.Less(nonLeaf[j].Shape)
	})
	sort.SliceStable(nonLeaf, func(i, j int) bool {
		return nonLeaf[i].Ntype.Index() < nonLeaf[j].Ntype.Index()
	})

	var groups []BufferGroup
	for _, b := range nonLeaf {
		if len(groups) > 0 {
			last := &groups[len(groups)-1]
			head := last.Buffers[0]
			if head.Shape.Eq(b.Shape) && head.Ntype.Index() == b.Ntype.Index() {
				last.Buffers = append(last.Buffers, b)
				continue
			}
		}
		groups = append(groups, BufferGroup{Buffers: []*ir.Buffer{b}})
	}
	return groups
}
