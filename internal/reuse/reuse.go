// Package reuse implements the reuse-potential analyses a
// per-axis estimate of how many redundant memory touches would be
// avoided by making that axis the innermost loop, and the transformation
// that reorders axes to act on that estimate.
package reuse

import (
	"fmt"
	"sort"

	"github.com/strata-ir/strata/internal/affine"
	"github.com/strata-ir/strata/internal/ir"
)

// KernelReusePotential returns a vector of length k.IterationSpace.Rank().
// For every stencil in k, for every output axis o with input axis
// a = OutputMask[o] (constant output axes contribute nothing), the
// stencil's loads are partitioned into equivalence classes of offset
// vectors that agree on every axis except possibly o; a class of size n
// adds n-1 to result[a] — the number of load pairs that would share a
// cache line if a were innermost.
func KernelReusePotential(k *ir.Kernel) []uint64 {
	result := make([]uint64, k.IterationSpace.Rank())
	for _, s := range k.Stencils() {
		accumulateStencil(s, result, indexByInputAxis, func(a int) uint64 { return 1 })
	}
	return result
}

// BufferReusePotential returns a vector of length b.Shape.Rank().
//
// The reference implementation is described as iterating
// `do-buffer-outputs` for the buffer under analysis, which the source
// itself defines as the buffer's *readers* — kernels that consume b as an
// input — despite the "outputs" name. This implementation follows that
// corrected reading rather than the literal "kernel writing to b" prose:
// stencils only ever populate under a (kernel, buffer) pair that the
// kernel *loads from* (AddLoad), so a kernel that merely writes b has no
// stencils keyed by b to iterate in the first place. See DESIGN.md, Open
// Questions, for the full reasoning; this is a confirmed, documented
// resolution, not a silent fix.
//
// For each reader kernel k of b (Buffer.OutputKernels, the buffer's
// readers), for each stencil in KernelStencils(k, b) (not every stencil of
// k — only those reading b), for each output axis o of that stencil with
// input axis a of k's iteration space, the same differs-exactly-at-o
// partition is used, but a class of size n contributes
// (n-1) * size(k.IterationSpace.Ranges[a]) to result[o] — weighted by that
// axis's trip count in the consuming kernel. Unlike KernelReusePotential,
// the result here is indexed by the buffer's own axis o, not the
// consuming kernel's axis a, since the vector describes the buffer's
// shape, not any one kernel's iteration space.
func BufferReusePotential(b *ir.Buffer) []uint64 {
	result := make([]uint64, b.Shape.Rank())
	for _, k := range b.OutputKernels() {
		for _, s := range k.StencilsFor(b) {
			accumulateStencil(s, result, indexByOutputAxis, func(a int) uint64 { return k.IterationSpace.Ranges[a].Size })
		}
	}
	return result
}

// indexByInputAxis and indexByOutputAxis select which axis of a stencil's
// output/input-axis pair (o, a) names the slot in accumulateStencil's
// result vector. KernelReusePotential's result has one slot per iteration
// (input) axis, so a load that permutes axes must credit a, not o;
// BufferReusePotential's result has one slot per buffer (output) axis, so
// it credits o. Conflating the two indexes a result of the wrong rank
// whenever a load's transformation permutes or projects axes.
func indexByInputAxis(o, a int) int  { return a }
func indexByOutputAxis(o, a int) int { return o }

// accumulateStencil adds each output axis's reuse contribution from one
// stencil into result, weighting each class's (n-1) pairs by weight(a)
// where a is the input axis sourcing output axis o, and placing that
// contribution at index(o, a) (see indexByInputAxis/indexByOutputAxis).
func accumulateStencil(s *ir.Stencil, result []uint64, index func(o, a int) int, weight func(inputAxis int) uint64) {
	if len(s.LoadInstructions) == 0 {
		return
	}
	outputMask := s.LoadInstructions[0].Transformation.OutputMask
	for o, src := range outputMask {
		if src == nil {
			continue
		}
		n := uint64(len(s.LoadInstructions))
		distinct := countDistinctExceptAxis(s.LoadInstructions, o)
		pairs := n - distinct
		result[index(o, *src)] += pairs * weight(*src)
	}
}

// countDistinctExceptAxis counts the distinct offset vectors among loads
// when axis o is ignored — the number of equivalence classes under
// "agree on every axis except possibly o".
func countDistinctExceptAxis(loads []*ir.Instruction, o int) uint64 {
	seen := make(map[string]struct{}, len(loads))
	for _, l := range loads {
		offs := l.Transformation.Offsets
		seen[keyExceptAxis(offs, o)] = struct{}{}
	}
	return uint64(len(seen))
}

func keyExceptAxis(offs []int64, o int) string {
	buf := make([]byte, 0, 8*len(offs))
	for i, v := range offs {
		if i == o {
			continue
		}
		buf = fmt.Appendf(buf, "%d,", v)
	}
	return string(buf)
}

// ReuseOptimizingTransformation returns a transformation whose OutputMask
// is the stable sort of [0, len(r)) by ascending r[axis] — so that
// applying it via transform.Kernel/transform.Buffer makes the
// highest-reuse axes innermost — and whose other fields are identity
// defaults (scalings 1, offsets 0, every input axis free). Ties preserve
// original axis order, since sort.SliceStable is used.
func ReuseOptimizingTransformation(r []uint64) affine.Transformation {
	n := len(r)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return r[order[i]] < r[order[j]] })

	inputMask := make([]*int64, n)
	outputMask := make([]*int, n)
	scalings := make([]int64, n)
	offsets := make([]int64, n)
	for k, axis := range order {
		axis := axis
		outputMask[k] = &axis
		scalings[k] = 1
	}
	return affine.Make(n, n, inputMask, outputMask, scalings, offsets)
}
