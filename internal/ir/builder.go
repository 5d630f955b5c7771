package ir

import (
	"github.com/strata-ir/strata/internal/ntype"
	"github.com/strata-ir/strata/internal/rangeshape"
)

// Builder is a thin, stateful convenience layer over the primitive
// constructors (NewTask, NewBuffer, NewKernel) for callers — tests, the
// CLI demo — that build up a program incrementally rather than receiving
// one whole from a lowering pass. It adds no new construction semantics
// of its own.
type Builder struct {
	program *Program
	task    *Task
}

// NewBuilder starts a fresh program with one task, which becomes both the
// builder's current task and (by convention, since most test programs are
// single-task) the program's InitialTask and FinalTask. Call NewTask to
// add more tasks and wire them with Task.AddEdge before reassigning
// InitialTask/FinalTask for a multi-task program.
func NewBuilder() *Builder {
	p := NewProgram()
	t := p.NewTask()
	p.InitialTask = t
	p.FinalTask = t
	return &Builder{program: p, task: t}
}

// Program returns the program under construction.
func (b *Builder) Program() *Program { return b.program }

// Task returns the builder's current task (new buffers/kernels attach to
// it until NewTask is called again).
func (b *Builder) Task() *Task { return b.task }

// NewTask adds a task to the program and makes it current.
func (b *Builder) NewTask() *Task {
	b.task = b.program.NewTask()
	return b.task
}

// Buffer creates a buffer owned by the current task.
func (b *Builder) Buffer(shape rangeshape.Shape, nt ntype.Ntype, depth int) *Buffer {
	return b.program.NewBuffer(b.task, shape, nt, depth)
}

// Kernel creates a kernel owned by the current task.
func (b *Builder) Kernel(iterationSpace rangeshape.Shape) *Kernel {
	return b.program.NewKernel(b.task, iterationSpace)
}

// Leaf records a leaf binding pairing buf, a program input, with an
// arbitrary external handle (e.g. the lazy-array node it was lowered
// from). It does not otherwise change buf. If handle is an ExternalArray,
// the binding is rejected with an array/buffer mismatch error (§7) when
// its rank, dimensions, or ntype disagree with buf's.
func (b *Builder) Leaf(buf *Buffer, handle interface{}) error {
	return b.program.AddLeafBinding(buf, handle)
}

// Root appends buf to the program's RootBuffers in the order given.
func (b *Builder) Root(buf *Buffer) {
	b.program.RootBuffers = append(b.program.RootBuffers, buf)
}
