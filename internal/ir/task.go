package ir

import "fmt"

// Task is an atomic scheduling unit: a maximal set of kernels and the
// buffers they define that must execute together. Tasks form a DAG with a
// single source (Program.InitialTask) and single sink
// (Program.FinalTask); Predecessors/Successors record that DAG's edges in
// insertion order.
type Task struct {
	Program        *Program
	Predecessors   *orderedSet[*Task]
	Successors     *orderedSet[*Task]
	Kernels        []*Kernel
	DefinedBuffers []*Buffer
	Number         int
}

func newTask(p *Program, number int) *Task {
	return &Task{
		Program:      p,
		Predecessors: newOrderedSet[*Task](),
		Successors:   newOrderedSet[*Task](),
		Number:       number,
	}
}

// AddEdge records that t must run before other: other gains t as a
// predecessor and t gains other as a successor.
func (t *Task) AddEdge(other *Task) {
	t.Successors.Add(other)
	other.Predecessors.Add(t)
}

func (t *Task) String() string {
	return fmt.Sprintf("#<task %d kernels=%d buffers=%d>", t.Number, len(t.Kernels), len(t.DefinedBuffers))
}
