// cmd/strata/main.go
package main

import (
	"fmt"
	"os"

	"github.com/strata-ir/strata/internal/affine"
	"github.com/strata-ir/strata/internal/edit"
	"github.com/strata-ir/strata/internal/ir"
	"github.com/strata-ir/strata/internal/ntype"
	"github.com/strata-ir/strata/internal/rangeshape"
	"github.com/strata-ir/strata/internal/reuse"
)

const version = "0.1.0"

// Command aliases, in the spirit of the teacher CLI's short-form entry
// points.
var commandAliases = map[string]string{
	"d": "demo",
	"v": "version",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	var err error
	switch cmd {
	case "demo":
		err = demoCommand()
	case "version":
		fmt.Printf("strata %s\n", version)
	default:
		showUsage()
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "strata: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("usage: strata <command>")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  demo (d)     build a toy one-kernel program and print its IR")
	fmt.Println("  version (v)  print the module version")
}

// demoCommand builds a single kernel copying a rank-1 buffer into another
// of the same shape, then prints the resulting program, its reuse
// potential, and its buffer grouping, as a sanity check that the pieces
// of the library compose.
func demoCommand() error {
	b := ir.NewBuilder()

	shape := rangeshape.NewShape(rangeshape.NewRange(0, 1, 10))
	src := b.Buffer(shape, ntype.Float64, 0)
	dst := b.Buffer(shape, ntype.Float64, 1)
	if err := b.Leaf(src, ir.ExternalArray{Dimensions: []uint64{10}, Ntype: ntype.Float64}); err != nil {
		return err
	}
	b.Root(dst)

	k := b.Kernel(shape)
	identity := affine.Identity(1)
	load := k.AddLoad(src, identity)
	k.AddStore(dst, ir.Input{ValueIndex: 0, Producer: load}, identity)

	p := b.Program()

	fmt.Println(p)
	for _, t := range p.TaskVector {
		fmt.Println(" ", t)
	}
	for _, buf := range p.Buffers {
		fmt.Println(" ", buf)
	}
	for _, kern := range p.Kernels {
		fmt.Println(" ", kern)
		for _, i := range kern.InstructionVector {
			fmt.Println("   ", i)
		}
	}

	fmt.Println()
	fmt.Println("kernel reuse potential:", reuse.KernelReusePotential(k))
	fmt.Println("kernel cost:", k.Cost())

	groups := edit.GroupByShape(p)
	fmt.Println("buffer groups:", len(groups))
	return nil
}
