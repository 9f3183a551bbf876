// Command graphopt explains and runs traversals against the local query
// optimizer.
//
//	graphopt explain 'V(1).outE("knows").has(weight.gt(0.5)).inV()'
//	graphopt run --db testdata/social.db --compare 'out("knows").limit(3)'
//	graphopt config --multi-key --prefetch
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
