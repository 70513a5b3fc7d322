// The scorer runs batch risk-scoring over the document archive and exports
// snapshots for the apiserver's degraded mode.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scorer: %v\n", err)
		os.Exit(1)
	}
}
