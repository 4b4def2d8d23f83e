// Command kgqa builds a knowledge graph from local files and answers
// questions about it without running a server.
//
// Usage:
//
//	kgqa [--config FILE] <command> FILE...
//
// Commands:
//
//	ingest   - Build a graph and print its statistics
//	ask      - Answer --question against the graph built from the files
//	stats    - Print graph statistics as JSON
//	summary  - Print the text summary of the graph
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
