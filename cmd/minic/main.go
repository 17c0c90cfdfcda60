// Command minic drives the mini front-end: module loading, type
// checking, flow analysis, and inlining, wired together the way the
// teacher's own cobra-based CLI wires its stages.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
