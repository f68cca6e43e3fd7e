// Command cachesim runs a processor that reads its operands through a bounded
// LRU cache in front of a main memory.
package main

import "github.com/sarchlab/cachesim/cachesim/cmd"

func main() {
	cmd.Execute()
}
