// Command memsim simulates a memory subsystem driven by text commands.
package main

import "github.com/sarchlab/memsim/cmd/memsim/cmd"

func main() {
	cmd.Execute()
}
