// The main package for the horde-relay executable.
package main

import (
	"github.com/JakeFAU/horde-relay/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
