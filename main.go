// The main package for the wikicorpus executable.
package main

import (
	"github.com/Katya0208/wikicorpus/cmd"
)

func main() {
	cmd.Execute()
}
