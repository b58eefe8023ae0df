// Command vmscan is a cheat-engine-style memory search/filter/write tool
// for a running Linux process.
package main

import (
	"os"

	"github.com/coldforge/vmscan/internal/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
