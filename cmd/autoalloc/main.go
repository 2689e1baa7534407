// Command autoalloc inspects and audits the process allocator decision.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/autoalloc/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
