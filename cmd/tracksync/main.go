// Command tracksync runs, validates, traces and replays scenarios for the
// incremental synchronization engine.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tracksync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
