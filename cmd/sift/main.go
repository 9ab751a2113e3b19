package main

import (
	"fmt"
	"os"

	"github.com/tannerhall/sift/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sift: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
