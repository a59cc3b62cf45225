package main

import (
	"fmt"
	"os"

	"github.com/quad400/kaydee-boutique/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "kaydee:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
