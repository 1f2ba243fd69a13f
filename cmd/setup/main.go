package main

import (
	"fmt"
	"os"

	"github.com/2beens/fittrack/internal/setup"
)

func main() {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: working dir: %s\n", err)
		os.Exit(setup.ExitFailure)
	}
	os.Exit(setup.Run(dir, os.Stdout))
}
