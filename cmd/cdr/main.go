package main

import (
	"os"

	"github.com/D-ignite/webex-cdr/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
