package main

import (
	"os"

	"github.com/bnema/miniapp-telemetry/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
