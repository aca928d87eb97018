package main

import (
	"os"

	"github.com/cyberfortress-labs/smartxdr-core/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
