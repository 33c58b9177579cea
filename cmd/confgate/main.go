package main

import (
	"os"

	"confgate/cmd/confgate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
