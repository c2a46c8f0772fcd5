package main

import (
	"os"

	"github.com/adamavenir/weft/internal/command"
)

func main() {
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
