package main

import (
	"os"

	"github.com/gulbok-dev/gulbok/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
