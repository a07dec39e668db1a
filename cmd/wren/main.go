package main

import (
	"os"

	"github.com/simonhull/wren/internal/commands"
	"github.com/simonhull/wren/internal/output"
)

func main() {
	if err := commands.NewApp().Execute(); err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
}
