package main

import (
	"os"

	"github.com/gmg-digital/staticembed/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
