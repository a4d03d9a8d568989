package main

import (
	"os"

	"github.com/bianoble/assetpack/cmd/assetpack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
