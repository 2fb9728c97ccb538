package main

import (
	"os"

	"github.com/ziadkadry99/portfolio-ai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
