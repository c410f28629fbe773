package main

import (
	"os"

	"github.com/hali-na/tradingpk/cmd/tradingpk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
