package main

import (
	"os"

	"github.com/smartpark/spotsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
