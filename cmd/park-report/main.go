package main

import (
	"os"

	"github.com/parkreport/park-report/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
