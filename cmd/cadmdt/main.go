// Package main is the entry point for the cadmdt binary.
package main

import (
	"os"

	"github.com/platinummonkey/cadmdt/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
