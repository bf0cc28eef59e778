// Package main is the entry point for the cpq CLI.
package main

import (
	"os"

	"github.com/Simplici0/scanquote/cmd/cpq/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
