// Package main is the entry point for the courier-pricing CLI.
package main

import (
	"os"

	"courier-pricing/cmd/courier-pricing/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
