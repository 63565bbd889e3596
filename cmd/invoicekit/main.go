// Package main is the entry point for the invoicekit CLI.
package main

import (
	"os"

	"github.com/jmylchreest/invoicekit/cmd/invoicekit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
