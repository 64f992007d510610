// Package main provides the entry point for the netview CLI.
package main

import (
	"os"

	"github.com/ya-spark/netview-backendlog/cmd/netview/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
