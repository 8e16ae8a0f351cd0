// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PIE Contributors

// Command pie is the CLI front end for the reasoning kernel: it loads a
// knowledge base file and runs inference, proof, or interactive queries
// against it.
package main

import (
	"fmt"
	"log/slog"
	"os"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		slog.Error("pie: command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
