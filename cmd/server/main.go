// Package main implements the entry point for the book review API server.
// The binary serves the HTTP API, runs database migrations and performs
// one-off administrative tasks.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
