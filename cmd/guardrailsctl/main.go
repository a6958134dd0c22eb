// Package main provides guardrailsctl, a management CLI for the guardrails
// engine server. It speaks the server's HTTP API.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
