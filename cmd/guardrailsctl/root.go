package main

import (
	"github.com/spf13/cobra"
)

var (
	serverURL string
	outputFmt string
)

var rootCmd = &cobra.Command{
	Use:   "guardrailsctl",
	Short: "CLI for the guardrails engine server",
	Long: `guardrailsctl manages brand guardrails and runs compliance checks and
performance predictions against a running guardrails server.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Guardrails server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "json", "Output format: json, yaml")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(historyCmd)
}
