package main

import (
	"github.com/spf13/cobra"
)

var (
	predictBrandID     string
	predictContentID   string
	predictContentType string
	predictChannel     string
	predictEphemeral   bool
	predictCompliance  float64
	predictContentFile string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run a performance prediction on content",
	Long: `Runs the four performance predictions (MLR approval, engagement, risk,
A/B recommendation). Ephemeral runs skip persistence and accept any content id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(predictContentFile)
		if err != nil {
			return err
		}

		payload := map[string]any{
			"content": content,
			"brandId": predictBrandID,
			"context": map[string]any{
				"contentId":   predictContentID,
				"contentType": predictContentType,
				"channel":     predictChannel,
				"ephemeral":   predictEphemeral,
			},
		}
		if cmd.Flags().Changed("compliance-score") {
			payload["complianceScore"] = predictCompliance
		}

		client := newAPIClient()
		result, err := client.postJSON("/api/guardrails/v1alpha1/predictions/predict", payload)
		if err != nil {
			return err
		}

		return printOutput(result)
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictBrandID, "brand", "", "Brand ID (required)")
	predictCmd.Flags().StringVar(&predictContentID, "content-id", "", "Content ID (UUID unless --ephemeral)")
	predictCmd.Flags().StringVar(&predictContentType, "content-type", "asset", "Content type")
	predictCmd.Flags().StringVar(&predictChannel, "channel", "", "Delivery channel (email, social, print)")
	predictCmd.Flags().BoolVar(&predictEphemeral, "ephemeral", false, "Skip persistence")
	predictCmd.Flags().Float64Var(&predictCompliance, "compliance-score", 0, "Compliance score input")
	predictCmd.Flags().StringVarP(&predictContentFile, "file", "f", "-", "Content file (- for stdin)")
	_ = predictCmd.MarkFlagRequired("brand")
}
