package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	checkBrandID     string
	checkCampaignID  string
	checkAssetID     string
	checkAssetType   string
	checkContentID   string
	checkContentFile string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a compliance check on content",
	Long: `Runs a multi-tier compliance check. Content is read from --file, or from
stdin when --file is "-" or omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(checkContentFile)
		if err != nil {
			return err
		}

		client := newAPIClient()
		result, err := client.postJSON("/api/guardrails/v1alpha1/compliance/check", map[string]any{
			"content":     content,
			"brandId":     checkBrandID,
			"campaignId":  checkCampaignID,
			"assetId":     checkAssetID,
			"assetType":   checkAssetType,
			"contentId":   checkContentID,
		})
		if err != nil {
			return err
		}

		return printOutput(result)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkBrandID, "brand", "", "Brand ID (required)")
	checkCmd.Flags().StringVar(&checkCampaignID, "campaign", "", "Campaign ID")
	checkCmd.Flags().StringVar(&checkAssetID, "asset", "", "Asset ID")
	checkCmd.Flags().StringVar(&checkAssetType, "asset-type", "", "Asset type")
	checkCmd.Flags().StringVar(&checkContentID, "content-id", "", "Content ID for the history row")
	checkCmd.Flags().StringVarP(&checkContentFile, "file", "f", "-", "Content file (- for stdin)")
	_ = checkCmd.MarkFlagRequired("brand")
}

// readContent reads content from a file, or stdin when path is "-" or empty.
func readContent(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading content file: %w", err)
	}
	return string(data), nil
}
