package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	mergedBrandID    string
	mergedCampaignID string
	mergedAssetID    string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect guardrail tiers and merged rule sets",
}

var rulesGetCmd = &cobra.Command{
	Use:   "get {brand|campaign|asset} ID",
	Short: "Get one guardrail tier record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, id := args[0], args[1]

		var path string
		switch tier {
		case "brand":
			path = "/api/guardrails/v1alpha1/rules/brands/" + url.PathEscape(id)
		case "campaign":
			path = "/api/guardrails/v1alpha1/rules/campaigns/" + url.PathEscape(id)
		case "asset":
			path = "/api/guardrails/v1alpha1/rules/assets/" + url.PathEscape(id)
		default:
			return fmt.Errorf("unknown tier %q (expected brand, campaign, or asset)", tier)
		}

		client := newAPIClient()
		result, err := client.getJSON(path)
		if err != nil {
			return err
		}
		return printOutput(result)
	},
}

var rulesMergedCmd = &cobra.Command{
	Use:   "merged",
	Short: "Get the effective rule set for a brand/campaign/asset combination",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		q.Set("brandId", mergedBrandID)
		if mergedCampaignID != "" {
			q.Set("campaignId", mergedCampaignID)
		}
		if mergedAssetID != "" {
			q.Set("assetId", mergedAssetID)
		}

		client := newAPIClient()
		result, err := client.getJSON("/api/guardrails/v1alpha1/rules/merged?" + q.Encode())
		if err != nil {
			return err
		}
		return printOutput(result)
	},
}

func init() {
	rulesMergedCmd.Flags().StringVar(&mergedBrandID, "brand", "", "Brand ID (required)")
	rulesMergedCmd.Flags().StringVar(&mergedCampaignID, "campaign", "", "Campaign ID")
	rulesMergedCmd.Flags().StringVar(&mergedAssetID, "asset", "", "Asset ID")
	_ = rulesMergedCmd.MarkFlagRequired("brand")

	rulesCmd.AddCommand(rulesGetCmd)
	rulesCmd.AddCommand(rulesMergedCmd)
}
