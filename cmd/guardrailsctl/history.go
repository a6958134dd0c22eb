package main

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var historyPageSize int

var historyCmd = &cobra.Command{
	Use:   "history CONTENT_ID",
	Short: "List compliance history for a content item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if historyPageSize > 0 {
			q.Set("pageSize", strconv.Itoa(historyPageSize))
		}

		path := "/api/guardrails/v1alpha1/compliance/history/" + url.PathEscape(args[0])
		if len(q) > 0 {
			path += "?" + q.Encode()
		}

		client := newAPIClient()
		result, err := client.getJSON(path)
		if err != nil {
			return err
		}
		return printOutput(result)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyPageSize, "page-size", 0, "Page size")
}
