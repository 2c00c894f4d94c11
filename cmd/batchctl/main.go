// batchctl drives the analysis API the way the web client does: request
// a signed slot, upload the bytes, then run the fitment and product
// analyses for each item in strict order.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/application/batch"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/application/links"
)

var (
	serverURL    string
	affiliateTag string
)

func main() {
	root := &cobra.Command{
		Use:   "batchctl",
		Short: "Batch client for the vehicle analysis API",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "analysis API base URL")
	root.PersistentFlags().StringVar(&affiliateTag, "affiliate-tag", os.Getenv("AFFILIATE_TAG"), "affiliate tag for shopping links")

	root.AddCommand(newAnalyzeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:   "analyze <image files...>",
		Short: "Upload photos and run fitment + product analysis",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL)

			orch := &batch.Orchestrator{
				Uploads:  client,
				Analyzer: client,
				Quality:  client,
				OnProgress: func(it *batch.Item) {
					fmt.Printf("[%s] %-13s %3d%%\n", shortID(it.ID), it.Status, it.Progress)
				},
			}

			if group {
				// All files are one subject.
				orch.Add(args...)
			} else {
				for _, path := range args {
					orch.Add(path)
				}
			}

			done := orch.Run(cmd.Context())

			rewriter := links.Rewriter{Tag: affiliateTag}
			for _, it := range orch.Items() {
				printItem(it, rewriter)
			}

			if done < len(orch.Items()) {
				return fmt.Errorf("%d of %d items failed", len(orch.Items())-done, len(orch.Items()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "treat all files as a single subject")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
