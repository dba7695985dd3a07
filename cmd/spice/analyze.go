package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-dashboard/internal/cli"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize spending and ask the model for insights",
		Long: `Aggregate the user's stored transactions and print the spending narrative.
Without an LLM API key the fixed default narrative is shown.

Use --chart to print the chart recommendation the dashboard would render.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			chart, _ := cmd.Flags().GetBool("chart")

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			txns, err := a.importer.List(ctx, userID)
			if err != nil {
				return err
			}

			if chart {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(a.charts.Recommend(ctx, txns))
			}

			fmt.Println(cli.FormatNarrative(a.analyst.SpendingAnalysis(ctx, txns))) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().Bool("chart", false, "print the chart recommendation as JSON")

	return cmd
}

func reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Ask the model to second-guess stored categories",
		Long: `Run every stored transaction past the AI categorizer and report where a
confident answer would change its category. Nothing is written back.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			txns, err := a.importer.List(ctx, userID)
			if err != nil {
				return err
			}
			if len(txns) == 0 {
				fmt.Println(cli.FormatInfo("No transactions to review.")) //nolint:forbidigo // User-facing output
				return nil
			}

			reviews := a.engine.ReviewBatch(ctx, txns, progressOption(os.Stderr, "Reviewing"))
			fmt.Println(cli.FormatReviews(reviews)) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}
