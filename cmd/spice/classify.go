package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-dashboard/internal/classification"
	"github.com/Veraticus/spice-dashboard/internal/cli"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Preview how a description would be categorized",
		Long: `Show which keyword rule matches a transaction description.

With --ai, descriptions that no rule matches are sent to the model the same
way an import would. Nothing is stored.

Examples:
  spice classify "KROGER #123"
  spice classify --ai "Blue Bottle Coffee" --amount 6.50`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ai, _ := cmd.Flags().GetBool("ai")
			description := strings.Join(args, " ")

			if !ai {
				fmt.Println(describeRuleMatch(classification.NewDefaultEngine(), description)) //nolint:forbidigo // User-facing output
				return nil
			}

			amount, _ := cmd.Flags().GetFloat64("amount")
			txnType, _ := cmd.Flags().GetString("type")

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.engine.CategorizeOne(ctx, model.Transaction{
				Description: description,
				Amount:      amount,
				Type:        model.TransactionType(txnType),
			})
			fmt.Println(describeCategorization(description, result)) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().Bool("ai", false, "ask the model when no rule matches")
	cmd.Flags().Float64("amount", 0, "transaction amount sent to the model")
	cmd.Flags().String("type", string(model.TypeDebit), "debit or credit")

	return cmd
}

func describeRuleMatch(rules *classification.Engine, description string) string {
	match, ok := rules.Match(description)
	if !ok {
		return cli.FormatWarning(fmt.Sprintf("%q matches no rule", description))
	}
	return cli.FormatSuccess(fmt.Sprintf("%q → %s (rule %s)", description, match.Category, match.RuleName))
}

func describeCategorization(description string, result model.Categorization) string {
	line := fmt.Sprintf("%q → %s (%s)", description, result.Category, result.Reason)
	if result.HasConfidence {
		line += fmt.Sprintf(" confidence %.2f", result.Confidence)
	}

	if result.IsFallback() {
		return cli.FormatWarning(line)
	}
	return cli.FormatSuccess(line)
}
