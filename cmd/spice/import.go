package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-dashboard/internal/cli"
	"github.com/Veraticus/spice-dashboard/internal/normalize"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import and categorize bank transactions",
		Long: `Fetch transactions from the configured bank provider, categorize them and
store them for the user. Without bank credentials, or when the bank returns
nothing, a deterministic mock dataset is imported instead.

A user is imported once; later runs report that nothing was done.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.importer.ImportForUser(ctx, userID, progressOption(os.Stderr, "Categorizing"))
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			if result.Imported == 0 {
				fmt.Println(cli.FormatWarning(result.Message)) //nolint:forbidigo // User-facing output
				return nil
			}
			fmt.Println(cli.FormatSuccess(result.Message)) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func uploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a CSV or OFX statement",
		Long: `Read a CSV export or an OFX/QFX statement, categorize every row and store
it for the user. Uploads are never deduplicated.

Examples:
  spice upload --file ~/Downloads/checking.csv
  spice upload --file statement.ofx --user alice`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			path, _ := cmd.Flags().GetString("file")

			rows, err := normalize.ReadFile(path)
			if err != nil {
				return err
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			uploaded, err := a.importer.Upload(ctx, userID, rows, progressOption(os.Stderr, "Categorizing"))
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Uploaded %d transactions from %s", uploaded, path))) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "CSV, OFX or QFX file to upload")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction by hand",
		Long: `Add a single transaction. Without --category it is categorized like any
other transaction.

Example:
  spice add --date 2024-03-01 --description "Farmers market" --amount 23.50`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			entry := normalize.ManualEntry{}
			entry.Date, _ = cmd.Flags().GetString("date")
			entry.Description, _ = cmd.Flags().GetString("description")
			entry.Type, _ = cmd.Flags().GetString("type")
			entry.Category, _ = cmd.Flags().GetString("category")
			if amount, _ := cmd.Flags().GetString("amount"); amount != "" {
				entry.Amount = amount
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			txn, err := a.importer.AddManual(ctx, userID, entry)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %s as %s (%s)", txn.Description, txn.Category, txn.Reason))) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().String("date", "", "transaction date (YYYY-MM-DD)")
	cmd.Flags().String("description", "", "transaction description")
	cmd.Flags().String("amount", "", "transaction amount")
	cmd.Flags().String("type", "debit", "debit or credit")
	cmd.Flags().String("category", "", "category to use instead of categorizing")

	return cmd
}
