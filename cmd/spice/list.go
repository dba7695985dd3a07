package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-dashboard/internal/cli"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored transactions, newest first",
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
				fmt.Println(cli.FormatInfo("No transactions yet. Run spice import or spice upload.")) //nolint:forbidigo // User-facing output
				return nil
			}

			fmt.Println(cli.FormatTransactions(txns)) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}
