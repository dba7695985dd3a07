package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-dashboard/internal/cli"
	"github.com/Veraticus/spice-dashboard/internal/sheets"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export transactions and the spending summary to Google Sheets",
		Long: `Write every stored transaction for the user, plus category and monthly
totals, to a Google Sheets spreadsheet.

Authenticate with either a service account (sheets.service_account_path) or
an OAuth2 client and refresh token (sheets.client_id, sheets.client_secret,
sheets.refresh_token). Without sheets.spreadsheet_id a new spreadsheet is
created; otherwise its Transactions and Summary tabs are replaced.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := sheets.DefaultConfig()
			cfg.ClientID = a.cfg.Sheets.ClientID
			cfg.ClientSecret = a.cfg.Sheets.ClientSecret
			cfg.RefreshToken = a.cfg.Sheets.RefreshToken
			cfg.ServiceAccountPath = a.cfg.Sheets.ServiceAccountPath
			cfg.SpreadsheetID = a.cfg.Sheets.SpreadsheetID
			if a.cfg.Sheets.SpreadsheetName != "" {
				cfg.SpreadsheetName = a.cfg.Sheets.SpreadsheetName
			}
			if a.cfg.Sheets.TimeZone != "" {
				cfg.TimeZone = a.cfg.Sheets.TimeZone
			}

			writer, err := sheets.NewWriter(ctx, cfg, a.logger)
			if err != nil {
				return err
			}

			// The dashboard list cap does not apply to exports.
			txns, err := a.store.ListTransactions(ctx, userID, 0)
			if err != nil {
				return err
			}

			result, err := writer.Export(ctx, sheets.BuildReport(userID, txns))
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to %s", len(txns), result.URL))) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}
