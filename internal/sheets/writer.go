package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/service"
)

// Writer writes reports to Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// ExportResult identifies the spreadsheet an export wrote to.
type ExportResult struct {
	SpreadsheetID string
	URL           string
	Rows          int
}

// NewWriter creates a writer authenticated with the configured credentials.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return newWriter(srv, config, logger), nil
}

func newWriter(srv *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if config.SpreadsheetName == "" {
		config.SpreadsheetName = DefaultSpreadsheetName
	}
	return &Writer{
		service: srv,
		config:  config,
		logger:  common.ComponentLogger(logger, "sheets"),
	}
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	return sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
}

// Export replaces the contents of every report tab. Without a configured
// spreadsheet id a new spreadsheet is created.
func (w *Writer) Export(ctx context.Context, report Report) (ExportResult, error) {
	retryOpts := service.RetryOptions{
		MaxAttempts:  max(w.config.RetryAttempts, 1),
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	spreadsheet, err := w.spreadsheet(ctx, report)
	if err != nil {
		return ExportResult{}, err
	}
	id := spreadsheet.SpreadsheetId

	if err := w.ensureTabs(ctx, spreadsheet, report); err != nil {
		return ExportResult{}, err
	}

	rows := 0
	for _, tab := range report.Tabs {
		err := common.WithRetry(ctx, func() error {
			return w.replaceValues(ctx, id, tab)
		}, retryOpts)
		if err != nil {
			return ExportResult{}, fmt.Errorf("failed to write %s tab: %w", tab.Title, err)
		}
		rows += len(tab.Values)
	}

	if err := w.formatHeaders(ctx, id, report); err != nil {
		w.logger.Warn("Failed to format header rows", "error", err)
	}

	w.logger.Info("Export completed", "spreadsheet_id", id, "rows_written", rows)
	return ExportResult{SpreadsheetID: id, URL: spreadsheet.SpreadsheetUrl, Rows: rows}, nil
}

func (w *Writer) spreadsheet(ctx context.Context, report Report) (*sheets.Spreadsheet, error) {
	if w.config.SpreadsheetID != "" {
		existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return existing, nil
	}

	title := w.config.SpreadsheetName
	if report.Title != "" {
		title = fmt.Sprintf("%s: %s", title, report.Title)
	}

	created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title, TimeZone: w.config.TimeZone},
		Sheets:     tabSheets(report),
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("Created new spreadsheet", "id", created.SpreadsheetId, "url", created.SpreadsheetUrl)
	return created, nil
}

// ensureTabs adds report tabs missing from an existing spreadsheet.
func (w *Writer) ensureTabs(ctx context.Context, spreadsheet *sheets.Spreadsheet, report Report) error {
	present := make(map[string]bool, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			present[sheet.Properties.Title] = true
		}
	}

	var requests []*sheets.Request
	for _, tab := range report.Tabs {
		if !present[tab.Title] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab.Title}},
			})
		}
	}
	if len(requests) == 0 {
		return nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheet.SpreadsheetId,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add tabs: %w", err)
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{Properties: reply.AddSheet.Properties})
		}
	}
	return nil
}

func (w *Writer) replaceValues(ctx context.Context, id string, tab Tab) error {
	if _, err := w.service.Spreadsheets.Values.Clear(id, tab.Title, &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return err
	}

	_, err := w.service.Spreadsheets.Values.Update(id, tab.Title+"!A1", &sheets.ValueRange{Values: tab.Values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

// formatHeaders bolds and freezes the first row of every tab.
func (w *Writer) formatHeaders(ctx context.Context, id string, report Report) error {
	spreadsheet, err := w.service.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		return err
	}

	wanted := make(map[string]bool, len(report.Tabs))
	for _, tab := range report.Tabs {
		wanted[tab.Title] = true
	}

	var requests []*sheets.Request
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties == nil || !wanted[sheet.Properties.Title] {
			continue
		}
		sheetID := sheet.Properties.SheetId
		requests = append(requests,
			&sheets.Request{RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, EndRowIndex: 1, ForceSendFields: []string{"SheetId"}},
				Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true},
				}},
				Fields: "userEnteredFormat.textFormat",
			}},
			&sheets.Request{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:         sheetID,
					GridProperties:  &sheets.GridProperties{FrozenRowCount: 1},
					ForceSendFields: []string{"SheetId"},
				},
				Fields: "gridProperties.frozenRowCount",
			}},
		)
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = w.service.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	return err
}

func tabSheets(report Report) []*sheets.Sheet {
	out := make([]*sheets.Sheet, 0, len(report.Tabs))
	for _, tab := range report.Tabs {
		out = append(out, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: tab.Title}})
	}
	return out
}
