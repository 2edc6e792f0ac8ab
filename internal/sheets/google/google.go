// Package google mirrors the ledger to a Google Sheets spreadsheet.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"bilancio/internal/sheets"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options carries the OAuth material and target sheet for the mirror.
// Client and token JSON come from the config layer, which resolves
// file-vs-inline variants.
type Options struct {
	SpreadsheetID string
	SheetName     string
	ClientJSON    []byte
	TokenJSON     []byte
}

// Client writes ledger rows to one sheet. Column layout:
// A=transaction id, B=date, C=category, D=card, E=amount, F=notes.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var (
	_ sheets.LedgerWriter  = (*Client)(nil)
	_ sheets.LedgerDeleter = (*Client)(nil)
)

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if opts.SheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	cfg, err := google.ConfigFromJSON(opts.ClientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(opts.TokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithTokenSource(cfg.TokenSource(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets mirror ready",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", opts.SheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
	}, nil
}

// Upsert writes the row at its existing position when the transaction was
// mirrored before, otherwise appends it after the last used row.
func (c *Client) Upsert(ctx context.Context, row sheets.LedgerRow) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rowNum, count, err := c.findRow(ctx, row.TransactionID)
	if err != nil {
		return "", err
	}
	if rowNum == 0 {
		rowNum = count + 1
	}

	rng := fmt.Sprintf("%s!A%d:F%d", c.sheetName, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(row)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Mirrored transaction",
		"transaction_id", row.TransactionID,
		"sheets_ref", rng)
	return rng, nil
}

// Delete clears the mirrored row. Clearing rather than removing keeps row
// numbers of later entries stable.
func (c *Client) Delete(ctx context.Context, transactionID int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rowNum, _, err := c.findRow(ctx, transactionID)
	if err != nil {
		return err
	}
	if rowNum == 0 {
		slog.DebugContext(ctx, "Transaction not on mirror, nothing to delete",
			"transaction_id", transactionID)
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:F%d", c.sheetName, rowNum, rowNum)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Removed transaction from mirror",
		"transaction_id", transactionID,
		"sheets_ref", rng)
	return nil
}

// findRow scans the ID column. Returns the 1-based row of the transaction
// (0 when absent) and the total number of used rows.
func (c *Client) findRow(ctx context.Context, transactionID int64) (rowNum, count int, err error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", rng, err)
	}

	want := strconv.FormatInt(transactionID, 10)
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1, len(resp.Values), nil
		}
	}
	return 0, len(resp.Values), nil
}

func rowValues(row sheets.LedgerRow) []any {
	return []any{
		row.TransactionID,
		row.Date.Format("2006-01-02"),
		row.Category,
		row.Card,
		centsToDecimal(row.AmountCents),
		row.Notes,
	}
}

// centsToDecimal renders cents as a plain decimal string so the
// spreadsheet never sees binary floats.
func centsToDecimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
