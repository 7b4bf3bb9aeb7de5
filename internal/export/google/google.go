// Package google mirrors stored billing records into a Google Sheets
// ledger. The spreadsheet is an external, append-only copy; SQLite stays
// the source of truth.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"billing/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	paymentsSheet     string
}

// New creates a Sheets client for the given spreadsheet. Credentials come
// from the environment: GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, transactionsSheet, paymentsSheet string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if transactionsSheet == "" {
		transactionsSheet = "Transactions"
	}
	if paymentsSheet == "" {
		paymentsSheet = "Payments"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		transactionsSheet: transactionsSheet,
		paymentsSheet:     paymentsSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// AppendTransaction appends one ledger row for a transaction and returns
// the updated range as a reference.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if t.Customer == nil {
		return "", errors.New("transaction has no customer attached")
	}

	row := []any{
		t.Date.Format("2006-01-02 15:04:05"),
		t.Customer.AccountID,
		t.Customer.Name,
		t.Item,
		t.Quantity,
		t.Price.String(),
		t.LineTotal().String(),
	}
	ref, err := c.appendRow(ctx, c.transactionsSheet, row)
	if err != nil {
		return "", fmt.Errorf("append transaction %d: %w", t.ID, err)
	}

	slog.InfoContext(ctx, "Transaction mirrored to ledger sheet",
		"id", t.ID,
		"account_id", t.Customer.AccountID,
		"sheets_ref", ref)

	return ref, nil
}

// AppendPayment appends one ledger row for a payment.
func (c *Client) AppendPayment(ctx context.Context, p core.Payment) (string, error) {
	if p.Customer == nil {
		return "", errors.New("payment has no customer attached")
	}

	row := []any{
		p.Date.Format("2006-01-02 15:04:05"),
		p.Customer.AccountID,
		p.Customer.Name,
		p.Amount.String(),
	}
	ref, err := c.appendRow(ctx, c.paymentsSheet, row)
	if err != nil {
		return "", fmt.Errorf("append payment %d: %w", p.ID, err)
	}

	slog.InfoContext(ctx, "Payment mirrored to ledger sheet",
		"id", p.ID,
		"account_id", p.Customer.AccountID,
		"sheets_ref", ref)

	return ref, nil
}

func (c *Client) appendRow(ctx context.Context, sheet string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return sheet, nil
}
