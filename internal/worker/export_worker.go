// Package worker mirrors newly created billing records to the ledger
// spreadsheet as record-created messages arrive.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"billing/internal/amqp"
	"billing/internal/core"
)

// RecordSource loads full records for the IDs carried in messages,
// implemented by storage.SQLiteRepository.
type RecordSource interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	GetPayment(ctx context.Context, id int64) (core.Payment, error)
}

// Ledger receives mirrored rows, implemented by the Google Sheets client.
type Ledger interface {
	AppendTransaction(ctx context.Context, t core.Transaction) (string, error)
	AppendPayment(ctx context.Context, p core.Payment) (string, error)
}

// ExportWorker consumes record-created messages and appends the referenced
// records to the ledger.
type ExportWorker struct {
	source RecordSource
	ledger Ledger
}

func NewExportWorker(source RecordSource, ledger Ledger) *ExportWorker {
	return &ExportWorker{
		source: source,
		ledger: ledger,
	}
}

// HandleRecordCreated processes a single record-created message. Customer
// messages carry no monetary data and are acknowledged without a ledger
// row.
func (w *ExportWorker) HandleRecordCreated(ctx context.Context, msg *amqp.RecordCreatedMessage) error {
	slog.InfoContext(ctx, "Processing record created message",
		"kind", msg.Kind,
		"id", msg.ID)

	switch msg.Kind {
	case amqp.KindTransaction:
		transaction, err := w.source.GetTransaction(ctx, msg.ID)
		if err != nil {
			return fmt.Errorf("get transaction %d: %w", msg.ID, err)
		}
		if _, err := w.ledger.AppendTransaction(ctx, transaction); err != nil {
			return fmt.Errorf("mirror transaction %d: %w", msg.ID, err)
		}

	case amqp.KindPayment:
		payment, err := w.source.GetPayment(ctx, msg.ID)
		if err != nil {
			return fmt.Errorf("get payment %d: %w", msg.ID, err)
		}
		if _, err := w.ledger.AppendPayment(ctx, payment); err != nil {
			return fmt.Errorf("mirror payment %d: %w", msg.ID, err)
		}

	case amqp.KindCustomer:
		slog.InfoContext(ctx, "Customer created, nothing to mirror", "id", msg.ID)

	default:
		return fmt.Errorf("unknown record kind %q", msg.Kind)
	}

	return nil
}
