// Package services orchestrates billing operations across storage and the
// event stream. Handlers talk to BillingService; BillingService talks to a
// Store, so everything above storage is testable without a live database.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"billing/internal/amqp"
	"billing/internal/core"
)

// Store is the persistence port BillingService depends on, implemented by
// storage.SQLiteRepository.
type Store interface {
	CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error)
	ListCustomers(ctx context.Context) ([]core.Customer, error)
	FindCustomerByAccountID(ctx context.Context, accountID string) (core.Customer, error)

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)

	CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error)
	ListPayments(ctx context.Context) ([]core.Payment, error)

	CustomerHistory(ctx context.Context, accountID string) (core.Customer, []core.Transaction, []core.Payment, error)
}

// EventPublisher announces stored records to downstream consumers.
type EventPublisher interface {
	PublishRecordCreated(ctx context.Context, kind amqp.RecordKind, id int64) error
}

// BillingService implements the record creation, listing, and invoice
// operations on top of a Store.
type BillingService struct {
	store     Store
	publisher EventPublisher
}

// NewBillingService wires the service. publisher may be nil; event
// publication is best-effort and never fails a request.
func NewBillingService(store Store, publisher EventPublisher) *BillingService {
	return &BillingService{
		store:     store,
		publisher: publisher,
	}
}

// CreateCustomer validates and persists a new customer. The account id
// must be unused; core.ErrDuplicateAccount surfaces otherwise.
func (s *BillingService) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}

	created, err := s.store.CreateCustomer(ctx, c)
	if err != nil {
		return core.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	s.publishRecordCreated(ctx, amqp.KindCustomer, created.ID)
	return created, nil
}

// ListCustomers returns all customers.
func (s *BillingService) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// CreateTransaction resolves the account id to its owning customer,
// persists the line item, and returns it with the customer attached.
func (s *BillingService) CreateTransaction(ctx context.Context, accountID string, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	customer, err := s.store.FindCustomerByAccountID(ctx, accountID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("resolve account %q: %w", accountID, err)
	}

	t.CustomerID = customer.ID
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	created.Customer = &customer

	s.publishRecordCreated(ctx, amqp.KindTransaction, created.ID)
	return created, nil
}

// ListTransactions returns all transactions, most recent first, each with
// its owning customer.
func (s *BillingService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

// CreatePayment resolves the account id and persists the payment.
func (s *BillingService) CreatePayment(ctx context.Context, accountID string, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}

	customer, err := s.store.FindCustomerByAccountID(ctx, accountID)
	if err != nil {
		return core.Payment{}, fmt.Errorf("resolve account %q: %w", accountID, err)
	}

	p.CustomerID = customer.ID
	created, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		return core.Payment{}, fmt.Errorf("create payment: %w", err)
	}
	created.Customer = &customer

	s.publishRecordCreated(ctx, amqp.KindPayment, created.ID)
	return created, nil
}

// ListPayments returns all payments, most recent first, each with its
// owning customer.
func (s *BillingService) ListPayments(ctx context.Context) ([]core.Payment, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// Invoice computes the billing summary for one account from its stored
// history. Nothing is cached or persisted; repeated calls with no
// intervening writes return identical totals.
func (s *BillingService) Invoice(ctx context.Context, accountID string) (core.Invoice, error) {
	customer, transactions, payments, err := s.store.CustomerHistory(ctx, accountID)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("load history for account %q: %w", accountID, err)
	}
	return core.ComputeInvoice(customer, transactions, payments), nil
}

func (s *BillingService) publishRecordCreated(ctx context.Context, kind amqp.RecordKind, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordCreated(ctx, kind, id); err != nil {
		// The record is already durable; losing the event only delays the
		// ledger mirror until the next export pass.
		slog.ErrorContext(ctx, "Failed to publish record created event",
			"kind", kind,
			"id", id,
			"error", err)
	}
}
