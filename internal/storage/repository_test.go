package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"billing/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "billing.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndFindCustomer(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateCustomer(ctx, core.Customer{Name: "Acme", Contact: "a@x.com", AccountID: "ACC1"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	found, err := repo.FindCustomerByAccountID(ctx, "ACC1")
	if err != nil {
		t.Fatalf("find customer: %v", err)
	}
	if found != created {
		t.Fatalf("lookup mismatch: created=%+v found=%+v", created, found)
	}
}

func TestDuplicateAccountID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	original, err := repo.CreateCustomer(ctx, core.Customer{Name: "Acme", Contact: "a@x.com", AccountID: "ACC1"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	_, err = repo.CreateCustomer(ctx, core.Customer{Name: "Other", Contact: "o@x.com", AccountID: "ACC1"})
	if !errors.Is(err, core.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}

	// The original record must be untouched.
	found, err := repo.FindCustomerByAccountID(ctx, "ACC1")
	if err != nil {
		t.Fatalf("find customer after conflict: %v", err)
	}
	if found != original {
		t.Fatalf("original customer changed: %+v != %+v", found, original)
	}
}

func TestFindCustomerNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.FindCustomerByAccountID(context.Background(), "NOPE")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListCustomersEmpty(t *testing.T) {
	repo := newTestRepo(t)

	customers, err := repo.ListCustomers(context.Background())
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if customers == nil || len(customers) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", customers)
	}
}

func TestTransactionsOrderedMostRecentFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	customer, err := repo.CreateCustomer(ctx, core.Customer{Name: "Acme", Contact: "a@x.com", AccountID: "ACC1"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	older := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	for _, tx := range []core.Transaction{
		{CustomerID: customer.ID, Item: "first", Quantity: 1, Price: core.Money{Cents: 100}, Date: older},
		{CustomerID: customer.ID, Item: "second", Quantity: 1, Price: core.Money{Cents: 200}, Date: newer},
		{CustomerID: customer.ID, Item: "tied-with-first", Quantity: 1, Price: core.Money{Cents: 300}, Date: older},
	} {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create transaction %q: %v", tx.Item, err)
		}
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(list))
	}

	// Newest date first; equal dates keep insertion order.
	wantOrder := []string{"second", "first", "tied-with-first"}
	for i, want := range wantOrder {
		if list[i].Item != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, list[i].Item)
		}
	}
	for _, tx := range list {
		if tx.Customer == nil || tx.Customer.AccountID != "ACC1" {
			t.Fatalf("transaction %d missing joined customer: %+v", tx.ID, tx.Customer)
		}
	}
}

func TestPaymentRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	customer, err := repo.CreateCustomer(ctx, core.Customer{Name: "Acme", Contact: "a@x.com", AccountID: "ACC1"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	created, err := repo.CreatePayment(ctx, core.Payment{CustomerID: customer.ID, Amount: core.Money{Cents: 1500}})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if created.Date.IsZero() {
		t.Fatal("expected payment date to default to creation time")
	}

	fetched, err := repo.GetPayment(ctx, created.ID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if fetched.Amount.Cents != 1500 {
		t.Fatalf("expected 1500 cents, got %d", fetched.Amount.Cents)
	}
	if fetched.Customer == nil || fetched.Customer.ID != customer.ID {
		t.Fatalf("expected joined customer, got %+v", fetched.Customer)
	}
}

func TestCustomerHistoryScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acme, err := repo.CreateCustomer(ctx, core.Customer{Name: "Acme", Contact: "a@x.com", AccountID: "ACC1"})
	if err != nil {
		t.Fatalf("create acme: %v", err)
	}
	other, err := repo.CreateCustomer(ctx, core.Customer{Name: "Other", Contact: "o@x.com", AccountID: "ACC2"})
	if err != nil {
		t.Fatalf("create other: %v", err)
	}

	if _, err := repo.CreateTransaction(ctx, core.Transaction{CustomerID: acme.ID, Item: "Widget", Quantity: 3, Price: core.Money{Cents: 1000}}); err != nil {
		t.Fatalf("create acme transaction: %v", err)
	}
	if _, err := repo.CreateTransaction(ctx, core.Transaction{CustomerID: other.ID, Item: "Gadget", Quantity: 1, Price: core.Money{Cents: 9999}}); err != nil {
		t.Fatalf("create other transaction: %v", err)
	}
	if _, err := repo.CreatePayment(ctx, core.Payment{CustomerID: acme.ID, Amount: core.Money{Cents: 1500}}); err != nil {
		t.Fatalf("create acme payment: %v", err)
	}

	customer, transactions, payments, err := repo.CustomerHistory(ctx, "ACC1")
	if err != nil {
		t.Fatalf("customer history: %v", err)
	}
	if customer.ID != acme.ID {
		t.Fatalf("expected customer %d, got %d", acme.ID, customer.ID)
	}
	if len(transactions) != 1 || transactions[0].Item != "Widget" {
		t.Fatalf("expected only acme's transaction, got %+v", transactions)
	}
	if len(payments) != 1 || payments[0].Amount.Cents != 1500 {
		t.Fatalf("expected only acme's payment, got %+v", payments)
	}

	_, _, _, err = repo.CustomerHistory(ctx, "NOPE")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown account, got %v", err)
	}
}
