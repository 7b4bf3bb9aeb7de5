// Package storage persists billing records in SQLite.
//
// The schema lives in embedded migrations and is applied on open. All
// monetary columns hold cents; referential integrity is enforced both by
// resolving the owning customer before every insert and by foreign keys.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"billing/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateCustomer inserts a customer. A duplicate account id surfaces as
// core.ErrDuplicateAccount, arbitrated by the unique index so exactly one
// of two racing creations wins.
func (r *SQLiteRepository) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (name, contact, account_id) VALUES (?, ?, ?)`,
		c.Name, c.Contact, c.AccountID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Customer{}, core.ErrDuplicateAccount
		}
		return core.Customer{}, fmt.Errorf("insert customer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Customer{}, fmt.Errorf("customer insert id: %w", err)
	}
	c.ID = id

	slog.InfoContext(ctx, "Customer saved",
		"id", c.ID,
		"account_id", c.AccountID,
		"name", c.Name)

	return c, nil
}

// ListCustomers returns every customer in insertion order.
func (r *SQLiteRepository) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, contact, account_id FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := []core.Customer{}
	for rows.Next() {
		var c core.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Contact, &c.AccountID); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

// FindCustomerByAccountID resolves an account id to exactly one customer,
// or core.ErrNotFound.
func (r *SQLiteRepository) FindCustomerByAccountID(ctx context.Context, accountID string) (core.Customer, error) {
	var c core.Customer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, contact, account_id FROM customers WHERE account_id = ?`,
		accountID).Scan(&c.ID, &c.Name, &c.Contact, &c.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Customer{}, core.ErrNotFound
	}
	if err != nil {
		return core.Customer{}, fmt.Errorf("find customer by account id: %w", err)
	}
	return c, nil
}

// CreateTransaction inserts a transaction owned by an already resolved
// customer. Date defaults to the current time when zero.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (customer_id, item, quantity, price_cents, date) VALUES (?, ?, ?, ?, ?)`,
		t.CustomerID, t.Item, t.Quantity, t.Price.Cents, t.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"customer_id", t.CustomerID,
		"item", t.Item,
		"quantity", t.Quantity,
		"price_cents", t.Price.Cents)

	return t, nil
}

// ListTransactions returns every transaction with its owning customer
// attached, most recent first. Ties on date keep insertion order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.customer_id, t.item, t.quantity, t.price_cents, t.date,
		        c.id, c.name, c.contact, c.account_id
		   FROM transactions t
		   JOIN customers c ON c.id = t.customer_id
		  ORDER BY t.date DESC, t.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// GetTransaction fetches one transaction with its customer attached.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT t.id, t.customer_id, t.item, t.quantity, t.price_cents, t.date,
		        c.id, c.name, c.contact, c.account_id
		   FROM transactions t
		   JOIN customers c ON c.id = t.customer_id
		  WHERE t.id = ?`, id)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// CreatePayment inserts a payment owned by an already resolved customer.
func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (customer_id, amount_cents, date) VALUES (?, ?, ?)`,
		p.CustomerID, p.Amount.Cents, p.Date)
	if err != nil {
		return core.Payment{}, fmt.Errorf("insert payment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Payment{}, fmt.Errorf("payment insert id: %w", err)
	}
	p.ID = id

	slog.InfoContext(ctx, "Payment saved",
		"id", p.ID,
		"customer_id", p.CustomerID,
		"amount_cents", p.Amount.Cents)

	return p, nil
}

// ListPayments returns every payment with its owning customer attached,
// most recent first.
func (r *SQLiteRepository) ListPayments(ctx context.Context) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.customer_id, p.amount_cents, p.date,
		        c.id, c.name, c.contact, c.account_id
		   FROM payments p
		   JOIN customers c ON c.id = p.customer_id
		  ORDER BY p.date DESC, p.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	payments := []core.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

// GetPayment fetches one payment with its customer attached.
func (r *SQLiteRepository) GetPayment(ctx context.Context, id int64) (core.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.customer_id, p.amount_cents, p.date,
		        c.id, c.name, c.contact, c.account_id
		   FROM payments p
		   JOIN customers c ON c.id = p.customer_id
		  WHERE p.id = ?`, id)

	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payment{}, core.ErrNotFound
	}
	if err != nil {
		return core.Payment{}, err
	}
	return p, nil
}

// CustomerHistory loads a customer and its full transaction and payment
// history in one call, the relational include invoices are computed from.
func (r *SQLiteRepository) CustomerHistory(ctx context.Context, accountID string) (core.Customer, []core.Transaction, []core.Payment, error) {
	customer, err := r.FindCustomerByAccountID(ctx, accountID)
	if err != nil {
		return core.Customer{}, nil, nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, item, quantity, price_cents, date
		   FROM transactions
		  WHERE customer_id = ?
		  ORDER BY date DESC, id ASC`, customer.ID)
	if err != nil {
		return core.Customer{}, nil, nil, fmt.Errorf("query customer transactions: %w", err)
	}
	defer rows.Close()

	transactions := []core.Transaction{}
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Item, &t.Quantity, &t.Price.Cents, &t.Date); err != nil {
			return core.Customer{}, nil, nil, fmt.Errorf("scan customer transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return core.Customer{}, nil, nil, fmt.Errorf("iterate customer transactions: %w", err)
	}

	payRows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, amount_cents, date
		   FROM payments
		  WHERE customer_id = ?
		  ORDER BY date DESC, id ASC`, customer.ID)
	if err != nil {
		return core.Customer{}, nil, nil, fmt.Errorf("query customer payments: %w", err)
	}
	defer payRows.Close()

	payments := []core.Payment{}
	for payRows.Next() {
		var p core.Payment
		if err := payRows.Scan(&p.ID, &p.CustomerID, &p.Amount.Cents, &p.Date); err != nil {
			return core.Customer{}, nil, nil, fmt.Errorf("scan customer payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := payRows.Err(); err != nil {
		return core.Customer{}, nil, nil, fmt.Errorf("iterate customer payments: %w", err)
	}

	return customer, transactions, payments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t core.Transaction
		c core.Customer
	)
	err := row.Scan(&t.ID, &t.CustomerID, &t.Item, &t.Quantity, &t.Price.Cents, &t.Date,
		&c.ID, &c.Name, &c.Contact, &c.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, err
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Customer = &c
	return t, nil
}

func scanPayment(row rowScanner) (core.Payment, error) {
	var (
		p core.Payment
		c core.Customer
	)
	err := row.Scan(&p.ID, &p.CustomerID, &p.Amount.Cents, &p.Date,
		&c.ID, &c.Name, &c.Contact, &c.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payment{}, err
	}
	if err != nil {
		return core.Payment{}, fmt.Errorf("scan payment: %w", err)
	}
	p.Customer = &c
	return p, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
