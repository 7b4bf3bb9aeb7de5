package core

import (
	"errors"
	"math"
	"testing"
)

func TestCustomerValidate(t *testing.T) {
	cases := []struct {
		name    string
		c       Customer
		wantErr error
	}{
		{"valid", Customer{Name: "Acme", Contact: "a@x.com", AccountID: "ACC1"}, nil},
		{"missing name", Customer{Contact: "a@x.com", AccountID: "ACC1"}, ErrEmptyName},
		{"blank name", Customer{Name: "   ", Contact: "a@x.com", AccountID: "ACC1"}, ErrEmptyName},
		{"missing contact", Customer{Name: "Acme", AccountID: "ACC1"}, ErrEmptyContact},
		{"missing account id", Customer{Name: "Acme", Contact: "a@x.com"}, ErrEmptyAccountID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	cases := []struct {
		name    string
		tx      Transaction
		wantErr error
	}{
		{"valid", Transaction{Item: "Widget", Quantity: 3, Price: Money{Cents: 1000}}, nil},
		{"zero quantity accepted", Transaction{Item: "Widget", Quantity: 0, Price: Money{Cents: 1000}}, nil},
		{"zero price accepted", Transaction{Item: "Widget", Quantity: 3, Price: Money{}}, nil},
		{"missing item", Transaction{Quantity: 3, Price: Money{Cents: 1000}}, ErrEmptyItem},
		{"negative quantity", Transaction{Item: "Widget", Quantity: -1, Price: Money{Cents: 1000}}, ErrInvalidQuantity},
		{"negative price", Transaction{Item: "Widget", Quantity: 1, Price: Money{Cents: -5}}, ErrInvalidAmount},
		{"line total overflow", Transaction{Item: "Widget", Quantity: math.MaxInt64 / 2, Price: Money{Cents: 3}}, ErrInvalidAmount},
		{"large but safe total", Transaction{Item: "Widget", Quantity: 1_000_000, Price: Money{Cents: 1_000_000}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tx.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPaymentValidate(t *testing.T) {
	if err := (Payment{Amount: Money{Cents: 1500}}).Validate(); err != nil {
		t.Fatalf("valid payment: %v", err)
	}
	if err := (Payment{Amount: Money{}}).Validate(); err != nil {
		t.Fatalf("zero payment should be accepted: %v", err)
	}
	if err := (Payment{Amount: Money{Cents: -1}}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestLineTotal(t *testing.T) {
	tx := Transaction{Item: "Widget", Quantity: 3, Price: Money{Cents: 1000}}
	if got := tx.LineTotal().Cents; got != 3000 {
		t.Fatalf("expected 3000, got %d", got)
	}
}
