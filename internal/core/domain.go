package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

type (
	// Customer is an account holder. AccountID is the externally chosen
	// unique key used for all lookups; ID is assigned by storage.
	Customer struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Contact   string `json:"contact"`
		AccountID string `json:"accountId"`
	}

	// Transaction is a billable line item owned by exactly one customer.
	// Price is per unit; the line total is Quantity × Price.
	Transaction struct {
		ID         int64     `json:"id"`
		CustomerID int64     `json:"customerId"`
		Item       string    `json:"item"`
		Quantity   int64     `json:"quantity"`
		Price      Money     `json:"price"`
		Date       time.Time `json:"date"`

		// Customer is the owning record, attached by read-time join.
		Customer *Customer `json:"customer,omitempty"`
	}

	// Payment records money received against a customer's account.
	Payment struct {
		ID         int64     `json:"id"`
		CustomerID int64     `json:"customerId"`
		Amount     Money     `json:"amount"`
		Date       time.Time `json:"date"`

		Customer *Customer `json:"customer,omitempty"`
	}
)

var (
	ErrNotFound         = errors.New("customer not found")
	ErrDuplicateAccount = errors.New("account id already in use")

	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyContact    = errors.New("empty contact")
	ErrEmptyAccountID  = errors.New("empty account id")
	ErrEmptyItem       = errors.New("empty item")
)

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Contact) == "" {
		return ErrEmptyContact
	}
	if strings.TrimSpace(c.AccountID) == "" {
		return ErrEmptyAccountID
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Item) == "" {
		return ErrEmptyItem
	}
	if len(t.Item) > 200 {
		return errors.New("item too long (max 200 characters)")
	}
	if t.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if t.Price.Cents < 0 {
		return ErrInvalidAmount
	}
	// Quantity × Price must stay within int64 cents.
	if t.Quantity > 0 && t.Price.Cents > math.MaxInt64/t.Quantity {
		return ErrInvalidAmount
	}
	return nil
}

// LineTotal returns Quantity × Price in exact cents.
func (t Transaction) LineTotal() Money {
	return Money{Cents: t.Quantity * t.Price.Cents}
}

func (p Payment) Validate() error {
	if p.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
