package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing/internal/amqp"
	"billing/internal/core"
)

var _ Store = (*mockStore)(nil)

type mockStore struct {
	customersByAccount map[string]core.Customer
	transactions       []core.Transaction
	payments           []core.Payment
	nextID             int64

	failWith error
}

func newMockStore() *mockStore {
	return &mockStore{customersByAccount: make(map[string]core.Customer)}
}

func (m *mockStore) assignID() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockStore) CreateCustomer(_ context.Context, c core.Customer) (core.Customer, error) {
	if m.failWith != nil {
		return core.Customer{}, m.failWith
	}
	if _, ok := m.customersByAccount[c.AccountID]; ok {
		return core.Customer{}, core.ErrDuplicateAccount
	}
	c.ID = m.assignID()
	m.customersByAccount[c.AccountID] = c
	return c, nil
}

func (m *mockStore) ListCustomers(_ context.Context) ([]core.Customer, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []core.Customer{}
	for _, c := range m.customersByAccount {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockStore) FindCustomerByAccountID(_ context.Context, accountID string) (core.Customer, error) {
	if c, ok := m.customersByAccount[accountID]; ok {
		return c, nil
	}
	return core.Customer{}, core.ErrNotFound
}

func (m *mockStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if m.failWith != nil {
		return core.Transaction{}, m.failWith
	}
	t.ID = m.assignID()
	m.transactions = append(m.transactions, t)
	return t, nil
}

func (m *mockStore) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	return append([]core.Transaction{}, m.transactions...), nil
}

func (m *mockStore) CreatePayment(_ context.Context, p core.Payment) (core.Payment, error) {
	if m.failWith != nil {
		return core.Payment{}, m.failWith
	}
	p.ID = m.assignID()
	m.payments = append(m.payments, p)
	return p, nil
}

func (m *mockStore) ListPayments(_ context.Context) ([]core.Payment, error) {
	return append([]core.Payment{}, m.payments...), nil
}

func (m *mockStore) CustomerHistory(ctx context.Context, accountID string) (core.Customer, []core.Transaction, []core.Payment, error) {
	customer, err := m.FindCustomerByAccountID(ctx, accountID)
	if err != nil {
		return core.Customer{}, nil, nil, err
	}
	var txs []core.Transaction
	for _, t := range m.transactions {
		if t.CustomerID == customer.ID {
			txs = append(txs, t)
		}
	}
	var pays []core.Payment
	for _, p := range m.payments {
		if p.CustomerID == customer.ID {
			pays = append(pays, p)
		}
	}
	return customer, txs, pays, nil
}

var _ EventPublisher = (*mockPublisher)(nil)

type mockPublisher struct {
	published []amqp.RecordKind
	err       error
}

func (m *mockPublisher) PublishRecordCreated(_ context.Context, kind amqp.RecordKind, _ int64) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, kind)
	return nil
}

func TestCreateCustomer(t *testing.T) {
	store := newMockStore()
	pub := &mockPublisher{}
	svc := NewBillingService(store, pub)
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, core.Customer{Name: "Acme", Contact: "a@x.com", AccountID: "ACC1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, []amqp.RecordKind{amqp.KindCustomer}, pub.published)

	_, err = svc.CreateCustomer(ctx, core.Customer{Name: "Other", Contact: "o@x.com", AccountID: "ACC1"})
	assert.ErrorIs(t, err, core.ErrDuplicateAccount)

	_, err = svc.CreateCustomer(ctx, core.Customer{Contact: "x", AccountID: "ACC2"})
	assert.ErrorIs(t, err, core.ErrEmptyName)
}

func TestCreateTransactionResolvesAccount(t *testing.T) {
	store := newMockStore()
	svc := NewBillingService(store, nil)
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, core.Customer{Name: "Acme", Contact: "a@x.com", AccountID: "ACC1"})
	require.NoError(t, err)

	created, err := svc.CreateTransaction(ctx, "ACC1", core.Transaction{Item: "Widget", Quantity: 3, Price: core.Money{Cents: 1000}})
	require.NoError(t, err)
	assert.Equal(t, customer.ID, created.CustomerID)
	require.NotNil(t, created.Customer)
	assert.Equal(t, "ACC1", created.Customer.AccountID)

	_, err = svc.CreateTransaction(ctx, "NOPE", core.Transaction{Item: "Widget", Quantity: 1, Price: core.Money{Cents: 100}})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Len(t, store.transactions, 1, "nothing must persist for an unknown account")
}

func TestCreatePaymentResolvesAccount(t *testing.T) {
	store := newMockStore()
	svc := NewBillingService(store, nil)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, core.Customer{Name: "Acme", Contact: "a@x.com", AccountID: "ACC1"})
	require.NoError(t, err)

	created, err := svc.CreatePayment(ctx, "ACC1", core.Payment{Amount: core.Money{Cents: 1500}})
	require.NoError(t, err)
	require.NotNil(t, created.Customer)

	_, err = svc.CreatePayment(ctx, "NOPE", core.Payment{Amount: core.Money{Cents: 100}})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Len(t, store.payments, 1)
}

func TestInvoiceWorkedExample(t *testing.T) {
	store := newMockStore()
	svc := NewBillingService(store, nil)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, core.Customer{Name: "Acme", Contact: "a@x.com", AccountID: "ACC1"})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, "ACC1", core.Transaction{Item: "Widget", Quantity: 3, Price: core.Money{Cents: 1000}})
	require.NoError(t, err)
	_, err = svc.CreatePayment(ctx, "ACC1", core.Payment{Amount: core.Money{Cents: 1500}})
	require.NoError(t, err)

	inv, err := svc.Invoice(ctx, "ACC1")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), inv.TotalAmount.Cents)
	assert.Equal(t, int64(1500), inv.TotalPayments.Cents)
	assert.Equal(t, int64(1500), inv.OutstandingBalance.Cents)

	// Reads are idempotent.
	again, err := svc.Invoice(ctx, "ACC1")
	require.NoError(t, err)
	assert.Equal(t, inv, again)

	_, err = svc.Invoice(ctx, "NOPE")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	store := newMockStore()
	pub := &mockPublisher{err: errors.New("broker down")}
	svc := NewBillingService(store, pub)

	_, err := svc.CreateCustomer(context.Background(), core.Customer{Name: "Acme", Contact: "a@x.com", AccountID: "ACC1"})
	require.NoError(t, err, "event publication is best-effort")
}
