package http

import (
	"encoding/json"
	"net/http"

	"billing/internal/core"
	applog "billing/internal/log"
)

type createCustomerRequest struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	AccountID string `json:"accountId"`
}

type createTransactionRequest struct {
	AccountID string      `json:"accountId"`
	Item      string      `json:"item"`
	Quantity  *quantity   `json:"quantity"`
	Price     *core.Money `json:"price"`
}

type createPaymentRequest struct {
	AccountID string      `json:"accountId"`
	Amount    *core.Money `json:"amount"`
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.billing.ListCustomers(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to list customers", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch customers")
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	customer := core.Customer{
		Name:      sanitizeInput(req.Name),
		Contact:   sanitizeInput(req.Contact),
		AccountID: sanitizeInput(req.AccountID),
	}

	created, err := s.billing.CreateCustomer(r.Context(), customer)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Customer creation rejected",
			applog.FieldAccountID, customer.AccountID,
			applog.FieldError, err)
		writeDomainError(w, err, "Failed to create customer")
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Customer created",
		applog.FieldCustomerID, created.ID,
		applog.FieldAccountID, created.AccountID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.billing.ListTransactions(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to list transactions", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Quantity == nil || req.Price == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	tx := core.Transaction{
		Item:     sanitizeInput(req.Item),
		Quantity: int64(*req.Quantity),
		Price:    *req.Price,
	}

	created, err := s.billing.CreateTransaction(r.Context(), sanitizeInput(req.AccountID), tx)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Transaction creation rejected",
			applog.FieldAccountID, req.AccountID,
			applog.FieldItem, tx.Item,
			applog.FieldError, err)
		writeDomainError(w, err, "Failed to create transaction")
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		applog.FieldRecordID, created.ID,
		applog.FieldAccountID, req.AccountID,
		applog.FieldAmountCents, created.LineTotal().Cents)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.billing.ListPayments(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to list payments", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch payments")
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	payment := core.Payment{Amount: *req.Amount}

	created, err := s.billing.CreatePayment(r.Context(), sanitizeInput(req.AccountID), payment)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Payment creation rejected",
			applog.FieldAccountID, req.AccountID,
			applog.FieldError, err)
		writeDomainError(w, err, "Failed to create payment")
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Payment created",
		applog.FieldRecordID, created.ID,
		applog.FieldAccountID, req.AccountID,
		applog.FieldAmountCents, created.Amount.Cents)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	accountID := sanitizeInput(r.PathValue("accountId"))
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "Missing account id")
		return
	}

	invoice, err := s.billing.Invoice(r.Context(), accountID)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Invoice lookup failed",
			applog.FieldAccountID, accountID,
			applog.FieldError, err)
		writeDomainError(w, err, "Failed to generate invoice")
		return
	}

	writeJSON(w, http.StatusOK, invoice)
}
