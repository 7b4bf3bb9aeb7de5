package core

// Invoice is a computed summary of a customer's billing history. It is
// never stored; every field derives from the records passed in.
type Invoice struct {
	Customer           Customer      `json:"customer"`
	Transactions       []Transaction `json:"transactions"`
	TotalAmount        Money         `json:"totalAmount"`
	TotalPayments      Money         `json:"totalPayments"`
	OutstandingBalance Money         `json:"outstandingBalance"`
}

// ComputeInvoice folds a customer's full history into an invoice.
// OutstandingBalance may be negative when the customer has overpaid; the
// credit is reported as-is, not clamped.
func ComputeInvoice(customer Customer, transactions []Transaction, payments []Payment) Invoice {
	var billed Money
	for _, t := range transactions {
		billed = billed.Add(t.LineTotal())
	}
	var paid Money
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	if transactions == nil {
		transactions = []Transaction{}
	}
	return Invoice{
		Customer:           customer,
		Transactions:       transactions,
		TotalAmount:        billed,
		TotalPayments:      paid,
		OutstandingBalance: billed.Sub(paid),
	}
}
