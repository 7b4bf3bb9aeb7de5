package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordKind identifies which billing record a message refers to.
type RecordKind string

const (
	KindCustomer    RecordKind = "customer"
	KindTransaction RecordKind = "transaction"
	KindPayment     RecordKind = "payment"
)

func (k RecordKind) Valid() bool {
	switch k {
	case KindCustomer, KindTransaction, KindPayment:
		return true
	}
	return false
}

// RecordCreatedMessage announces a newly persisted record. It carries only
// the kind and ID; consumers fetch the full record from storage.
type RecordCreatedMessage struct {
	Kind      RecordKind `json:"kind"`
	ID        int64      `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewRecordCreatedMessage creates a message for a freshly stored record.
func NewRecordCreatedMessage(kind RecordKind, id int64) *RecordCreatedMessage {
	return &RecordCreatedMessage{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordCreatedMessageFromJSON creates a message from JSON bytes
func RecordCreatedMessageFromJSON(data []byte) (*RecordCreatedMessage, error) {
	var msg RecordCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Kind.Valid() {
		return nil, fmt.Errorf("unknown record kind %q", msg.Kind)
	}
	return &msg, nil
}
