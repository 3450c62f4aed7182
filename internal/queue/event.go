// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// Event type tags carried in every message so a single queue can
// transport the whole billing event stream.
const (
	TypeBillIssued      = "bill.issued"
	TypePaymentRecorded = "payment.recorded"
)

// BillIssuedEvent is published when a bill is successfully created.
// It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type BillIssuedEvent struct {
	Type         string `json:"type"`
	BillID       uint64 `json:"bill_id"`
	BillNumber   string `json:"bill_number"`
	MerchantID   uint64 `json:"merchant_id"`
	MerchantName string `json:"merchant_name"`
	UserID       uint64 `json:"user_id"`
	TotalAmount  string `json:"total_amount"`
	TaxAmount    string `json:"tax_amount"`
	ItemCount    int    `json:"item_count"`
	IssuedAt     string `json:"issued_at"`
}

// PaymentRecordedEvent is published after a payment settles against a
// bill and the status recomputation has committed.
type PaymentRecordedEvent struct {
	Type          string `json:"type"`
	PaymentID     uint64 `json:"payment_id"`
	BillID        uint64 `json:"bill_id"`
	BillNumber    string `json:"bill_number"`
	UserID        uint64 `json:"user_id"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	BillStatus    string `json:"bill_status"`
	RecordedAt    string `json:"recorded_at"`
}
