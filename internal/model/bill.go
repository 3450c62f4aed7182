package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill statuses. Settlement only ever produces pending, partially_paid
// and paid; overdue and cancelled exist for external workflows and are
// accepted as filter values.
const (
	BillStatusPending       = "pending"
	BillStatusPartiallyPaid = "partially_paid"
	BillStatusPaid          = "paid"
	BillStatusOverdue       = "overdue"
	BillStatusCancelled     = "cancelled"
)

// Bill is a billing document issued by a merchant to a user.  It
// aggregates line items and payments and tracks the settlement
// status derived from cumulative completed payments.  All monetary
// columns are DECIMAL(10,2) and all timestamps are stored in UTC.
//
// Fields:
//  ID             – primary key identifier.
//  BillNumber     – unique human-readable number (BILL-YYYYMMDD-NNNN).
//  MerchantID     – issuing merchant.
//  StoreID        – issuing store location, if any.
//  UserID         – user the bill is addressed to.
//  BillDate       – issue date.
//  DueDate        – optional due date.
//  TotalAmount    – sum of item totals at creation time.
//  TaxAmount      – sum of item taxes at creation time.
//  DiscountAmount – bill-level discount (informational).
//  Status         – settlement status (see constants above).
//  Notes          – free-text notes.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Bill struct {
	ID             uint64          // bills.id
	BillNumber     string          // bills.bill_number
	MerchantID     uint64          // bills.merchant_id
	StoreID        *uint64         // bills.store_id (nullable)
	UserID         uint64          // bills.user_id
	BillDate       time.Time       // bills.bill_date
	DueDate        *time.Time      // bills.due_date (nullable)
	TotalAmount    decimal.Decimal // bills.total_amount
	TaxAmount      decimal.Decimal // bills.tax_amount
	DiscountAmount decimal.Decimal // bills.discount_amount
	Status         string          // bills.status
	Notes          *string         // bills.notes (nullable)
	CreatedAt      time.Time       // bills.created_at
	UpdatedAt      time.Time       // bills.updated_at
}

// BillItem is a line item owned by exactly one bill.  Product name
// and prices are snapshotted at creation so historical bills stay
// immutable when the catalog changes.
//
// Fields:
//  ID             – primary key identifier.
//  BillID         – owning bill.
//  ProductID      – catalog product reference, if any.
//  ProductName    – snapshotted product name.
//  Quantity       – number of units.
//  UnitPrice      – snapshotted unit price.
//  TaxRate        – tax rate in percent (e.g. 18.00).
//  TaxAmount      – quantity*unit_price*tax_rate/100.
//  DiscountAmount – per-line discount.
//  TotalAmount    – quantity*unit_price + tax_amount - discount_amount.
//  CreatedAt      – creation timestamp.
type BillItem struct {
	ID             uint64          // bill_items.id
	BillID         uint64          // bill_items.bill_id
	ProductID      *uint64         // bill_items.product_id (nullable)
	ProductName    string          // bill_items.product_name
	Quantity       int64           // bill_items.quantity
	UnitPrice      decimal.Decimal // bill_items.unit_price
	TaxRate        decimal.Decimal // bill_items.tax_rate
	TaxAmount      decimal.Decimal // bill_items.tax_amount
	DiscountAmount decimal.Decimal // bill_items.discount_amount
	TotalAmount    decimal.Decimal // bill_items.total_amount
	CreatedAt      time.Time       // bill_items.created_at
}

// Payment statuses.  Current flows only ever write 'completed'; the
// remaining values exist for manual overwrites.
const (
	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment records money received against a bill.  Rows are append
// only; settlement recomputes the bill status from the sum of all
// completed payments, never from an in-memory delta.
//
// Fields:
//  ID                   – primary key identifier.
//  BillID               – owning bill.
//  PaymentMethod        – 'cash', 'upi', 'card', etc.
//  Amount               – amount paid (strictly positive).
//  PaymentDate          – when the payment was made.
//  TransactionReference – external reference, if any.
//  Status               – payment status (see constants above).
//  Notes                – free-text notes.
//  CreatedAt            – creation timestamp.
//  UpdatedBy            – user or merchant who recorded the payment.
type Payment struct {
	ID                   uint64          // payments.id
	BillID               uint64          // payments.bill_id
	PaymentMethod        string          // payments.payment_method
	Amount               decimal.Decimal // payments.amount
	PaymentDate          time.Time       // payments.payment_date
	TransactionReference *string         // payments.transaction_reference (nullable)
	Status               string          // payments.status
	Notes                *string         // payments.notes (nullable)
	CreatedAt            time.Time       // payments.created_at
	UpdatedBy            *uint64         // payments.updated_by (nullable)
}
