// Package service contains the billing domain logic: settlement math
// for bills and payments, the temporary-link lifecycle, and SMS
// notification dispatch.  Persistence is injected so the logic stays
// independent of the storage layer.
package service

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mahiprime2001/Billing-system/internal/model"
)

// ErrValidation marks user-correctable input problems.  Handlers
// translate it into an HTTP 400 response.
var ErrValidation = errors.New("validation error")

var oneHundred = decimal.NewFromInt(100)

// BillItemInput is one requested line item for bill creation.
// UnitPrice, TaxRate and DiscountAmount arrive as decimals from the
// request body; TaxRate is a percentage (18.00 means 18%).
type BillItemInput struct {
	ProductID      *uint64         `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// BillItemTotals is a computed line item ready for insertion.
type BillItemTotals struct {
	BillItemInput
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// BillTotals aggregates the computed lines and the bill-level sums.
type BillTotals struct {
	Items       []BillItemTotals
	TotalAmount decimal.Decimal
	TaxAmount   decimal.Decimal
}

// ComputeBillTotals validates the requested items and derives all
// monetary totals.  Per line: tax = quantity*unit_price*tax_rate/100
// and total = quantity*unit_price + tax - discount.  Bill totals are
// the sums over all lines.  Amounts are rounded to two decimal
// places, matching the DECIMAL(10,2) columns.
func ComputeBillTotals(items []BillItemInput) (BillTotals, error) {
	if len(items) == 0 {
		return BillTotals{}, fmt.Errorf("%w: items must be a non-empty list", ErrValidation)
	}
	out := BillTotals{
		Items:       make([]BillItemTotals, 0, len(items)),
		TotalAmount: decimal.Zero,
		TaxAmount:   decimal.Zero,
	}
	for i, item := range items {
		if strings.TrimSpace(item.ProductName) == "" {
			return BillTotals{}, fmt.Errorf("%w: missing required field in item %d: product_name", ErrValidation, i)
		}
		if item.Quantity <= 0 {
			return BillTotals{}, fmt.Errorf("%w: missing required field in item %d: quantity", ErrValidation, i)
		}
		if item.UnitPrice.IsNegative() || item.UnitPrice.IsZero() {
			return BillTotals{}, fmt.Errorf("%w: missing required field in item %d: unit_price", ErrValidation, i)
		}
		if item.TaxRate.IsNegative() || item.DiscountAmount.IsNegative() {
			return BillTotals{}, fmt.Errorf("%w: negative tax_rate or discount_amount in item %d", ErrValidation, i)
		}
		subtotal := item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		tax := subtotal.Mul(item.TaxRate).Div(oneHundred).Round(2)
		total := subtotal.Add(tax).Sub(item.DiscountAmount).Round(2)
		out.Items = append(out.Items, BillItemTotals{
			BillItemInput: item,
			TaxAmount:     tax,
			TotalAmount:   total,
		})
		out.TotalAmount = out.TotalAmount.Add(total)
		out.TaxAmount = out.TaxAmount.Add(tax)
	}
	return out, nil
}

// NextBillStatus applies the settlement rule after a payment: the
// cumulative completed amount covers the bill -> paid; any positive
// amount -> partially_paid; otherwise the status stays as it was.
// The rule is applied unconditionally, not just upward, so a
// corrected payment set can move a bill back to partially_paid.
func NextBillStatus(current string, totalPaid, totalAmount decimal.Decimal) string {
	switch {
	case totalPaid.GreaterThanOrEqual(totalAmount):
		return model.BillStatusPaid
	case totalPaid.IsPositive():
		return model.BillStatusPartiallyPaid
	default:
		return current
	}
}

// NewBillNumber generates a human-readable bill number of the form
// BILL-YYYYMMDD-NNNN where NNNN is a random 4-digit suffix.  The
// format is not collision-free by construction; the repository
// retries on a duplicate-key insert.
func NewBillNumber(now time.Time) (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint64(buf[:]) % 10000
	return fmt.Sprintf("BILL-%s-%04d", now.UTC().Format("20060102"), n), nil
}
