package service

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mahiprime2001/Billing-system/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeBillTotals_TwoItems(t *testing.T) {
	// qty 2 @ 100 with 18% tax plus qty 1 @ 50 untaxed.
	totals, err := ComputeBillTotals([]BillItemInput{
		{ProductName: "Rice Bag", Quantity: 2, UnitPrice: dec("100"), TaxRate: dec("18")},
		{ProductName: "Salt", Quantity: 1, UnitPrice: dec("50")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := totals.TotalAmount; !got.Equal(dec("286.00")) {
		t.Errorf("total_amount = %s, want 286.00", got)
	}
	if got := totals.TaxAmount; !got.Equal(dec("36.00")) {
		t.Errorf("tax_amount = %s, want 36.00", got)
	}
	if len(totals.Items) != 2 {
		t.Fatalf("expected 2 computed items, got %d", len(totals.Items))
	}
	first := totals.Items[0]
	if !first.TaxAmount.Equal(dec("36.00")) {
		t.Errorf("item 0 tax = %s, want 36.00", first.TaxAmount)
	}
	if !first.TotalAmount.Equal(dec("236.00")) {
		t.Errorf("item 0 total = %s, want 236.00", first.TotalAmount)
	}
	if !totals.Items[1].TotalAmount.Equal(dec("50.00")) {
		t.Errorf("item 1 total = %s, want 50.00", totals.Items[1].TotalAmount)
	}
}

func TestComputeBillTotals_DiscountAndRounding(t *testing.T) {
	totals, err := ComputeBillTotals([]BillItemInput{
		// 3 * 33.33 = 99.99; 5% tax = 4.9995 -> 5.00; discount 10.
		{ProductName: "Notebook", Quantity: 3, UnitPrice: dec("33.33"), TaxRate: dec("5"), DiscountAmount: dec("10")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := totals.Items[0].TaxAmount; !got.Equal(dec("5.00")) {
		t.Errorf("tax = %s, want 5.00", got)
	}
	if got := totals.TotalAmount; !got.Equal(dec("94.99")) {
		t.Errorf("total = %s, want 94.99", got)
	}
}

func TestComputeBillTotals_Invariant(t *testing.T) {
	// total == qty*unit_price + tax - discount for every line, and the
	// bill totals are the line sums.
	inputs := []BillItemInput{
		{ProductName: "A", Quantity: 7, UnitPrice: dec("12.49"), TaxRate: dec("18"), DiscountAmount: dec("1.50")},
		{ProductName: "B", Quantity: 1, UnitPrice: dec("0.01")},
		{ProductName: "C", Quantity: 250, UnitPrice: dec("3.20"), TaxRate: dec("12.5")},
	}
	totals, err := ComputeBillTotals(inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sumTotal, sumTax := decimal.Zero, decimal.Zero
	for i, it := range totals.Items {
		subtotal := it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
		want := subtotal.Add(it.TaxAmount).Sub(it.DiscountAmount).Round(2)
		if !it.TotalAmount.Equal(want) {
			t.Errorf("item %d total = %s, want %s", i, it.TotalAmount, want)
		}
		sumTotal = sumTotal.Add(it.TotalAmount)
		sumTax = sumTax.Add(it.TaxAmount)
	}
	if !totals.TotalAmount.Equal(sumTotal) {
		t.Errorf("bill total = %s, want sum of items %s", totals.TotalAmount, sumTotal)
	}
	if !totals.TaxAmount.Equal(sumTax) {
		t.Errorf("bill tax = %s, want sum of items %s", totals.TaxAmount, sumTax)
	}
}

func TestComputeBillTotals_Validation(t *testing.T) {
	cases := []struct {
		name  string
		items []BillItemInput
	}{
		{"empty items", nil},
		{"missing product_name", []BillItemInput{{Quantity: 1, UnitPrice: dec("10")}}},
		{"zero quantity", []BillItemInput{{ProductName: "X", UnitPrice: dec("10")}}},
		{"zero unit_price", []BillItemInput{{ProductName: "X", Quantity: 1}}},
		{"negative tax_rate", []BillItemInput{{ProductName: "X", Quantity: 1, UnitPrice: dec("10"), TaxRate: dec("-1")}}},
		{"negative discount", []BillItemInput{{ProductName: "X", Quantity: 1, UnitPrice: dec("10"), DiscountAmount: dec("-5")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeBillTotals(tc.items)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestNextBillStatus_PaymentSequence(t *testing.T) {
	total := dec("286.00")

	// Full payment settles the bill.
	if got := NextBillStatus(model.BillStatusPending, dec("286.00"), total); got != model.BillStatusPaid {
		t.Errorf("full payment: status = %s, want paid", got)
	}
	// Partial payment.
	if got := NextBillStatus(model.BillStatusPending, dec("100"), total); got != model.BillStatusPartiallyPaid {
		t.Errorf("partial payment: status = %s, want partially_paid", got)
	}
	// Overpayment still just marks paid.
	if got := NextBillStatus(model.BillStatusPartiallyPaid, dec("300"), total); got != model.BillStatusPaid {
		t.Errorf("overpayment: status = %s, want paid", got)
	}
	// Nothing paid leaves the status alone.
	if got := NextBillStatus(model.BillStatusPending, decimal.Zero, total); got != model.BillStatusPending {
		t.Errorf("no payment: status = %s, want pending", got)
	}
	// The rule applies unconditionally, so a corrected payment set can
	// move a bill back down from paid.
	if got := NextBillStatus(model.BillStatusPaid, dec("100"), total); got != model.BillStatusPartiallyPaid {
		t.Errorf("correction: status = %s, want partially_paid", got)
	}
}

func TestNextBillStatus_ZeroTotalBill(t *testing.T) {
	// On a zero-total bill the cumulative amount always covers the
	// total, so the first recomputation settles it.
	if got := NextBillStatus(model.BillStatusPending, decimal.Zero, decimal.Zero); got != model.BillStatusPaid {
		t.Errorf("status = %s, want paid (0 >= 0)", got)
	}
}

func TestNewBillNumber_Format(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^BILL-20260829-\d{4}$`)
	for i := 0; i < 20; i++ {
		n, err := NewBillNumber(now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !pattern.MatchString(n) {
			t.Fatalf("bill number %q does not match BILL-YYYYMMDD-NNNN", n)
		}
	}
}
