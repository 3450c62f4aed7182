package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func postJSON(t *testing.T, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateBillReq_BindsDiscountAmount(t *testing.T) {
	c, _ := postJSON(t, "/bills",
		`{"merchant_id":1,"user_id":2,"discount_amount":"25.00","items":[{"product_name":"Rice","quantity":2,"unit_price":"50.00"}]}`)
	var req createBillReq
	if err := c.Bind(&req); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if !req.DiscountAmount.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("discount_amount = %s, want 25.00", req.DiscountAmount)
	}
}

func TestCreateBillReq_DiscountDefaultsToZero(t *testing.T) {
	c, _ := postJSON(t, "/bills",
		`{"merchant_id":1,"user_id":2,"items":[{"product_name":"Rice","quantity":2,"unit_price":"50.00"}]}`)
	var req createBillReq
	if err := c.Bind(&req); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if !req.DiscountAmount.IsZero() {
		t.Errorf("discount_amount = %s, want 0", req.DiscountAmount)
	}
}

func TestCreateBill_RejectsNegativeDiscount(t *testing.T) {
	c, rec := postJSON(t, "/bills",
		`{"merchant_id":1,"user_id":2,"discount_amount":"-1.00","items":[{"product_name":"Rice","quantity":2,"unit_price":"50.00"}]}`)
	// Validation fires before any dependency is touched.
	h := &BillHandler{}
	if err := h.CreateBill(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "discount_amount") {
		t.Errorf("body %q does not name discount_amount", rec.Body.String())
	}
}
