package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/mahiprime2001/Billing-system/internal/config"
	"github.com/mahiprime2001/Billing-system/internal/middleware"
	"github.com/mahiprime2001/Billing-system/internal/model"
	"github.com/mahiprime2001/Billing-system/internal/queue"
	"github.com/mahiprime2001/Billing-system/internal/repository"
	"github.com/mahiprime2001/Billing-system/internal/service"
)

// billNumberAttempts bounds the regenerate-and-retry loop when a
// freshly generated bill number collides with an existing one.
const billNumberAttempts = 5

// BillHandler bundles dependencies for the bill lifecycle endpoints:
// creation, listing, detail, payment recording and tokenized viewing.
type BillHandler struct {
	Bills     *repository.BillRepo
	Payments  *repository.PaymentRepo
	Merchants *repository.MerchantRepo
	Links     *service.LinkService
	Cache     config.CacheConfig
	Redis     *redis.Client
}

func NewBillHandler(b *repository.BillRepo, p *repository.PaymentRepo, m *repository.MerchantRepo, l *service.LinkService, rdb *redis.Client) *BillHandler {
	return &BillHandler{Bills: b, Payments: p, Merchants: m, Links: l, Cache: config.LoadCacheConfig(), Redis: rdb}
}

// ----- DTOs -----

type createBillReq struct {
	MerchantID     uint64                  `json:"merchant_id"`
	StoreID        *uint64                 `json:"store_id"`
	UserID         uint64                  `json:"user_id"`
	Items          []service.BillItemInput `json:"items"`
	BillDate       string                  `json:"bill_date"`
	DueDate        string                  `json:"due_date"`
	DiscountAmount decimal.Decimal         `json:"discount_amount"`
	Notes          *string                 `json:"notes"`
}

type recordPaymentReq struct {
	PaymentMethod        string          `json:"payment_method"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentDate          string          `json:"payment_date"`
	TransactionReference *string         `json:"transaction_reference"`
	Notes                *string         `json:"notes"`
	UpdatedBy            *uint64         `json:"updated_by"`
}

// paymentSummary is the settlement snapshot attached to bill detail.
type paymentSummary struct {
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	IsFullyPaid     bool            `json:"is_fully_paid"`
}

type billItemPart struct {
	ID             uint64          `json:"id"`
	ProductID      *uint64         `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

type paymentPart struct {
	ID                   uint64          `json:"id"`
	PaymentMethod        string          `json:"payment_method"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentDate          time.Time       `json:"payment_date"`
	TransactionReference *string         `json:"transaction_reference"`
	Status               string          `json:"status"`
	Notes                *string         `json:"notes"`
}

type billDetail struct {
	ID             uint64          `json:"id"`
	BillNumber     string          `json:"bill_number"`
	MerchantID     uint64          `json:"merchant_id"`
	StoreID        *uint64         `json:"store_id"`
	UserID         uint64          `json:"user_id"`
	BillDate       time.Time       `json:"bill_date"`
	DueDate        *time.Time      `json:"due_date"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Status         string          `json:"status"`
	Notes          *string         `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []billItemPart  `json:"items"`
	Payments       []paymentPart   `json:"payments"`
	PaymentSummary paymentSummary  `json:"payment_summary"`
}

// parseDate accepts a bare date or a full RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// CreateBill validates the requested line items, computes all totals
// and persists the bill with its items in one transaction.  The
// generated bill number is not collision-free by construction, so a
// duplicate-key insert regenerates the number and retries.
func (h *BillHandler) CreateBill(c echo.Context) error {
	var req createBillReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	if req.MerchantID == 0 || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "merchant_id and user_id are required"})
	}
	if req.DiscountAmount.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "discount_amount cannot be negative"})
	}
	totals, err := service.ComputeBillTotals(req.Items)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
	}

	now := time.Now().UTC()
	billDate := now
	if req.BillDate != "" {
		if billDate, err = parseDate(req.BillDate); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "malformed bill_date"})
		}
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		d, err := parseDate(req.DueDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "malformed due_date"})
		}
		dueDate = &d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	merchant, err := h.Merchants.GetByID(ctx, req.MerchantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "merchant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
	}

	tx, err := h.Bills.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	bill := &model.Bill{
		MerchantID:     req.MerchantID,
		StoreID:        req.StoreID,
		UserID:         req.UserID,
		BillDate:       billDate,
		DueDate:        dueDate,
		TotalAmount:    totals.TotalAmount,
		TaxAmount:      totals.TaxAmount,
		DiscountAmount: req.DiscountAmount, // bill-level discount is informational, item discounts already net the totals
		Status:         model.BillStatusPending, // always pending at creation, even for a zero total
		Notes:          req.Notes,
	}
	for attempt := 0; ; attempt++ {
		bill.BillNumber, err = service.NewBillNumber(now)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "bill number generation failed"})
		}
		err = h.Bills.CreateTx(ctx, tx, bill)
		if err == nil {
			break
		}
		if err == repository.ErrConflict && attempt < billNumberAttempts-1 {
			continue
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "create bill failed"})
	}

	items := make([]model.BillItem, 0, len(totals.Items))
	for _, it := range totals.Items {
		items = append(items, model.BillItem{
			BillID:         bill.ID,
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			TaxRate:        it.TaxRate,
			TaxAmount:      it.TaxAmount,
			DiscountAmount: it.DiscountAmount,
			TotalAmount:    it.TotalAmount,
		})
	}
	if err := h.Bills.CreateItemsBulkTx(ctx, tx, items); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "create items failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "commit failed"})
	}
	committed = true

	// Best-effort event publish; failures are logged, not surfaced.
	go func(ev queue.BillIssuedEvent) {
		pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pcancel()
		if err := queue.PublishBillIssued(pctx, ev); err != nil {
			log.Printf("bill: publish bill.issued failed: %v", err)
		}
	}(queue.BillIssuedEvent{
		BillID:       bill.ID,
		BillNumber:   bill.BillNumber,
		MerchantID:   merchant.ID,
		MerchantName: merchant.BusinessName,
		UserID:       bill.UserID,
		TotalAmount:  bill.TotalAmount.StringFixed(2),
		TaxAmount:    bill.TaxAmount.StringFixed(2),
		ItemCount:    len(items),
		IssuedAt:     now.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"bill_id":     bill.ID,
		"bill_number": bill.BillNumber,
	})
}

// ListBills returns all bills addressed to a user, newest first.
// user_id is required; status, from_date and to_date narrow the result.
func (h *BillHandler) ListBills(c echo.Context) error {
	userStr := strings.TrimSpace(c.QueryParam("user_id"))
	if userStr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "user_id is required"})
	}
	userID, err := strconv.ParseUint(userStr, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "malformed user_id"})
	}
	filter, err := listFilterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bills, err := h.Bills.ListByUser(ctx, userID, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(bills),
		"bills":   bills,
	})
}

// billStatuses are the values accepted by the status filter.  Overdue
// and cancelled are never produced by settlement but remain queryable.
var billStatuses = map[string]bool{
	model.BillStatusPending:       true,
	model.BillStatusPartiallyPaid: true,
	model.BillStatusPaid:          true,
	model.BillStatusOverdue:       true,
	model.BillStatusCancelled:     true,
}

func listFilterFromQuery(c echo.Context) (repository.ListFilter, error) {
	var f repository.ListFilter
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		if !billStatuses[status] {
			return f, errors.New("unknown status filter")
		}
		f.Status = status
	}
	if from := strings.TrimSpace(c.QueryParam("from_date")); from != "" {
		t, err := parseDate(from)
		if err != nil {
			return f, errors.New("malformed from_date")
		}
		f.FromDate = &t
	}
	if to := strings.TrimSpace(c.QueryParam("to_date")); to != "" {
		t, err := parseDate(to)
		if err != nil {
			return f, errors.New("malformed to_date")
		}
		f.ToDate = &t
	}
	return f, nil
}

// GetBill assembles a bill with its items, payments and settlement
// summary.
func (h *BillHandler) GetBill(c echo.Context) error {
	billID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "malformed bill id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	detail, err := h.loadBillDetail(ctx, billID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "bill not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "bill": detail})
}

func (h *BillHandler) loadBillDetail(ctx context.Context, billID uint64) (*billDetail, error) {
	bill, err := h.Bills.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	items, err := h.Bills.ItemsByBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	payments, err := h.Payments.ListByBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	itemParts := make([]billItemPart, 0, len(items))
	for _, it := range items {
		itemParts = append(itemParts, billItemPart{
			ID: it.ID, ProductID: it.ProductID, ProductName: it.ProductName,
			Quantity: it.Quantity, UnitPrice: it.UnitPrice, TaxRate: it.TaxRate,
			TaxAmount: it.TaxAmount, DiscountAmount: it.DiscountAmount, TotalAmount: it.TotalAmount,
		})
	}
	totalPaid := decimal.Zero
	paymentParts := make([]paymentPart, 0, len(payments))
	for _, p := range payments {
		if p.Status == model.PaymentStatusCompleted {
			totalPaid = totalPaid.Add(p.Amount)
		}
		paymentParts = append(paymentParts, paymentPart{
			ID: p.ID, PaymentMethod: p.PaymentMethod, Amount: p.Amount,
			PaymentDate: p.PaymentDate, TransactionReference: p.TransactionReference,
			Status: p.Status, Notes: p.Notes,
		})
	}
	remaining := bill.TotalAmount.Sub(totalPaid)
	return &billDetail{
		ID: bill.ID, BillNumber: bill.BillNumber, MerchantID: bill.MerchantID,
		StoreID: bill.StoreID, UserID: bill.UserID, BillDate: bill.BillDate,
		DueDate: bill.DueDate, TotalAmount: bill.TotalAmount, TaxAmount: bill.TaxAmount,
		DiscountAmount: bill.DiscountAmount, Status: bill.Status, Notes: bill.Notes,
		CreatedAt: bill.CreatedAt, UpdatedAt: bill.UpdatedAt,
		Items:          itemParts,
		Payments:       paymentParts,
		PaymentSummary: paymentSummary{
			TotalAmount:     bill.TotalAmount,
			TotalPaid:       totalPaid,
			RemainingAmount: remaining,
			IsFullyPaid:     !remaining.IsPositive(),
		},
	}, nil
}

// RecordPayment appends a completed payment to a bill and recomputes
// its status from the cumulative completed amount.  The bill row is
// locked for the duration of the transaction so concurrent recordings
// against the same bill serialize instead of dropping each other's
// effect on status.
func (h *BillHandler) RecordPayment(c echo.Context) error {
	billID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "malformed bill id"})
	}
	var req recordPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "payment_method is required"})
	}
	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "amount must be positive"})
	}
	paymentDate := time.Now().UTC()
	if req.PaymentDate != "" {
		if paymentDate, err = parseDate(req.PaymentDate); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "malformed payment_date"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Bills.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	bill, err := h.Bills.GetForUpdateTx(ctx, tx, billID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "bill not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
	}

	payment := &model.Payment{
		BillID:               bill.ID,
		PaymentMethod:        req.PaymentMethod,
		Amount:               req.Amount,
		PaymentDate:          paymentDate,
		TransactionReference: req.TransactionReference,
		Status:               model.PaymentStatusCompleted,
		Notes:                req.Notes,
		UpdatedBy:            req.UpdatedBy,
	}
	if err := h.Payments.CreateTx(ctx, tx, payment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "record payment failed"})
	}

	// Sum persisted rows, never an in-memory delta.
	totalPaid, err := h.Payments.SumCompletedTx(ctx, tx, bill.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "settlement query failed"})
	}
	status := service.NextBillStatus(bill.Status, totalPaid, bill.TotalAmount)
	if status != bill.Status {
		if err := h.Bills.UpdateStatusTx(ctx, tx, bill.ID, status); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "update status failed"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "commit failed"})
	}
	committed = true

	// The cached detail now reports a stale status and summary.
	middleware.InvalidateCached(ctx, h.Cache, h.Redis, "/bills/"+strconv.FormatUint(bill.ID, 10))

	go func(ev queue.PaymentRecordedEvent) {
		pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pcancel()
		if err := queue.PublishPaymentRecorded(pctx, ev); err != nil {
			log.Printf("bill: publish payment.recorded failed: %v", err)
		}
	}(queue.PaymentRecordedEvent{
		PaymentID:     payment.ID,
		BillID:        bill.ID,
		BillNumber:    bill.BillNumber,
		UserID:        bill.UserID,
		Amount:        payment.Amount.StringFixed(2),
		PaymentMethod: payment.PaymentMethod,
		BillStatus:    status,
		RecordedAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"message":     "payment recorded successfully",
		"payment_id":  payment.ID,
		"bill_status": status,
	})
}

// ViewBillByToken serves the bill behind a temporary link.  A valid
// token yields the full bill detail; any failure redirects to the
// fallback page for its reason code.
func (h *BillHandler) ViewBillByToken(c echo.Context) error {
	token := c.Param("token")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.Links.Validate(ctx, token)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "validation failed"})
	}
	if !result.Valid {
		return c.Redirect(http.StatusFound, result.RedirectTo)
	}

	detail, err := h.loadBillDetail(ctx, result.BillID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "bill not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
	}

	// The landing view is rendered without a session, so the display
	// names the client would normally already have are joined in.
	resp := echo.Map{"success": true, "bill": detail}
	if merchant, err := h.Merchants.GetByID(ctx, detail.MerchantID); err == nil {
		resp["merchant_name"] = merchant.BusinessName
	}
	if detail.StoreID != nil {
		if store, err := h.Merchants.GetStoreByID(ctx, *detail.StoreID); err == nil {
			resp["store_name"] = store.StoreName
		}
	}
	return c.JSON(http.StatusOK, resp)
}
