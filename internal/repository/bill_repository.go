package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mahiprime2001/Billing-system/internal/model"
)

// BillRepo provides persistence for bills and their line items.
// Bills are owned by a merchant and addressed to a user; line items
// are owned by the bill and cascade-deleted with it.  All timestamp
// columns are stored in UTC.
type BillRepo struct {
	db *sql.DB
}

// NewBillRepo returns a new BillRepo bound to the given database.
func NewBillRepo(db *sql.DB) *BillRepo { return &BillRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *BillRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new bill within an existing transaction and
// populates the generated ID and timestamps on the provided record.
// A unique-key collision on bill_number is reported as ErrConflict
// so the caller can regenerate the number and retry.
func (r *BillRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Bill) error {
	const q = `INSERT INTO bills
        (bill_number, merchant_id, store_id, user_id, bill_date, due_date,
         total_amount, tax_amount, discount_amount, status, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		b.BillNumber, b.MerchantID, b.StoreID, b.UserID, b.BillDate, b.DueDate,
		b.TotalAmount, b.TaxAmount, b.DiscountAmount, b.Status, b.Notes)
	if err != nil {
		// MySQL error 1062: duplicate entry for a unique key.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back timestamps populated by column defaults.
	const sel = `SELECT created_at, updated_at FROM bills WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// CreateItemsBulkTx inserts all line items of a bill in a single
// statement.  The caller must set BillID on every record.  Passing
// an empty slice has no effect and returns nil.
func (r *BillRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []model.BillItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO bill_items
        (bill_id, product_id, product_name, quantity, unit_price,
         tax_rate, tax_amount, discount_amount, total_amount) VALUES `
	args := make([]interface{}, 0, len(items)*9)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, it.BillID, it.ProductID, it.ProductName, it.Quantity,
			it.UnitPrice, it.TaxRate, it.TaxAmount, it.DiscountAmount, it.TotalAmount)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const billColumns = `id, bill_number, merchant_id, store_id, user_id, bill_date, due_date,
       total_amount, tax_amount, discount_amount, status, notes, created_at, updated_at`

func scanBill(row *sql.Row) (*model.Bill, error) {
	var b model.Bill
	var storeID sql.NullInt64
	var dueDate sql.NullTime
	var notes sql.NullString
	err := row.Scan(
		&b.ID, &b.BillNumber, &b.MerchantID, &storeID, &b.UserID, &b.BillDate, &dueDate,
		&b.TotalAmount, &b.TaxAmount, &b.DiscountAmount, &b.Status, &notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if storeID.Valid {
		sid := uint64(storeID.Int64)
		b.StoreID = &sid
	}
	if dueDate.Valid {
		d := dueDate.Time
		b.DueDate = &d
	}
	if notes.Valid {
		n := notes.String
		b.Notes = &n
	}
	return &b, nil
}

// GetByID returns a single bill or sql.ErrNoRows.
func (r *BillRepo) GetByID(ctx context.Context, billID uint64) (*model.Bill, error) {
	return scanBill(r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`, billID))
}

// GetForUpdateTx loads a bill with a row-level lock inside the given
// transaction.  Payment recording uses this to serialize concurrent
// settlements of the same bill: the status recomputation reads then
// writes cumulative totals and must not interleave.
func (r *BillRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, billID uint64) (*model.Bill, error) {
	return scanBill(tx.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ? FOR UPDATE`, billID))
}

// UpdateStatusTx overwrites the bill status and bumps updated_at.
func (r *BillRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, billID uint64, status string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE bills SET status=?, updated_at=NOW() WHERE id=?", status, billID)
	return err
}

// ItemsByBill returns all line items of a bill ordered by insertion.
func (r *BillRepo) ItemsByBill(ctx context.Context, billID uint64) ([]model.BillItem, error) {
	const q = `SELECT id, bill_id, product_id, product_name, quantity, unit_price,
                      tax_rate, tax_amount, discount_amount, total_amount, created_at
               FROM bill_items WHERE bill_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.BillItem, 0)
	for rows.Next() {
		var it model.BillItem
		var productID sql.NullInt64
		if err := rows.Scan(&it.ID, &it.BillID, &productID, &it.ProductName, &it.Quantity,
			&it.UnitPrice, &it.TaxRate, &it.TaxAmount, &it.DiscountAmount, &it.TotalAmount,
			&it.CreatedAt); err != nil {
			return nil, err
		}
		if productID.Valid {
			pid := uint64(productID.Int64)
			it.ProductID = &pid
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// BillSummary is one row of a bill listing, augmented with the
// merchant and store display names for read-only convenience.
type BillSummary struct {
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
	MerchantName   *string         `json:"merchant_name"`
	StoreName      *string         `json:"store_name"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ListFilter narrows a bill listing.  Status is matched exactly when
// non-empty; FromDate/ToDate bound bill_date inclusively when set.
type ListFilter struct {
	Status   string
	FromDate *time.Time
	ToDate   *time.Time
}

// ListByUser returns all bills addressed to the given user, newest
// bill_date first, with merchant and store names joined in.
func (r *BillRepo) ListByUser(ctx context.Context, userID uint64, f ListFilter) ([]BillSummary, error) {
	q := `SELECT b.id, b.bill_number, b.merchant_id, b.store_id, b.user_id, b.bill_date, b.due_date,
                 b.total_amount, b.tax_amount, b.discount_amount, b.status, b.notes,
                 m.business_name, s.store_name, b.created_at, b.updated_at
          FROM bills b
          JOIN merchants m ON m.id = b.merchant_id
          LEFT JOIN store_locations s ON s.id = b.store_id
          WHERE b.user_id = ?`
	args := []interface{}{userID}
	if f.Status != "" {
		q += " AND b.status = ?"
		args = append(args, f.Status)
	}
	if f.FromDate != nil {
		q += " AND b.bill_date >= ?"
		args = append(args, *f.FromDate)
	}
	if f.ToDate != nil {
		q += " AND b.bill_date <= ?"
		args = append(args, *f.ToDate)
	}
	q += " ORDER BY b.bill_date DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bills := make([]BillSummary, 0)
	for rows.Next() {
		var b BillSummary
		var storeID sql.NullInt64
		var dueDate sql.NullTime
		var notes, merchantName, storeName sql.NullString
		if err := rows.Scan(&b.ID, &b.BillNumber, &b.MerchantID, &storeID, &b.UserID,
			&b.BillDate, &dueDate, &b.TotalAmount, &b.TaxAmount, &b.DiscountAmount,
			&b.Status, &notes, &merchantName, &storeName, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if storeID.Valid {
			sid := uint64(storeID.Int64)
			b.StoreID = &sid
		}
		if dueDate.Valid {
			d := dueDate.Time
			b.DueDate = &d
		}
		if notes.Valid {
			n := notes.String
			b.Notes = &n
		}
		if merchantName.Valid {
			mn := merchantName.String
			b.MerchantName = &mn
		}
		if storeName.Valid {
			sn := storeName.String
			b.StoreName = &sn
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}
