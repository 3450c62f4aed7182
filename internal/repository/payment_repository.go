package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/mahiprime2001/Billing-system/internal/model"
)

// PaymentRepo provides persistence for payments recorded against
// bills.  Payment rows are append only; status corrections overwrite
// the status column but amounts never change.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment within an existing transaction and
// populates the generated ID and created_at on the record.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments
        (bill_id, payment_method, amount, payment_date, transaction_reference, status, notes, updated_by)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		p.BillID, p.PaymentMethod, p.Amount, p.PaymentDate,
		p.TransactionReference, p.Status, p.Notes, p.UpdatedBy)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT created_at FROM payments WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, p.ID).Scan(&p.CreatedAt)
}

// SumCompletedTx returns the cumulative amount of all completed
// payments for a bill, read inside the caller's transaction.  The
// settlement recomputation always sums persisted rows rather than
// adding an in-memory delta, so concurrent recordings cannot drop
// each other's effect on status.
func (r *PaymentRepo) SumCompletedTx(ctx context.Context, tx *sql.Tx, billID uint64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE bill_id=? AND status=?",
		billID, model.PaymentStatusCompleted).Scan(&total)
	return total, err
}

// ListByBill returns all payments for a bill ordered by payment date.
func (r *PaymentRepo) ListByBill(ctx context.Context, billID uint64) ([]model.Payment, error) {
	const q = `SELECT id, bill_id, payment_method, amount, payment_date,
                      transaction_reference, status, notes, created_at, updated_by
               FROM payments WHERE bill_id = ? ORDER BY payment_date, id`
	rows, err := r.db.QueryContext(ctx, q, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		var ref, notes sql.NullString
		var updatedBy sql.NullInt64
		if err := rows.Scan(&p.ID, &p.BillID, &p.PaymentMethod, &p.Amount, &p.PaymentDate,
			&ref, &p.Status, &notes, &p.CreatedAt, &updatedBy); err != nil {
			return nil, err
		}
		if ref.Valid {
			v := ref.String
			p.TransactionReference = &v
		}
		if notes.Valid {
			v := notes.String
			p.Notes = &v
		}
		if updatedBy.Valid {
			v := uint64(updatedBy.Int64)
			p.UpdatedBy = &v
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
