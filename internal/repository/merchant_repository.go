package repository

import (
	"context"
	"database/sql"

	"github.com/mahiprime2001/Billing-system/internal/model"
)

// MerchantRepo reads merchant and store records.  Billing only needs
// the display fields for listings and notification messages; the
// merchant onboarding surface is a separate service.
type MerchantRepo struct{ DB *sql.DB }

func NewMerchantRepo(db *sql.DB) *MerchantRepo { return &MerchantRepo{DB: db} }

// GetByID fetches a merchant by id.
func (r *MerchantRepo) GetByID(ctx context.Context, id uint64) (model.Merchant, error) {
	var m model.Merchant
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, business_name, gst_number, email, phone_number, is_active, created_at, updated_at
         FROM merchants WHERE id=? LIMIT 1`, id).
		Scan(&m.ID, &m.BusinessName, &m.GSTNumber, &m.Email, &m.PhoneNumber,
			&m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// GetStoreByID fetches a store location by id.
func (r *MerchantRepo) GetStoreByID(ctx context.Context, id uint64) (model.StoreLocation, error) {
	var s model.StoreLocation
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, merchant_id, store_name, city, is_active, created_at
         FROM store_locations WHERE id=? LIMIT 1`, id).
		Scan(&s.ID, &s.MerchantID, &s.StoreName, &s.City, &s.IsActive, &s.CreatedAt)
	return s, err
}
