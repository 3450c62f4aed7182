package repository

import (
	"context"
	"database/sql"

	"github.com/mahiprime2001/Billing-system/internal/model"
)

// NotificationRepo persists SMS audit rows and in-app notifications.
// Both inserts run inside the dispatch transaction so a bill
// notification either fully materializes or not at all.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// CreateSMSTx inserts an SMS notification record and populates the
// generated ID.  Status and sent_at are written as given; delivery
// here is simulated, so dispatch records the row as already sent.
func (r *NotificationRepo) CreateSMSTx(ctx context.Context, tx *sql.Tx, s *model.SMSNotification) error {
	const q = `INSERT INTO sms_notifications
        (phone_number, message, temporary_link, link_expiry, status,
         related_entity_type, related_entity_id, sent_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		s.PhoneNumber, s.Message, s.TemporaryLink, s.LinkExpiry, s.Status,
		s.RelatedEntityType, s.RelatedEntityID, s.SentAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// CreateNotificationTx inserts an in-app notification record and
// populates the generated ID.
func (r *NotificationRepo) CreateNotificationTx(ctx context.Context, tx *sql.Tx, n *model.Notification) error {
	const q = `INSERT INTO notifications
        (user_id, merchant_id, type, title, message, related_entity_type, related_entity_id)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		n.UserID, n.MerchantID, n.Type, n.Title, n.Message,
		n.RelatedEntityType, n.RelatedEntityID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}
