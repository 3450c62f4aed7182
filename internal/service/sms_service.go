package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mahiprime2001/Billing-system/internal/model"
)

// ErrNotBillOwner is returned when a bill notification is requested
// for a user the bill is not addressed to.  Handlers translate it
// into an HTTP 403 response.
var ErrNotBillOwner = errors.New("bill does not belong to this user")

// NotificationStore is the persistence surface dispatch needs.
// *repository.NotificationRepo implements it.
type NotificationStore interface {
	CreateSMSTx(ctx context.Context, tx *sql.Tx, s *model.SMSNotification) error
	CreateNotificationTx(ctx context.Context, tx *sql.Tx, n *model.Notification) error
}

// NotifyResult reports the records written for one bill notification.
type NotifyResult struct {
	SMSID          uint64
	NotificationID uint64
	Message        string
}

// SMSService dispatches bill notifications: it mints a temporary
// link, formats the message and writes the SMS audit row plus the
// in-app notification.  All writes run inside the caller's
// transaction, so a link is never issued without its SMS audit row.
// Actual gateway delivery is simulated; the SMS row is recorded as
// already sent.
type SMSService struct {
	links *LinkService
	store NotificationStore
	now   func() time.Time
}

// NewSMSService builds an SMSService on top of the link lifecycle
// service and a notification store.
func NewSMSService(links *LinkService, store NotificationStore) *SMSService {
	return &SMSService{
		links: links,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// NotifyBillTx sends (simulates) the SMS for a bill and records the
// paper trail: one sms_notifications row and one notifications row,
// both referencing the bill.  merchantName is the issuing merchant's
// display name, denormalized into the message.
func (s *SMSService) NotifyBillTx(ctx context.Context, tx *sql.Tx, bill *model.Bill, user model.User, merchantName string) (NotifyResult, error) {
	if bill.UserID != user.ID {
		return NotifyResult{}, ErrNotBillOwner
	}
	grant, err := s.links.IssueForBillTx(ctx, tx, bill.ID, user.ID)
	if err != nil {
		return NotifyResult{}, err
	}
	hours := int(s.links.ttl.Hours())
	message := fmt.Sprintf(
		"You have a new bill #%s from %s for Rs. %s. View your bill (valid for %d hours): %s",
		bill.BillNumber, merchantName, bill.TotalAmount.StringFixed(2), hours, grant.Link)

	entityType := "bill"
	entityID := bill.ID
	sentAt := s.now()
	sms := &model.SMSNotification{
		PhoneNumber:       user.PhoneNumber,
		Message:           message,
		TemporaryLink:     &grant.Link,
		LinkExpiry:        &grant.ExpiresAt,
		Status:            model.SMSStatusSent,
		RelatedEntityType: &entityType,
		RelatedEntityID:   &entityID,
		SentAt:            &sentAt,
	}
	if err := s.store.CreateSMSTx(ctx, tx, sms); err != nil {
		return NotifyResult{}, err
	}

	userID := user.ID
	inApp := fmt.Sprintf("You have received a new bill from %s for Rs. %s.",
		merchantName, bill.TotalAmount.StringFixed(2))
	notification := &model.Notification{
		UserID:            &userID,
		Type:              "bill",
		Title:             fmt.Sprintf("New Bill #%s", bill.BillNumber),
		Message:           inApp,
		RelatedEntityType: &entityType,
		RelatedEntityID:   &entityID,
	}
	if err := s.store.CreateNotificationTx(ctx, tx, notification); err != nil {
		return NotifyResult{}, err
	}

	return NotifyResult{
		SMSID:          sms.ID,
		NotificationID: notification.ID,
		Message:        message,
	}, nil
}
