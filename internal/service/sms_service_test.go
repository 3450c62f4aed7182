package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mahiprime2001/Billing-system/internal/model"
)

// fakeStore collects the notification rows dispatch writes.
type fakeStore struct {
	sms           []*model.SMSNotification
	notifications []*model.Notification
}

func (f *fakeStore) CreateSMSTx(_ context.Context, _ *sql.Tx, s *model.SMSNotification) error {
	s.ID = uint64(len(f.sms) + 1)
	f.sms = append(f.sms, s)
	return nil
}

func (f *fakeStore) CreateNotificationTx(_ context.Context, _ *sql.Tx, n *model.Notification) error {
	n.ID = uint64(len(f.notifications) + 1)
	f.notifications = append(f.notifications, n)
	return nil
}

func testBill(billID, userID uint64, total string) *model.Bill {
	return &model.Bill{
		ID:          billID,
		BillNumber:  "BILL-20260829-0042",
		MerchantID:  3,
		UserID:      userID,
		BillDate:    time.Now().UTC(),
		TotalAmount: decimal.RequireFromString(total),
		Status:      model.BillStatusPending,
	}
}

func TestSMSService_NotifyBill(t *testing.T) {
	ledger := newFakeLedger()
	store := &fakeStore{}
	svc := NewSMSService(newTestLinkService(ledger), store)
	ctx := context.Background()

	bill := testBill(42, 7, "286.00")
	user := model.User{ID: 7, PhoneNumber: "+919876543210"}

	result, err := svc.NotifyBillTx(ctx, nil, bill, user, "Sri Amman Stores")
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	// Exactly one SMS record and one notification, both for bill 42.
	if len(store.sms) != 1 || len(store.notifications) != 1 {
		t.Fatalf("got %d sms / %d notifications, want 1/1", len(store.sms), len(store.notifications))
	}
	sms := store.sms[0]
	if sms.PhoneNumber != user.PhoneNumber {
		t.Errorf("sms phone = %q, want %q", sms.PhoneNumber, user.PhoneNumber)
	}
	if sms.Status != model.SMSStatusSent {
		t.Errorf("sms status = %q, want sent (delivery is simulated)", sms.Status)
	}
	if sms.RelatedEntityID == nil || *sms.RelatedEntityID != 42 {
		t.Error("sms does not reference bill 42")
	}
	if sms.SentAt == nil || sms.TemporaryLink == nil || sms.LinkExpiry == nil {
		t.Error("sms missing sent_at or link copy")
	}

	n := store.notifications[0]
	if n.UserID == nil || *n.UserID != 7 {
		t.Error("notification not addressed to user 7")
	}
	if n.Type != "bill" {
		t.Errorf("notification type = %q, want bill", n.Type)
	}
	if n.RelatedEntityID == nil || *n.RelatedEntityID != 42 {
		t.Error("notification does not reference bill 42")
	}

	// The message embeds bill number, merchant, total and link.
	for _, want := range []string{"BILL-20260829-0042", "Sri Amman Stores", "Rs. 286.00", "valid for 48 hours", *sms.TemporaryLink} {
		if !strings.Contains(result.Message, want) {
			t.Errorf("message %q missing %q", result.Message, want)
		}
	}

	// A matching ledger record was created.
	if len(ledger.links) != 1 {
		t.Fatalf("got %d ledger rows, want 1", len(ledger.links))
	}
	for _, l := range ledger.links {
		if l.RelatedEntityID != 42 || l.UserID != 7 || l.RelatedEntityType != "bill" {
			t.Errorf("ledger row = %+v, want bill 42 / user 7", l)
		}
	}

	if result.SMSID != sms.ID || result.NotificationID != n.ID {
		t.Error("result IDs do not match stored rows")
	}
}

func TestSMSService_NotifyBill_WrongUser(t *testing.T) {
	ledger := newFakeLedger()
	store := &fakeStore{}
	svc := NewSMSService(newTestLinkService(ledger), store)

	bill := testBill(42, 7, "100.00")
	stranger := model.User{ID: 8, PhoneNumber: "+911111111111"}

	_, err := svc.NotifyBillTx(context.Background(), nil, bill, stranger, "Sri Amman Stores")
	if err != ErrNotBillOwner {
		t.Fatalf("err = %v, want ErrNotBillOwner", err)
	}
	// Nothing may be written, link included.
	if len(store.sms) != 0 || len(store.notifications) != 0 || len(ledger.links) != 0 {
		t.Error("ownership failure must not write any rows")
	}
}
