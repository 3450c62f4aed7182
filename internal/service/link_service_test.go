package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/mahiprime2001/Billing-system/internal/model"
	"github.com/mahiprime2001/Billing-system/internal/utils"
)

const testSecret = "test-secret"

// fakeLedger is an in-memory LinkLedger.
type fakeLedger struct {
	nextID uint64
	links  map[string]*model.TemporaryLink
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{links: make(map[string]*model.TemporaryLink)}
}

func (f *fakeLedger) CreateTx(_ context.Context, _ *sql.Tx, l *model.TemporaryLink) error {
	f.nextID++
	l.ID = f.nextID
	l.CreatedAt = time.Now().UTC()
	cp := *l
	f.links[l.Token] = &cp
	return nil
}

func (f *fakeLedger) FindByToken(_ context.Context, token string) (*model.TemporaryLink, error) {
	l, ok := f.links[token]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLedger) byID(id uint64) *model.TemporaryLink {
	for _, l := range f.links {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (f *fakeLedger) RecordAccess(_ context.Context, linkID uint64, now time.Time) error {
	l := f.byID(linkID)
	l.AccessCount++
	l.LastAccessedAt = &now
	if !l.IsAccessed {
		l.IsAccessed = true
		l.FirstAccessedAt = &now
	}
	return nil
}

func (f *fakeLedger) Revoke(_ context.Context, linkID uint64, now time.Time) error {
	l := f.byID(linkID)
	if !l.IsRevoked {
		l.IsRevoked = true
		l.RevokedAt = &now
	}
	return nil
}

func newTestLinkService(ledger *fakeLedger) *LinkService {
	return NewLinkService(testSecret, "http://localhost:8080", 48*time.Hour, ledger)
}

func TestLinkService_IssueAndValidate(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestLinkService(ledger)
	ctx := context.Background()

	grant, err := svc.IssueForBillTx(ctx, nil, 42, 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.HasPrefix(grant.Link, "http://localhost:8080/bills/view/") {
		t.Errorf("link = %q, want /bills/view/ URL", grant.Link)
	}
	if !strings.HasSuffix(grant.Link, grant.Token) {
		t.Errorf("link does not embed the token")
	}

	// Validates repeatedly until expiry; each access is recorded.
	for i := 1; i <= 2; i++ {
		res, err := svc.Validate(ctx, grant.Token)
		if err != nil {
			t.Fatalf("validate %d: %v", i, err)
		}
		if !res.Valid {
			t.Fatalf("validate %d: reason=%s, want valid", i, res.Reason)
		}
		if res.BillID != 42 || res.UserID != 7 {
			t.Errorf("validate %d: bill=%d user=%d, want 42/7", i, res.BillID, res.UserID)
		}
	}

	stored := ledger.links[grant.Token]
	if stored.AccessCount != 2 {
		t.Errorf("access_count = %d, want 2", stored.AccessCount)
	}
	if !stored.IsAccessed || stored.FirstAccessedAt == nil {
		t.Error("is_accessed/first_accessed_at not set on first access")
	}
	if stored.LastAccessedAt == nil {
		t.Error("last_accessed_at not set")
	}
}

func TestLinkService_FirstAccessSetOnce(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestLinkService(ledger)
	ctx := context.Background()

	grant, err := svc.IssueForBillTx(ctx, nil, 1, 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Validate(ctx, grant.Token); err != nil {
		t.Fatalf("validate: %v", err)
	}
	first := *ledger.links[grant.Token].FirstAccessedAt

	// Later accesses move last_accessed_at but not first_accessed_at.
	svc.now = func() time.Time { return first.Add(time.Hour) }
	if _, err := svc.Validate(ctx, grant.Token); err != nil {
		t.Fatalf("validate: %v", err)
	}
	stored := ledger.links[grant.Token]
	if !stored.FirstAccessedAt.Equal(first) {
		t.Errorf("first_accessed_at moved from %v to %v", first, stored.FirstAccessedAt)
	}
	if !stored.LastAccessedAt.After(first) {
		t.Errorf("last_accessed_at = %v, want after %v", stored.LastAccessedAt, first)
	}
}

func TestLinkService_Expired(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestLinkService(ledger)
	ctx := context.Background()

	issued := time.Now().UTC()
	grant, err := svc.IssueForBillTx(ctx, nil, 42, 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// 48 hours and one second after issuance.
	svc.now = func() time.Time { return issued.Add(48*time.Hour + time.Second) }
	res, err := svc.Validate(ctx, grant.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Valid || res.Reason != ReasonExpired {
		t.Errorf("reason = %q, want expired", res.Reason)
	}
	if res.RedirectTo != RedirectExpiredLink {
		t.Errorf("redirect = %q, want %q", res.RedirectTo, RedirectExpiredLink)
	}
	if ledger.links[grant.Token].AccessCount != 0 {
		t.Error("expired validation must not record an access")
	}
}

func TestLinkService_Revoked(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestLinkService(ledger)
	ctx := context.Background()

	grant, err := svc.IssueForBillTx(ctx, nil, 42, 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(ctx, grant.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	// Revocation beats natural expiry.
	res, err := svc.Validate(ctx, grant.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Valid || res.Reason != ReasonRevoked {
		t.Errorf("reason = %q, want revoked", res.Reason)
	}
	if res.RedirectTo != RedirectExpiredLink {
		t.Errorf("redirect = %q, want %q", res.RedirectTo, RedirectExpiredLink)
	}
}

func TestLinkService_RevokeUnknownToken(t *testing.T) {
	svc := newTestLinkService(newFakeLedger())
	if err := svc.Revoke(context.Background(), "no-such-token"); err != ErrLinkNotFound {
		t.Errorf("err = %v, want ErrLinkNotFound", err)
	}
}

func TestLinkService_UnledgeredToken(t *testing.T) {
	svc := newTestLinkService(newFakeLedger())
	ctx := context.Background()

	// Well signed but never issued through the service: no ledger row,
	// so it must be rejected as invalid without consulting the codec.
	tok, err := utils.NewLinkToken(testSecret, 42, 7, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	res, err := svc.Validate(ctx, tok.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Valid || res.Reason != ReasonInvalid {
		t.Errorf("reason = %q, want invalid", res.Reason)
	}
	if res.RedirectTo != RedirectInvalidLink {
		t.Errorf("redirect = %q, want %q", res.RedirectTo, RedirectInvalidLink)
	}
}

func TestLinkService_LedgerRowWithBadToken(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestLinkService(ledger)
	ctx := context.Background()

	// A ledger row whose token does not verify: the ledger alone is
	// never trusted.
	bad := &model.TemporaryLink{
		Token:             "not-a-jwt",
		UserID:            7,
		RelatedEntityType: "bill",
		RelatedEntityID:   42,
		ExpiresAt:         time.Now().UTC().Add(time.Hour),
	}
	if err := ledger.CreateTx(ctx, nil, bad); err != nil {
		t.Fatalf("seed: %v", err)
	}
	res, err := svc.Validate(ctx, "not-a-jwt")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Valid || res.Reason != ReasonInvalid {
		t.Errorf("reason = %q, want invalid", res.Reason)
	}
}

func TestLinkService_ClaimMismatch(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestLinkService(ledger)
	ctx := context.Background()

	// Token signed for bill 42 but the ledger row points at bill 99.
	tok, err := utils.NewLinkToken(testSecret, 42, 7, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	row := &model.TemporaryLink{
		Token:             tok.Token,
		UserID:            7,
		RelatedEntityType: "bill",
		RelatedEntityID:   99,
		ExpiresAt:         tok.ExpiresAt,
	}
	if err := ledger.CreateTx(ctx, nil, row); err != nil {
		t.Fatalf("seed: %v", err)
	}
	res, err := svc.Validate(ctx, tok.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Valid || res.Reason != ReasonInvalid {
		t.Errorf("reason = %q, want invalid", res.Reason)
	}
}

func TestLinkService_CodecExpiryBeatsLiveLedger(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestLinkService(ledger)
	ctx := context.Background()

	// Ledger says live, the embedded exp claim has passed: both checks
	// must pass, so the outcome is expired.
	tok, err := utils.NewLinkToken(testSecret, 42, 7, -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	row := &model.TemporaryLink{
		Token:             tok.Token,
		UserID:            7,
		RelatedEntityType: "bill",
		RelatedEntityID:   42,
		ExpiresAt:         time.Now().UTC().Add(time.Hour),
	}
	if err := ledger.CreateTx(ctx, nil, row); err != nil {
		t.Fatalf("seed: %v", err)
	}
	res, err := svc.Validate(ctx, tok.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Valid || res.Reason != ReasonExpired {
		t.Errorf("reason = %q, want expired", res.Reason)
	}
}
