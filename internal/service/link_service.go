package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mahiprime2001/Billing-system/internal/model"
	"github.com/mahiprime2001/Billing-system/internal/utils"
)

// Validation outcome reason codes and the fallback pages they map
// to.  Internal distinctions (bad signature vs. malformed structure)
// are deliberately collapsed into these four values.
const (
	ReasonInvalid = "invalid"
	ReasonRevoked = "revoked"
	ReasonExpired = "expired"

	RedirectExpiredLink = "/expired-link"
	RedirectInvalidLink = "/invalid-link"
)

// ErrLinkNotFound is returned by Revoke when no ledger record
// matches the presented token.
var ErrLinkNotFound = errors.New("temporary link not found")

// LinkLedger is the persistence surface the lifecycle service needs
// from the temporary-link ledger.  *repository.LinkRepo implements
// it; tests substitute an in-memory fake.
type LinkLedger interface {
	CreateTx(ctx context.Context, tx *sql.Tx, l *model.TemporaryLink) error
	FindByToken(ctx context.Context, token string) (*model.TemporaryLink, error)
	RecordAccess(ctx context.Context, linkID uint64, now time.Time) error
	Revoke(ctx context.Context, linkID uint64, now time.Time) error
}

// LinkGrant is the outcome of issuing a temporary link.
type LinkGrant struct {
	Link      string    // fully qualified URL embedding the token
	Token     string    // the raw token
	ExpiresAt time.Time // ledger expiry (issuance time + TTL)
}

// ValidationResult is the tagged outcome of validating a presented
// token.  When Valid is false, Reason holds one of the reason codes
// above and RedirectTo the fallback page for it.
type ValidationResult struct {
	Valid      bool
	Reason     string
	RedirectTo string
	BillID     uint64
	UserID     uint64
}

// LinkService is the single place that issues tokenized bill-view
// links and the only component allowed to decide whether a bearer
// may view a bill through one.  Validity is decided ledger-first:
// the signed token is a secondary integrity check and is never
// trusted without a backing ledger row.
type LinkService struct {
	secret  string
	baseURL string
	ttl     time.Duration
	ledger  LinkLedger
	now     func() time.Time
}

// NewLinkService builds a LinkService.  ttl is the link lifetime
// (48 hours for bill links).
func NewLinkService(secret, baseURL string, ttl time.Duration, ledger LinkLedger) *LinkService {
	return &LinkService{
		secret:  secret,
		baseURL: baseURL,
		ttl:     ttl,
		ledger:  ledger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// IssueForBillTx mints a signed token bound to (billID, userID),
// persists the matching ledger record inside the caller's
// transaction and returns the shareable URL.  Ledger expiry and the
// token's embedded exp claim are set to the same instant.
func (s *LinkService) IssueForBillTx(ctx context.Context, tx *sql.Tx, billID, userID uint64) (LinkGrant, error) {
	tok, err := utils.NewLinkToken(s.secret, billID, userID, s.ttl)
	if err != nil {
		return LinkGrant{}, err
	}
	link := &model.TemporaryLink{
		Token:             tok.Token,
		UserID:            userID,
		RelatedEntityType: "bill",
		RelatedEntityID:   billID,
		ExpiresAt:         tok.ExpiresAt,
	}
	if err := s.ledger.CreateTx(ctx, tx, link); err != nil {
		return LinkGrant{}, err
	}
	return LinkGrant{
		Link:      s.baseURL + "/bills/view/" + tok.Token,
		Token:     tok.Token,
		ExpiresAt: tok.ExpiresAt,
	}, nil
}

// Validate decides whether a presented token currently grants view
// access.  Check order matters: the ledger is consulted first so a
// crafted-but-well-signed token with no ledger backing is rejected
// without revealing whether its signature verified.  A valid outcome
// records the access on the ledger row as a side effect.
func (s *LinkService) Validate(ctx context.Context, token string) (ValidationResult, error) {
	link, err := s.ledger.FindByToken(ctx, token)
	if err != nil {
		return ValidationResult{}, err
	}
	if link == nil {
		return ValidationResult{Reason: ReasonInvalid, RedirectTo: RedirectInvalidLink}, nil
	}
	now := s.now()
	if !link.IsValid(now) {
		if link.IsRevoked {
			return ValidationResult{Reason: ReasonRevoked, RedirectTo: RedirectExpiredLink}, nil
		}
		return ValidationResult{Reason: ReasonExpired, RedirectTo: RedirectExpiredLink}, nil
	}
	// Ledger says live; the signature must independently agree.
	claims, err := utils.VerifyLinkToken(s.secret, token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return ValidationResult{Reason: ReasonExpired, RedirectTo: RedirectExpiredLink}, nil
		}
		return ValidationResult{Reason: ReasonInvalid, RedirectTo: RedirectInvalidLink}, nil
	}
	// Cross-check the signed binding against the ledger row.  A
	// mismatch means the token was issued for something else, so it
	// is treated as a non-match rather than trusting the ledger alone.
	if claims.BillID != link.RelatedEntityID || claims.UserID != link.UserID {
		return ValidationResult{Reason: ReasonInvalid, RedirectTo: RedirectInvalidLink}, nil
	}
	if err := s.ledger.RecordAccess(ctx, link.ID, now); err != nil {
		return ValidationResult{}, err
	}
	return ValidationResult{Valid: true, BillID: link.RelatedEntityID, UserID: link.UserID}, nil
}

// Revoke permanently disables the link behind a token.  It reports
// ErrLinkNotFound when no ledger record exists; revocation of an
// already revoked link succeeds silently.
func (s *LinkService) Revoke(ctx context.Context, token string) error {
	link, err := s.ledger.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	if link == nil {
		return ErrLinkNotFound
	}
	return s.ledger.Revoke(ctx, link.ID, s.now())
}
