package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Errors returned by VerifyLinkToken.  Handlers map these onto the
// normalized reason codes; the distinction between a structural
// failure and a bad signature is never exposed to callers.
var (
	// ErrTokenExpired means the token's embedded expiry claim has passed.
	ErrTokenExpired = errors.New("link token expired")
	// ErrTokenInvalid means the token failed signature or structural checks.
	ErrTokenInvalid = errors.New("link token invalid")
)

// LinkToken is a signed, time-limited token binding a bill to the
// user it was issued to.  The serialized JWT doubles as the ledger
// lookup key: the jti claim carries 32 bytes of crypto/rand entropy,
// so token strings are unique independent of the signature.
type LinkToken struct {
	Token     string    // serialized JWT, URL-safe by construction
	ExpiresAt time.Time // UTC expiration embedded in the exp claim
}

// LinkClaims is the decoded payload of a verified link token.
type LinkClaims struct {
	BillID uint64 // referenced bill
	UserID uint64 // recipient the link was issued to
}

// NewLinkToken builds and signs an HS256 JWT granting temporary view
// access to a bill.  The embedded expiry is defense in depth only;
// the temporary-link ledger is the authority on validity.
func NewLinkToken(secret string, billID, userID uint64, ttl time.Duration) (LinkToken, error) {
	jti, err := randomHex(32)
	if err != nil {
		return LinkToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"bill_id": billID,
		"sub":     userID,
		"jti":     jti,
		"exp":     exp.Unix(),
		"iat":     now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return LinkToken{}, err
	}
	return LinkToken{Token: signed, ExpiresAt: exp}, nil
}

// VerifyLinkToken parses and validates a link token.  The input is
// attacker-controlled: any parse, structure or signature problem is
// reported as ErrTokenInvalid, and only a good signature with a past
// exp claim is reported as ErrTokenExpired.  No store is consulted.
func VerifyLinkToken(secret, raw string) (LinkClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return LinkClaims{}, ErrTokenExpired
		}
		return LinkClaims{}, ErrTokenInvalid
	}
	if !tok.Valid {
		return LinkClaims{}, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return LinkClaims{}, ErrTokenInvalid
	}
	billID, ok := numClaim(claims, "bill_id")
	if !ok {
		return LinkClaims{}, ErrTokenInvalid
	}
	userID, ok := numClaim(claims, "sub")
	if !ok {
		return LinkClaims{}, ErrTokenInvalid
	}
	return LinkClaims{BillID: billID, UserID: userID}, nil
}

// numClaim reads a numeric claim.  JSON numbers decode as float64.
func numClaim(claims jwt.MapClaims, key string) (uint64, bool) {
	v, ok := claims[key].(float64)
	if !ok || v < 0 {
		return 0, false
	}
	return uint64(v), true
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
