package utils

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLinkToken_RoundTrip(t *testing.T) {
	tok, err := NewLinkToken("secret", 42, 7, 48*time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := VerifyLinkToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.BillID != 42 || claims.UserID != 7 {
		t.Errorf("claims = %+v, want bill 42 / user 7", claims)
	}
}

func TestLinkToken_Unique(t *testing.T) {
	// Two tokens for the same binding in the same instant must differ:
	// the jti entropy makes the serialized string the ledger key.
	a, err := NewLinkToken("secret", 1, 1, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	b, err := NewLinkToken("secret", 1, 1, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if a.Token == b.Token {
		t.Error("two issued tokens are identical")
	}
}

func TestLinkToken_URLSafe(t *testing.T) {
	tok, err := NewLinkToken("secret", 42, 7, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if strings.ContainsAny(tok.Token, " +/=?#&%") {
		t.Errorf("token %q contains URL-unsafe characters", tok.Token)
	}
}

func TestVerifyLinkToken_Expired(t *testing.T) {
	tok, err := NewLinkToken("secret", 42, 7, -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := VerifyLinkToken("secret", tok.Token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyLinkToken_Invalid(t *testing.T) {
	tok, err := NewLinkToken("secret", 42, 7, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	cases := []struct {
		name string
		raw  string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"tampered payload", tamper(tok.Token)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := VerifyLinkToken("secret", tc.raw); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("err = %v, want ErrTokenInvalid", err)
			}
		})
	}

	t.Run("wrong secret", func(t *testing.T) {
		if _, err := VerifyLinkToken("other-secret", tok.Token); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("err = %v, want ErrTokenInvalid", err)
		}
	})
}

// tamper flips a character in the payload segment of a JWT.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)
	return strings.Join(parts, ".")
}
