package model

import (
	"testing"
	"time"
)

func TestTemporaryLink_IsValid(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		link TemporaryLink
		want bool
	}{
		{"live", TemporaryLink{ExpiresAt: now.Add(time.Hour)}, true},
		{"expired", TemporaryLink{ExpiresAt: now.Add(-time.Second)}, false},
		{"expiry instant", TemporaryLink{ExpiresAt: now}, false},
		{"revoked before expiry", TemporaryLink{ExpiresAt: now.Add(time.Hour), IsRevoked: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.link.IsValid(now); got != tc.want {
				t.Errorf("IsValid = %v, want %v", got, tc.want)
			}
		})
	}
}
