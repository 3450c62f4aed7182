package model

import "time"

// TemporaryLink is the authoritative record governing a tokenized
// bill-view link.  The token column is the lookup key; possession of
// the token grants temporary viewing rights for the referenced
// entity until expiry or revocation.  Validity is decided from this
// row alone — the token's own signed expiry claim is a secondary
// integrity check, never trusted on its own.
//
// Fields:
//  ID                – primary key identifier.
//  Token             – opaque signed token string (unique).
//  UserID            – user the link was issued to.
//  RelatedEntityType – referenced entity type (currently always 'bill').
//  RelatedEntityID   – referenced entity ID.
//  CreatedAt         – issuance timestamp.
//  ExpiresAt         – issuance time + TTL (48 hours).
//  IsAccessed        – whether the link has ever been opened.
//  FirstAccessedAt   – when the link was first opened.
//  AccessCount       – monotonic open counter.
//  LastAccessedAt    – when the link was last opened.
//  IsRevoked         – whether the link was explicitly revoked.
//  RevokedAt         – when the link was revoked.
type TemporaryLink struct {
	ID                uint64     // temporary_links.id
	Token             string     // temporary_links.token
	UserID            uint64     // temporary_links.user_id
	RelatedEntityType string     // temporary_links.related_entity_type
	RelatedEntityID   uint64     // temporary_links.related_entity_id
	CreatedAt         time.Time  // temporary_links.created_at
	ExpiresAt         time.Time  // temporary_links.expires_at
	IsAccessed        bool       // temporary_links.is_accessed
	FirstAccessedAt   *time.Time // temporary_links.first_accessed_at (nullable)
	AccessCount       uint32     // temporary_links.access_count
	LastAccessedAt    *time.Time // temporary_links.last_accessed_at (nullable)
	IsRevoked         bool       // temporary_links.is_revoked
	RevokedAt         *time.Time // temporary_links.revoked_at (nullable)
}

// IsValid reports whether the link still grants viewing rights at
// the given instant: not revoked and not past its ledger expiry.
func (l *TemporaryLink) IsValid(now time.Time) bool {
	return !l.IsRevoked && now.Before(l.ExpiresAt)
}
