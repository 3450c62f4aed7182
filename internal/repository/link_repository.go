package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mahiprime2001/Billing-system/internal/model"
)

// LinkRepo persists temporary links — the authoritative ledger for
// tokenized bill-view access.  The token column is unique and is the
// lookup key; the row, not the token's signature, decides validity.
type LinkRepo struct {
	db *sql.DB
}

// NewLinkRepo returns a new LinkRepo bound to the given database.
func NewLinkRepo(db *sql.DB) *LinkRepo { return &LinkRepo{db: db} }

// CreateTx inserts a fresh link record within an existing
// transaction, so issuance commits or rolls back together with the
// notification writes that triggered it.  The generated ID and
// created_at are populated on the record.
func (r *LinkRepo) CreateTx(ctx context.Context, tx *sql.Tx, l *model.TemporaryLink) error {
	const q = `INSERT INTO temporary_links
        (token, user_id, related_entity_type, related_entity_id, expires_at)
        VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		l.Token, l.UserID, l.RelatedEntityType, l.RelatedEntityID, l.ExpiresAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	const sel = `SELECT created_at FROM temporary_links WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, l.ID).Scan(&l.CreatedAt)
}

// FindByToken returns the ledger record for a token, or nil when no
// record exists.  Absence is an expected outcome on this path (any
// well-formed string can be presented), so it is not an error.
func (r *LinkRepo) FindByToken(ctx context.Context, token string) (*model.TemporaryLink, error) {
	const q = `SELECT id, token, user_id, related_entity_type, related_entity_id,
                      created_at, expires_at, is_accessed, first_accessed_at,
                      access_count, last_accessed_at, is_revoked, revoked_at
               FROM temporary_links WHERE token = ? LIMIT 1`
	var l model.TemporaryLink
	var firstAccessed, lastAccessed, revokedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, q, token).Scan(
		&l.ID, &l.Token, &l.UserID, &l.RelatedEntityType, &l.RelatedEntityID,
		&l.CreatedAt, &l.ExpiresAt, &l.IsAccessed, &firstAccessed,
		&l.AccessCount, &lastAccessed, &l.IsRevoked, &revokedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if firstAccessed.Valid {
		t := firstAccessed.Time
		l.FirstAccessedAt = &t
	}
	if lastAccessed.Valid {
		t := lastAccessed.Time
		l.LastAccessedAt = &t
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		l.RevokedAt = &t
	}
	return &l, nil
}

// RecordAccess registers one open of the link: access_count is
// incremented and last_accessed_at set on every call, while
// is_accessed and first_accessed_at are only written on the
// transition from unaccessed to accessed.  The single UPDATE keeps
// the first-access transition atomic under concurrent opens.
func (r *LinkRepo) RecordAccess(ctx context.Context, linkID uint64, now time.Time) error {
	const q = `UPDATE temporary_links
               SET access_count = access_count + 1,
                   last_accessed_at = ?,
                   first_accessed_at = IF(is_accessed, first_accessed_at, ?),
                   is_accessed = TRUE
               WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, now, now, linkID)
	return err
}

// Revoke permanently disables the link.  The record is retained for
// audit; there is no un-revoke operation.  Revoking an already
// revoked link is a no-op that preserves the original revoked_at.
func (r *LinkRepo) Revoke(ctx context.Context, linkID uint64, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE temporary_links SET is_revoked=TRUE, revoked_at=? WHERE id=? AND is_revoked=FALSE",
		now, linkID)
	return err
}
