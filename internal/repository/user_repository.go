package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mahiprime2001/Billing-system/internal/model"
	"github.com/mahiprime2001/Billing-system/internal/utils"
)

// UserRepo provides access to user accounts.  Bills and temporary
// links reference users by ID; the SMS dispatch reads the phone
// number from here.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, username, email, phone_number, password_hash,
       first_name, last_name, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var first, last sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PhoneNumber, &u.PasswordHash,
		&first, &last, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if first.Valid {
		v := first.String
		u.FirstName = &v
	}
	if last.Valid {
		v := last.String
		u.LastName = &v
	}
	return u, nil
}

// Create inserts a user with a bcrypt-hashed password and returns
// the new ID.  Unique-key collisions map to ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, username, email, phone, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, phone_number, password_hash) VALUES (?,?,?,?)",
		username, email, phone, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}
