// Package repository implements MySQL persistence for bills,
// payments, temporary links, notifications and accounts.  This file
// defines sentinel errors shared across repositories so handlers can
// distinguish failure scenarios without string matching.
package repository

import "errors"

// ErrConflict is returned when an insert cannot be performed because
// of conflicting state, such as a unique key collision on
// bills.bill_number. Callers may retry with fresh input where that
// makes sense.
var ErrConflict = errors.New("conflict")

// ErrUserExists is returned when a registration collides with an
// existing username, email or phone number.
var ErrUserExists = errors.New("user already exists")
