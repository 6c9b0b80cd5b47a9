// Package pgerr classifies PostgreSQL errors returned through GORM's pgx driver.
package pgerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories react to.
const (
	LockNotAvailable = "55P03"
	UniqueViolation  = "23505"
	QueryCanceled    = "57014"
)

// Code returns the SQLSTATE of err, or "" when err does not come from the server.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsLockNotAvailable reports whether err was raised because lock_timeout expired.
func IsLockNotAvailable(err error) bool {
	return Code(err) == LockNotAvailable
}

func IsUniqueViolation(err error) bool {
	return Code(err) == UniqueViolation
}
