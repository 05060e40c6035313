// File: internal/usecase/retry.go
package usecase

import (
	"errors"

	"github.com/jackc/pgconn"
)

// transientError lets non-Postgres storage implementations (and tests)
// flag an error as retryable.
type transientError interface {
	Transient() bool
}

// Postgres SQLSTATE codes worth one more attempt: serialization failure,
// deadlock detected, lock_not_available.
var transientPgCodes = map[string]struct{}{
	"40001": {},
	"40P01": {},
	"55P03": {},
}

// isTransient reports whether err is storage-level contention that a
// fresh transaction may resolve. Business rejections never match.
func isTransient(err error) bool {
	var te transientError
	if errors.As(err, &te) {
		return te.Transient()
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := transientPgCodes[pgErr.Code]
		return ok
	}
	return false
}
