package postgres

import (
	"errors"

	"github.com/jackc/pgconn"
)

// isUniqueViolation reports SQLSTATE 23505 (duplicate key).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
