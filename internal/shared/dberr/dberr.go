package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsSerializationFailure reports whether err is a Postgres serialization
// conflict (SQLSTATE 40001). The whole transaction is safe to retry verbatim.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
