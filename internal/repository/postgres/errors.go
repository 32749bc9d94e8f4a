package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation    = "23505"
	pqInvalidTextRepr    = "22P02"
	pqForeignKeyViolated = "23503"
)

func pqCode(err error) pq.ErrorCode {
	var perr *pq.Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ""
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool { return pqCode(err) == pqUniqueViolation }

// isMalformedID reports whether err comes from a value that is not a valid uuid.
// Such ids can never match a row, so callers treat them as not found.
func isMalformedID(err error) bool { return pqCode(err) == pqInvalidTextRepr }

func isForeignKeyViolation(err error) bool { return pqCode(err) == pqForeignKeyViolated }
