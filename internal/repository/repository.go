// Package repository holds the raw-SQL persistence layer. Each repository is
// an interface backed by a *sql.DB implementation; misses surface as
// sql.ErrNoRows so services can classify them.
package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicateEmail is returned when a unique email constraint is violated.
var ErrDuplicateEmail = errors.New("email already registered")

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}
