package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrSuperAdminFloor is returned when a mutation would leave the system
// without a single active super admin. The caller maps it to the
// operation-specific denial message.
var ErrSuperAdminFloor = errors.New("at least one active super admin must remain")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
// When constraint is non-empty, the violated constraint name must match.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// IsForeignKeyViolation reports whether err is a foreign-key violation.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgForeignKeyViolation
}
