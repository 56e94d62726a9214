package repositories

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/restaurantbooking/backend/internal/apperrors"
)

// MySQL server error numbers
const (
	errDuplicateEntry      = 1062
	errNoReferencedRow     = 1452
	errNoReferencedRowPrev = 1216
)

// mapConstraintError translates constraint violations into application error kinds.
// It returns nil when err is not a constraint violation.
func mapConstraintError(err error) error {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return nil
	}

	switch myErr.Number {
	case errDuplicateEntry:
		return apperrors.Validation("Duplicate field value entered")
	case errNoReferencedRow, errNoReferencedRowPrev:
		return apperrors.NotFound("Referenced resource does not exist")
	default:
		return nil
	}
}
