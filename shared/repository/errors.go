package repository

import (
	"errors"
	"hotel/shared/constant"

	"github.com/lib/pq"
)

// IsUniqueViolation reports whether err carries a postgres unique_violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, constant.PqErrorCodeUniqueViolation)
}

// IsExclusionViolation reports whether err carries a postgres
// exclusion_violation, raised by the booking overlap constraint.
func IsExclusionViolation(err error) bool {
	return hasCode(err, constant.PqErrorCodeExclusionViolation)
}

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return string(pqErr.Code) == code
}
