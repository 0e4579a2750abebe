package db

import (
	"strings"

	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
)

const (
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
)

// IsUniqueViolation reports whether err is a unique constraint violation. When
// constraintName is provided, the violation must reference that constraint.
// SQLite errors are matched by message so the helper also works in tests.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	if pg := pkgerrors.Dump(err).PG; pg != nil {
		return pg.SQLState == sqlStateUniqueViolation &&
			(constraintName == "" || pg.Constraint == constraintName)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}

// IsTransient reports whether err is a concurrency failure that a client may
// resolve by retrying the whole transaction.
func IsTransient(err error) bool {
	switch pkgerrors.SQLState(err) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return true
	}
	return err != nil && strings.Contains(err.Error(), "database is locked")
}
