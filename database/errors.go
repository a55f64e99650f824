package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/dyne/errors"
)

// IsRetryableError reports errors that may clear on retry: lost
// connections and SQLite lock contention.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, p := range []string{
		"database is locked",
		"database table is locked",
		"busy",
		"connection reset",
		"broken pipe",
		"driver: bad connection",
	} {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// FromDatabase converts a GORM error into an AppError for the named operation.
func FromDatabase(err error, op string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(op, "").WithCause(err)
	}
	appErr := apperrors.Storage(op, "database", err)
	appErr.Retryable = IsRetryableError(err)
	return appErr
}
