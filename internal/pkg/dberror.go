package pkg

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
)

// MapDBError converts GORM errors to domain errors. Record-not-found becomes
// NotFound and unique violations become AlreadyExists carrying conflictMsg.
// Anything else is Internal with the driver error kept as the cause.
func MapDBError(err error, notFoundMsg, conflictMsg string) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewAppError(domain.CodeNotFound, notFoundMsg, err)
	}
	if IsDuplicateKey(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, conflictMsg, err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// IsDuplicateKey reports a unique constraint violation. Not every dialector
// translates driver errors to gorm.ErrDuplicatedKey (the pure-Go SQLite
// driver does not), so the message is checked as well.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
