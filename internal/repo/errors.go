package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"hotel-backoffice/internal/domain"
)

// translate maps driver errors onto domain kinds. what names the entity for messages.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(what + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey) || isDupKey(err):
		return domain.Conflict(what + " already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated) || isFKViolation(err):
		return domain.NotFound("referenced record not found")
	}
	return domain.Internal(what+" storage failure", err)
}

// isDupKey covers drivers whose errors TranslateError does not recognise.
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func isFKViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint")
}
