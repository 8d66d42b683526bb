package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/dailyglow/internal/services"
	"gorm.io/gorm"
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed") || strings.Contains(message, "constraint failed: PRIMARY KEY")
}

// wrapWriteError tags uniqueness violations with services.ErrConflict.
func wrapWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, services.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func insertOutcome(op string, err error) (services.InsertOutcome, error) {
	if err == nil {
		return services.Inserted, nil
	}
	if isUniqueViolation(err) {
		return services.AlreadyExists, nil
	}
	return services.Inserted, fmt.Errorf("%s: %w", op, err)
}
