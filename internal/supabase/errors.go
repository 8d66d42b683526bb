package supabase

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/terraincognita07/dailyglow/internal/services"
)

const (
	uniqueViolationCode      = "23505"
	challengeNotFoundMessage = "Challenge not found"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// wrapError tags unique violations with services.ErrConflict and keeps the
// server message for everything else.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, services.ErrConflict)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Message {
		case services.DailyLimitServerMessage:
			return fmt.Errorf("%s: %w", op, services.ErrDailyLimitReached)
		case challengeNotFoundMessage:
			return fmt.Errorf("%s: %w", op, services.ErrChallengeNotFound)
		}
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
