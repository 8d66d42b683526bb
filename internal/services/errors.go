package services

import (
	"errors"
	"fmt"
	"strings"
)

// DailyLimitServerMessage is the text complete_challenge fails with once the
// user has hit the daily cap on the persistence side.
const DailyLimitServerMessage = "Daily challenge limit reached"

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrDailyLimitReached = errors.New("daily challenge limit reached")
	ErrConflict          = errors.New("record already exists")
	ErrPersistence       = errors.New("persistence failure")
	ErrChallengeNotFound = errors.New("challenge not found")
)

type ResponseTooShortError struct {
	MinLength int
	Length    int
}

func (err *ResponseTooShortError) Error() string {
	return fmt.Sprintf("response too short: %d characters, need at least %d", err.Length, err.MinLength)
}

func (err *ResponseTooShortError) Is(target error) bool {
	return target == ErrValidation
}

type PersistenceError struct {
	Op      string
	Message string
	Err     error
}

func (err *PersistenceError) Error() string {
	if err.Op == "" {
		return err.Message
	}
	return err.Op + ": " + err.Message
}

func (err *PersistenceError) Unwrap() error {
	return err.Err
}

func (err *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func newPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Message: err.Error(), Err: err}
}

// classifyRemoteError maps a store failure onto the caller-facing taxonomy.
// Conflicts pass through untouched so callers can adopt remote truth.
func classifyRemoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrDailyLimitReached) || errors.Is(err, ErrChallengeNotFound) {
		return err
	}
	if strings.Contains(err.Error(), DailyLimitServerMessage) {
		return ErrDailyLimitReached
	}
	return newPersistenceError(op, err)
}
