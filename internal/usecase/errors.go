package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrStoreUnavailable      = errors.New("store unavailable")
	ErrPartialWrite          = errors.New("partial write")
	ErrDuplicatePlayerName   = errors.New("duplicate player name")
)

// storeError marks a failed store call. The cause stays reachable through errors.Is/As.
func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// PartialWriteError reports a signup that created the participant but failed a later
// write. Nothing is rolled back; ParticipantID names the row an admin has to delete.
type PartialWriteError struct {
	ParticipantID string
	Step          string
	Err           error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s: participant %s created but %s failed: %v", ErrPartialWrite, e.ParticipantID, e.Step, e.Err)
}

func (e *PartialWriteError) Unwrap() []error {
	return []error{ErrPartialWrite, e.Err}
}
