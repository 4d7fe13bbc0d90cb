package service

import (
	"errors"
	"fmt"

	"github.com/nurpe/aterrozero-consultancy/internal/repository"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoCurrentClient = errors.New("no client selected")
	ErrConflict        = errors.New("conflict")
)

// mapRepoError translates data access errors into service errors, keeping
// the original message.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrInvalidRecord):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
