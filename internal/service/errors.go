package service

import (
	"errors"
	"fmt"

	"github.com/jask/fintree/internal/database/repository"
	"github.com/jask/fintree/internal/hierarchy"
)

var (
	// ErrNotFound is returned for ids that do not exist for the user.
	ErrNotFound = repository.ErrNotFound
	// ErrCycle rejects a parent that is the entity itself or one of its
	// descendants. It matches hierarchy.ErrProhibited as well.
	ErrCycle = fmt.Errorf("parent would create a cycle: %w", hierarchy.ErrProhibited)
	// ErrInvalid wraps input validation failures.
	ErrInvalid = errors.New("invalid input")
	// ErrDetailSumMismatch is returned when detail rows do not add up to the
	// transaction amount.
	ErrDetailSumMismatch = errors.New("detail amounts do not sum to the transaction amount")
	// ErrUnknownKind is returned for an unrecognised hierarchy kind.
	ErrUnknownKind = errors.New("unknown hierarchy kind")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
