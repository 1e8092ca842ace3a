package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Shape/contract errors. Fatal: the engine produces no partial result.
	ErrBadDimensionality = errors.New("measurement array dimensionality must be 4, 5, or 6")
	ErrShapeMismatch     = errors.New("array shape inconsistent with design descriptor")
	ErrTooFewSubjects    = errors.New("at least 2 subjects required")
	ErrTooFewLevels      = errors.New("every factor needs at least 2 levels")
	ErrBadPermCount      = errors.New("permutation count must be >= 1")
	ErrBadEffect         = errors.New("effect references factors outside the design")
	ErrIncompleteData    = errors.New("missing cell, every subject needs every condition")

	// Persistence errors
	ErrNotFound       = errors.New("resource not found")
	ErrResultNotFound = fmt.Errorf("%w: permutation test result", ErrNotFound)

	// Determinism errors
	ErrSeedMismatch = errors.New("seed mismatch")
)

// Error constructors with context
func NewDimensionalityError(ndim int) error {
	return fmt.Errorf("%w: got %d dimensions", ErrBadDimensionality, ndim)
}

func NewShapeMismatchError(axis, want, got int) error {
	return fmt.Errorf("%w: factor axis %d has %d levels, descriptor declares %d", ErrShapeMismatch, axis, got, want)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsContractError(err error) bool {
	return errors.Is(err, ErrBadDimensionality) ||
		errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrTooFewSubjects) ||
		errors.Is(err, ErrTooFewLevels) ||
		errors.Is(err, ErrBadPermCount) ||
		errors.Is(err, ErrBadEffect) ||
		errors.Is(err, ErrIncompleteData)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
