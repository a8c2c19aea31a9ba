package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyBill         = errors.New("no items in the bill")
	ErrCommitFailed      = errors.New("failed to generate bill")
)

// ValidationError reports malformed or missing input for a named field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d %s", e.Entity, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError carries the stock that was actually available so the
// operator can adjust the request.
type InsufficientStockError struct {
	MedicineID int64
	Name       string
	Requested  int64
	Available  int64
}

func (e *InsufficientStockError) Error() string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("medicine %d", e.MedicineID)
	}
	return fmt.Sprintf("%s for %s: requested %d, available %d", ErrInsufficientStock, name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// CommitFailedError means a commit was rolled back; Cause says why.
type CommitFailedError struct {
	Cause error
}

func (e *CommitFailedError) Error() string {
	if e.Cause == nil {
		return ErrCommitFailed.Error()
	}
	return fmt.Sprintf("%s: %v", ErrCommitFailed, e.Cause)
}

func (e *CommitFailedError) Is(target error) bool { return target == ErrCommitFailed }

func (e *CommitFailedError) Unwrap() error { return e.Cause }
