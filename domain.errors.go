package main

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every failure surfaced by the services wraps exactly one of them.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrUnavailable        = errors.New("unavailable")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrStore              = errors.New("store error")
)

// ErrorKind is the stable name of an error kind exposed to callers.
type ErrorKind string

const (
	KindValidation         ErrorKind = "ValidationError"
	KindNotFound           ErrorKind = "NotFound"
	KindConflict           ErrorKind = "Conflict"
	KindInvalidTransition  ErrorKind = "InvalidTransition"
	KindUnavailable        ErrorKind = "Unavailable"
	KindInvariantViolation ErrorKind = "InvariantViolation"
	KindStore              ErrorKind = "StoreError"
	KindInternal           ErrorKind = "InternalError"
)

// DomainError is a business rule failure with a client facing message.
type DomainError struct {
	kind    error
	message string
}

func (e *DomainError) Error() string {
	return e.message
}

func (e *DomainError) Unwrap() error {
	return e.kind
}

func newDomainError(kind error, format string, args ...interface{}) error {
	return &DomainError{kind: kind, message: fmt.Sprintf(format, args...)}
}

var (
	ErrBookNotFound       = newDomainError(ErrNotFound, "book not found")
	ErrLoanNotFound       = newDomainError(ErrNotFound, "loan not found")
	ErrUserNotFound       = newDomainError(ErrNotFound, "user not found")
	ErrBookmarkNotFound   = newDomainError(ErrNotFound, "bookmark not found")
	ErrRatingNotFound     = newDomainError(ErrNotFound, "rating not found")
	ErrBookUnavailable    = newDomainError(ErrUnavailable, "book is not available for loan")
	ErrBookNoLongerFree   = newDomainError(ErrUnavailable, "book is no longer available")
	ErrLoanNotPending     = newDomainError(ErrInvalidTransition, "loan is not pending approval")
	ErrLoanNotApproved    = newDomainError(ErrInvalidTransition, "book is not currently loaned")
	ErrActiveLoanExists   = newDomainError(ErrConflict, "user already has an active loan request for this book")
	ErrBookHasActiveLoans = newDomainError(ErrConflict, "book has pending or approved loans")
	ErrBookmarkExists     = newDomainError(ErrConflict, "bookmark for this book already exists")
	ErrRatingExists       = newDomainError(ErrConflict, "user has already rated this book")
	ErrStockBelowLoaned   = newDomainError(ErrInvariantViolation, "stock cannot be reduced below the number of copies currently on loan")
	ErrInvalidRating      = newDomainError(ErrValidation, "rating must be between 1 and 5")
)

// storeError keeps domain errors untouched and tags anything else as an
// opaque adapter failure.
func storeError(op string, err error) error {
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

// KindOf returns the stable kind of an error.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrInvariantViolation):
		return KindInvariantViolation
	case errors.Is(err, ErrStore):
		return KindStore
	default:
		return KindInternal
	}
}

// HTTPStatusFromError maps an error kind to the response status code.
// Conflicts are reported as 400 like the other guard failures.
func HTTPStatusFromError(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict, KindInvalidTransition, KindUnavailable, KindInvariantViolation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
