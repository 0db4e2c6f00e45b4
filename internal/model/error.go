package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure so the boundary can map it to a
// transport response without inspecting messages.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindConflict      ErrorKind = "CONFLICT"
	KindOutOfStock    ErrorKind = "OUT_OF_STOCK"
	KindUnprocessable ErrorKind = "UNPROCESSABLE"
)

// DomainError is a business-rule failure raised by the core and propagated
// unmodified through the service layer.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NotFoundf creates a NotFound domain error.
func NotFoundf(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf creates a Conflict domain error.
func Conflictf(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Unprocessablef creates an Unprocessable domain error.
func Unprocessablef(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindUnprocessable, Message: fmt.Sprintf(format, args...)}
}

// ErrOutOfStock is returned when a reservation exceeds available stock.
var ErrOutOfStock = &DomainError{Kind: KindOutOfStock, Message: "Out of stock product"}

// KindOf returns the kind of a domain error, or "" for infrastructure errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsNotFound reports whether err is a NotFound domain error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
