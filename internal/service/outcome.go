package service

import "errors"

// ErrConcurrencyConflict is returned by Replace when another writer changed
// the product after it was read and the product still exists.
var ErrConcurrencyConflict = errors.New("product was modified concurrently")

// Status tags the kind of an Outcome.
type Status int

const (
	StatusOK Status = iota
	StatusCreated
	StatusNoContent
	StatusNotFound
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusCreated:
		return "created"
	case StatusNoContent:
		return "no_content"
	case StatusNotFound:
		return "not_found"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Outcome is the result of a service operation. Expected failures (not found,
// invalid input) are outcomes; only storage failures and unresolved
// conflicts travel as errors.
type Outcome[T any] struct {
	Status Status
	Value  T
	// Location points at the fetch-one resource of a created product.
	Location string
	Reason   string
}

func ok[T any](v T) Outcome[T] {
	return Outcome[T]{Status: StatusOK, Value: v}
}

func noContent[T any]() Outcome[T] {
	return Outcome[T]{Status: StatusNoContent}
}

func notFound[T any](reason string) Outcome[T] {
	return Outcome[T]{Status: StatusNotFound, Reason: reason}
}

func invalid[T any](reason string) Outcome[T] {
	return Outcome[T]{Status: StatusInvalid, Reason: reason}
}
