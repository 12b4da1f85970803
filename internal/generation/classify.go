package generation

import (
	"context"
	"errors"
)

// Class is the retry classification of a raw poll failure.
type Class int

const (
	// ClassTransient failures are assumed self-resolving: the poll attempt
	// counts, but the loop keeps going. Covers network errors, 5xx and 429.
	ClassTransient Class = iota
	// ClassPermanent failures indicate a request defect repeated polling
	// cannot fix (4xx). The job fails on the same attempt.
	ClassPermanent
	// ClassCanceled failures come from the caller's context; the loop stops
	// and the context error propagates.
	ClassCanceled
)

// httpStatusError is implemented by provider client errors that preserve the
// transport status code.
type httpStatusError interface {
	error
	HTTPStatus() int
}

// Classify maps a raw transport or provider failure to its retry class.
// Client errors are never retried; server errors and network failures are
// absorbed into continued polling, trading a slightly longer wait for
// resilience against provider flakiness.
func Classify(err error) Class {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassCanceled
	}

	var se httpStatusError
	if errors.As(err, &se) {
		code := se.HTTPStatus()
		switch {
		case code == 429:
			return ClassTransient
		case code >= 500:
			return ClassTransient
		case code >= 400:
			return ClassPermanent
		}
	}

	// Network errors and anything unrecognized.
	return ClassTransient
}
