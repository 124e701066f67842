// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Failure taxonomy for quote sources. Every per-tariff or per-carrier
// failure maps onto exactly one of these; the pipeline downgrades all of
// them to "no result from this source" rather than aborting.
var (
	// ErrValidation indicates carrier-required fields were missing or
	// invalid, caught before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrCredential indicates a tariff record is missing required auth fields.
	ErrCredential = errors.New("missing credentials")
	// ErrNetwork indicates a transport-level failure reaching the carrier.
	ErrNetwork = errors.New("network failure")
	// ErrTimeout indicates the carrier call exceeded its deadline.
	ErrTimeout = errors.New("carrier timed out")
	// ErrCarrierRejected indicates the carrier signaled an explicit
	// fault or error status for the request.
	ErrCarrierRejected = errors.New("carrier rejected request")
	// ErrInvalidResponse indicates an unparsable, absent, or non-positive
	// charge in an otherwise successful response.
	ErrInvalidResponse = errors.New("invalid carrier response")
	// ErrCalculation indicates pricing could not be computed (margin out of
	// range, or no pricing source available).
	ErrCalculation = errors.New("price calculation failed")

	// ErrMissingConfig indicates required configuration is absent.
	ErrMissingConfig = errors.New("missing configuration")
	// ErrInvalidConfig indicates configuration is present but unusable.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// QuoteError wraps a failure from one quote source with enough context to
// report which carrier/tariff was skipped.
type QuoteError struct {
	Err     error
	Carrier string
	Tariff  string
}

func (e *QuoteError) Error() string {
	if e.Tariff != "" {
		return fmt.Sprintf("%s/%s: %v", e.Carrier, e.Tariff, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Carrier, e.Err)
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

// NewQuoteError attaches carrier/tariff context to a failure.
func NewQuoteError(carrier, tariff string, err error) error {
	return &QuoteError{Err: err, Carrier: carrier, Tariff: tariff}
}

// IsRetryable determines if an error should trigger a retry. Only
// transport failures are retryable; carrier-signaled rejections and
// validation problems never are.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
