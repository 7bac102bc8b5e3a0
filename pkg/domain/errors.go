package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	// ErrValidation is matched by every input validation failure
	ErrValidation = errors.New("validation error")
	// ErrRegistryLoad is returned when the currency list cannot be fetched
	ErrRegistryLoad = errors.New("unable to load the currency list")
	// ErrNoCurrencies is returned when the API answered with no usable currency
	ErrNoCurrencies = errors.New("currency list is empty")
)

// ValidationReason identifies which input rule rejected a conversion attempt.
type ValidationReason string

const (
	InvalidAmount ValidationReason = "invalid_amount"
	MissingSource ValidationReason = "missing_source"
	MissingTarget ValidationReason = "missing_target"
	SameCurrency  ValidationReason = "same_currency"
)

// ValidationError is a local input error. It never reaches the network layer.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation errors, in rule order.
var (
	ErrInvalidAmount = &ValidationError{
		Reason:  InvalidAmount,
		Message: "Please enter a valid positive amount.",
	}
	ErrMissingSource = &ValidationError{
		Reason:  MissingSource,
		Message: "Please select the source currency.",
	}
	ErrMissingTarget = &ValidationError{
		Reason:  MissingTarget,
		Message: "Please select the target currency.",
	}
	ErrSameCurrency = &ValidationError{
		Reason:  SameCurrency,
		Message: "Source and target currencies must be different.",
	}
)

const (
	// MsgRetry is shown when the conversion service could not be reached.
	MsgRetry = "Conversion failed. Please try again."
	// MsgRegistryUnavailable is shown once when the currency list cannot be loaded.
	MsgRegistryUnavailable = "Unable to load the currency list. Please restart the application."
)

// RequestError is a recoverable failure of a single conversion attempt.
// Status is zero when no response was received.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

// NewStatusError builds the fallback error for a non-success response without a usable body.
func NewStatusError(status int) *RequestError {
	return &RequestError{Status: status, Message: fmt.Sprintf("HTTP status %d", status)}
}

// NewTransportError wraps a failure that produced no response.
func NewTransportError(err error) *RequestError {
	return &RequestError{Message: MsgRetry, Err: err}
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

// UserMessage returns the text to display for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return rerr.Message
	}
	if errors.Is(err, ErrRegistryLoad) {
		return MsgRegistryUnavailable
	}
	return MsgRetry
}
