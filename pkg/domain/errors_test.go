package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidationErrorsMatchErrValidation(t *testing.T) {
	for _, err := range []error{
		domain.ErrInvalidAmount,
		domain.ErrMissingSource,
		domain.ErrMissingTarget,
		domain.ErrSameCurrency,
	} {
		assert.ErrorIs(t, err, domain.ErrValidation, err.Error())
	}
	assert.NotErrorIs(t, domain.NewStatusError(500), domain.ErrValidation)
}

func TestRequestError(t *testing.T) {
	err := domain.NewStatusError(502)
	assert.Equal(t, "HTTP status 502", err.Error())
	assert.Equal(t, 502, err.Status)

	cause := context.DeadlineExceeded
	terr := domain.NewTransportError(cause)
	assert.Equal(t, domain.MsgRetry, terr.Error())
	assert.Zero(t, terr.Status)
	assert.ErrorIs(t, terr, context.DeadlineExceeded)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", domain.ErrSameCurrency, "Source and target currencies must be different."},
		{"wrapped validation", fmt.Errorf("submit: %w", domain.ErrInvalidAmount), "Please enter a valid positive amount."},
		{"api message", &domain.RequestError{Status: 400, Message: "Unsupported currency"}, "Unsupported currency"},
		{"registry", fmt.Errorf("%w: boom", domain.ErrRegistryLoad), domain.MsgRegistryUnavailable},
		{"unknown", errors.New("boom"), domain.MsgRetry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.UserMessage(tt.err))
		})
	}
}
