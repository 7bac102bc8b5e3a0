package provider

import (
	"context"

	"github.com/amirasaad/fxconvert/pkg/domain"
)

// CurrencySource lists the currencies the pricing API can convert.
type CurrencySource interface {
	// ListCurrencies fetches the full currency set
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// Converter performs one remote conversion.
//
// Implementations never panic and report every failure as a *domain.RequestError.
// They do not retry.
type Converter interface {
	Convert(ctx context.Context, q domain.ConversionQuery) (*domain.ConversionResult, error)
}

// PricingAPI is the complete remote surface used by the client.
type PricingAPI interface {
	CurrencySource
	Converter
}
