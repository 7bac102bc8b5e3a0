package conversion

import (
	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/amirasaad/fxconvert/pkg/format"
)

// Resolver maps a code to its display metadata.
type Resolver interface {
	Resolve(code string) domain.Currency
}

// Display is a conversion result ready to render.
type Display struct {
	OriginalAmount    string
	OriginalCurrency  string
	ConvertedAmount   string
	ConvertedCurrency string
	FromName          string
	ToName            string
	ToSymbol          string
	Rate              string
	Timestamp         string
}

// Present formats r for the result panel.
func Present(r *domain.ConversionResult, res Resolver, f *format.Formatter) Display {
	from := res.Resolve(r.FromCurrency)
	to := res.Resolve(r.ToCurrency)
	return Display{
		OriginalAmount:    f.Amount(r.Amount),
		OriginalCurrency:  from.Code,
		ConvertedAmount:   f.Amount(r.ConvertedAmount),
		ConvertedCurrency: to.Code,
		FromName:          from.Name,
		ToName:            to.Name,
		ToSymbol:          to.Symbol,
		Rate:              f.Rate(from.Code, to.Code, r.ExchangeRate),
		Timestamp:         f.Timestamp(r.Timestamp.Time),
	}
}
