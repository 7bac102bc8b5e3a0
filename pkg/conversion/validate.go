package conversion

import (
	"strings"

	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/shopspring/decimal"
)

// Validate checks a raw conversion attempt. Rules run in order and the first
// failure is returned.
func Validate(amountText, fromCode, toCode string) (domain.ConversionQuery, error) {
	amount, ok := parseAmount(amountText)
	if !ok {
		return domain.ConversionQuery{}, domain.ErrInvalidAmount
	}
	from := strings.TrimSpace(fromCode)
	if from == "" {
		return domain.ConversionQuery{}, domain.ErrMissingSource
	}
	to := strings.TrimSpace(toCode)
	if to == "" {
		return domain.ConversionQuery{}, domain.ErrMissingTarget
	}
	if from == to {
		return domain.ConversionQuery{}, domain.ErrSameCurrency
	}
	return domain.ConversionQuery{Amount: amount, From: from, To: to}, nil
}

// parseAmount accepts a plain decimal number with either '.' or a single ','
// as the decimal separator.
func parseAmount(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, d.IsPositive()
}
