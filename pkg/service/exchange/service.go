package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	fixtures "github.com/amirasaad/fxconvert/internal/fixtures/currency"
	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/shopspring/decimal"
)

// ---- Errors ----

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrNegativeAmount      = errors.New("amount must be positive")
	ErrNoRates             = errors.New("no reference rates available")
)

// ---- Constants ----

const (
	// RateScale is the precision of derived cross rates.
	RateScale = 6
	// AmountScale is the precision of converted amounts.
	AmountScale = 4
)

// Service converts amounts with a static USD-based reference table.
type Service struct {
	currencies []domain.Currency
	usdRates   map[string]decimal.Decimal
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a service from reference entries. Later duplicates are ignored.
func New(entries []fixtures.Entry, logger *slog.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		usdRates: make(map[string]decimal.Decimal, len(entries)),
		now:      time.Now,
		logger:   logger.With("service", "Exchange"),
	}
	for _, e := range entries {
		code := e.Currency.Code
		if _, dup := s.usdRates[code]; dup {
			s.logger.Warn("Ignoring duplicate reference rate", "code", code)
			continue
		}
		s.usdRates[code] = e.USDRate
		s.currencies = append(s.currencies, e.Currency)
	}
	if len(s.currencies) == 0 {
		return nil, ErrNoRates
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Currencies lists the supported currencies in table order.
func (s *Service) Currencies() []domain.Currency {
	out := make([]domain.Currency, len(s.currencies))
	copy(out, s.currencies)
	return out
}

// Rate returns how many units of to one unit of from buys.
func (s *Service) Rate(from, to string) (decimal.Decimal, error) {
	fromRate, ok := s.usdRates[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, from)
	}
	toRate, ok := s.usdRates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, to)
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	return toRate.Div(fromRate).Round(RateScale), nil
}

// Convert computes a conversion result.
func (s *Service) Convert(
	ctx context.Context,
	amount decimal.Decimal,
	from, to string,
) (*domain.ConversionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	rate, err := s.Rate(from, to)
	if err != nil {
		return nil, err
	}
	converted := amount.Mul(rate).Round(AmountScale)
	s.logger.Info("Conversion",
		"amount", amount.String(), "from", from, "to", to,
		"rate", rate.String(), "converted", converted.String())

	return &domain.ConversionResult{
		Amount:          amount,
		FromCurrency:    from,
		ToCurrency:      to,
		ConvertedAmount: converted,
		ExchangeRate:    rate,
		Timestamp:       domain.Timestamp{Time: s.now()},
	}, nil
}
