package currency

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/amirasaad/fxconvert/pkg/provider"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultFrom is preselected as source currency when available
	DefaultFrom = "USD"
	// DefaultTo is preselected as target currency when available
	DefaultTo = "EUR"
)

// Selector is the part of a view that offers currencies for selection.
type Selector interface {
	// SetCurrencyOptions replaces the selectable currencies.
	SetCurrencyOptions(currencies []domain.Currency)
	// SetSelection sets the selected source and target codes ("" clears a side).
	SetSelection(from, to string)
}

// Registry holds the currencies fetched once at startup.
type Registry struct {
	source   provider.CurrencySource
	logger   *slog.Logger
	validate *validator.Validate
	group    singleflight.Group

	defaultFrom string
	defaultTo   string

	mu      sync.RWMutex
	loaded  bool
	loadErr error
	list    []domain.Currency
	byCode  map[string]domain.Currency
}

// Option configures a Registry.
type Option func(*Registry)

// WithDefaultPair overrides the preselected pair.
func WithDefaultPair(from, to string) Option {
	return func(r *Registry) {
		if from != "" {
			r.defaultFrom = from
		}
		if to != "" {
			r.defaultTo = to
		}
	}
}

// NewRegistry creates an empty registry backed by source.
func NewRegistry(source provider.CurrencySource, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		source:      source,
		logger:      logger.With("component", "currency_registry"),
		validate:    validator.New(),
		defaultFrom: DefaultFrom,
		defaultTo:   DefaultTo,
		byCode:      make(map[string]domain.Currency),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load fetches the currency set. It runs at most one successful or failed fetch
// for the registry's lifetime; a failure is permanent.
func (r *Registry) Load(ctx context.Context) error {
	if done, err := r.state(); done {
		return err
	}
	_, err, _ := r.group.Do("currencies", func() (any, error) {
		if done, err := r.state(); done {
			return nil, err
		}
		err := r.fetch(ctx)
		r.mu.Lock()
		r.loaded = err == nil
		r.loadErr = err
		r.mu.Unlock()
		return nil, err
	})
	return err
}

func (r *Registry) state() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded || r.loadErr != nil, r.loadErr
}

func (r *Registry) fetch(ctx context.Context) error {
	currencies, err := r.source.ListCurrencies(ctx)
	if err != nil {
		r.logger.Error("Failed to load currencies", "error", err)
		return fmt.Errorf("%w: %w", domain.ErrRegistryLoad, err)
	}

	list := make([]domain.Currency, 0, len(currencies))
	byCode := make(map[string]domain.Currency, len(currencies))
	for _, c := range currencies {
		if err := r.validate.Struct(c); err != nil {
			r.logger.Warn("Skipping invalid currency", "code", c.Code, "error", err)
			continue
		}
		if _, dup := byCode[c.Code]; dup {
			r.logger.Warn("Skipping duplicate currency", "code", c.Code)
			continue
		}
		byCode[c.Code] = c
		list = append(list, c)
	}
	if len(list) == 0 {
		r.logger.Error("Currency list is empty", "received", len(currencies))
		return fmt.Errorf("%w: %w", domain.ErrRegistryLoad, domain.ErrNoCurrencies)
	}

	r.mu.Lock()
	r.list = list
	r.byCode = byCode
	r.mu.Unlock()
	r.logger.Info("Currencies loaded", "count", len(list))
	return nil
}

// Err returns the load failure, if any.
func (r *Registry) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadErr
}

// Resolve returns the currency for code, or a placeholder carrying only the code.
func (r *Registry) Resolve(code string) domain.Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byCode[code]; ok {
		return c
	}
	return domain.Currency{Code: code, Name: code, Symbol: ""}
}

// Has reports whether code was loaded.
func (r *Registry) Has(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byCode[code]
	return ok
}

// Currencies returns the loaded currencies in API order.
func (r *Registry) Currencies() []domain.Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Currency, len(r.list))
	copy(out, r.list)
	return out
}

// Count returns the number of loaded currencies.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.list)
}

// DefaultPair returns the configured default codes that are present in the set.
func (r *Registry) DefaultPair() (from, to string) {
	if r.Has(r.defaultFrom) {
		from = r.defaultFrom
	}
	if r.Has(r.defaultTo) {
		to = r.defaultTo
	}
	return from, to
}

// PopulateSelectors clears and refills the selector's options, then applies
// the default pair. It returns the applied selection.
func (r *Registry) PopulateSelectors(sel Selector) (from, to string) {
	sel.SetCurrencyOptions(r.Currencies())
	from, to = r.DefaultPair()
	sel.SetSelection(from, to)
	return from, to
}
