package initializer

import (
	"fmt"
	"log/slog"

	"github.com/amirasaad/fxconvert/infra/provider"
	fixtures "github.com/amirasaad/fxconvert/internal/fixtures/currency"
	"github.com/amirasaad/fxconvert/pkg/app"
	"github.com/amirasaad/fxconvert/pkg/config"
	"github.com/amirasaad/fxconvert/pkg/currency"
	"github.com/amirasaad/fxconvert/pkg/debounce"
	"github.com/amirasaad/fxconvert/pkg/format"
	"github.com/amirasaad/fxconvert/pkg/service/exchange"
	"github.com/amirasaad/fxconvert/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// InitializeDependencies builds everything the client needs. The returned
// cleanup closes the log file, if any.
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	cleanup func() error,
	err error,
) {
	out, closeLog, err := openLogOutput(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			_ = closeLog()
		}
	}()

	logger := setupLogger(cfg.Log, out)
	deps = &app.Deps{Logger: logger}

	deps.Metrics = prometheus.NewRegistry()
	deps.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps.PricingAPI = provider.NewPricingAPIClient(
		cfg.API,
		logger,
		provider.WithMetrics(provider.NewMetrics(deps.Metrics)),
	)

	deps.Registry = currency.NewRegistry(
		deps.PricingAPI,
		logger,
		currency.WithDefaultPair(cfg.UI.DefaultFrom, cfg.UI.DefaultTo),
	)

	loc, err := format.LoadLocation(cfg.UI.TimeZone)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load time zone: %w", err)
	}
	deps.Formatter, err = format.New(cfg.UI.Locale, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize formatter: %w", err)
	}

	deps.Debouncer = debounce.New(cfg.UI.Debounce)

	logger.Info("Dependencies initialized",
		"api", cfg.API.BaseURL,
		"locale", cfg.UI.Locale,
		"debounce", cfg.UI.Debounce)
	return deps, closeLog, nil
}

// InitializeStubAPI builds the local pricing API from the reference rate table.
func InitializeStubAPI(cfg *config.App) (
	api *fiber.App,
	logger *slog.Logger,
	cleanup func() error,
	err error,
) {
	out, closeLog, err := openLogOutput(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	defer func() {
		if err != nil {
			_ = closeLog()
		}
	}()
	logger = setupLogger(cfg.Log, out)

	entries, err := fixtures.LoadCSV(cfg.Server.RatesFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load reference rates: %w", err)
	}
	logger.Info("Loaded reference rates", "count", len(entries), "file", cfg.Server.RatesFile)

	svc, err := exchange.New(entries, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize exchange service: %w", err)
	}
	return webapi.NewApp(svc, cfg.Server, logger), logger, closeLog, nil
}
