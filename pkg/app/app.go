package app

import (
	"log/slog"

	"github.com/amirasaad/fxconvert/pkg/config"
	"github.com/amirasaad/fxconvert/pkg/conversion"
	"github.com/amirasaad/fxconvert/pkg/currency"
	"github.com/amirasaad/fxconvert/pkg/debounce"
	"github.com/amirasaad/fxconvert/pkg/format"
	"github.com/amirasaad/fxconvert/pkg/provider"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps contains the collaborators shared by the client commands.
type Deps struct {
	PricingAPI provider.PricingAPI
	Registry   *currency.Registry
	Formatter  *format.Formatter
	Debouncer  *debounce.Scheduler
	Metrics    *prometheus.Registry
	Logger     *slog.Logger
}

type App struct {
	Deps   *Deps
	Config *config.App
}

func New(deps *Deps, cfg *config.App) *App {
	return &App{
		Deps:   deps,
		Config: cfg,
	}
}

// NewController wires an interactive controller rendering to view.
func (a *App) NewController(view conversion.View) *conversion.Controller {
	return conversion.NewController(
		view,
		a.Deps.Registry,
		a.Deps.PricingAPI,
		a.Deps.Debouncer,
		a.Deps.Formatter,
		a.Deps.Logger,
	)
}
