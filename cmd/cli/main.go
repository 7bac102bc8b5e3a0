package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/amirasaad/fxconvert/infra/initializer"
	"github.com/amirasaad/fxconvert/pkg/app"
	"github.com/amirasaad/fxconvert/pkg/config"
	"github.com/amirasaad/fxconvert/pkg/conversion"
	"github.com/amirasaad/fxconvert/pkg/view"
	"github.com/charmbracelet/lipgloss"
	log "github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"
)

const usage = `Usage: fxconvert [command] [arguments]

Commands:
  interactive                          convert interactively (default)
  convert [-o FORMAT] AMOUNT FROM TO   convert once; FORMAT is text, json or yaml
  currencies [-o FORMAT]               list available currencies
  help                                 show this message
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	cmd := "interactive"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "help":
		fmt.Print(usage)
		return nil
	case "interactive", "convert", "currencies":
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		_ = cleanup()
	}()
	a := app.New(deps, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "convert":
		return runConvert(ctx, a, args)
	case "currencies":
		return runCurrencies(ctx, a, args)
	default:
		return runInteractive(ctx, a)
	}
}

func runInteractive(ctx context.Context, a *app.App) error {
	logger := a.Deps.Logger

	stopMetrics := serveMetrics(a)
	defer stopMetrics()

	var (
		lr  view.LineReader
		out io.Writer = os.Stdout
	)
	fd := int(os.Stdin.Fd())
	interactive := term.IsTerminal(fd)
	if interactive {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer func() {
			_ = term.Restore(fd, oldState)
		}()
		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}, "")
		lr, out = t, t
	} else {
		lr = view.NewScannerReader(os.Stdin)
	}

	tv := view.NewTerminal(out, view.WithRenderer(lipgloss.NewRenderer(os.Stdout)))
	ctrl := a.NewController(tv)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	logger.Info("Interactive session started")
	err := view.NewSession(ctrl, tv, logger).Run(ctx, lr)
	if err == nil && !interactive {
		// Piped input ends before the last answer arrives.
		waitSettled(ctx, ctrl, a.Config.UI.Debounce+a.Config.API.HTTPTimeout)
	}
	cancel()
	<-done
	if errors.Is(err, context.Canceled) || errors.Is(err, conversion.ErrControllerStopped) {
		return nil
	}
	return err
}

type stateSource interface {
	State() conversion.State
}

// waitSettled blocks until no conversion is in flight and no auto-trigger is
// pending, or timeout elapses.
func waitSettled(ctx context.Context, ctrl stateSource, timeout time.Duration) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(timeout)
	for !ctrl.State().Settled() {
		select {
		case <-ticker.C:
		case <-deadline:
			return
		case <-ctx.Done():
			return
		}
	}
}

func runConvert(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	output := fs.String("o", view.FormatText, "output format: text, json or yaml")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 3 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("convert needs AMOUNT FROM TO")
	}

	if err := a.Deps.Registry.Load(ctx); err != nil {
		return err
	}
	from := strings.ToUpper(positional[1])
	to := strings.ToUpper(positional[2])
	for _, code := range []string{from, to} {
		if code != "" && !a.Deps.Registry.Has(code) {
			return fmt.Errorf("unknown currency %q", code)
		}
	}

	q, err := conversion.Validate(positional[0], from, to)
	if err != nil {
		return err
	}
	res, err := a.Deps.PricingAPI.Convert(ctx, q)
	if err != nil {
		a.Deps.Logger.Debug("Conversion failed", "error", err)
		return err
	}

	d := conversion.Present(res, a.Deps.Registry, a.Deps.Formatter)
	styles := view.NewStyles(lipgloss.NewRenderer(os.Stdout))
	return view.WriteConversion(os.Stdout, *output, styles, res, d)
}

func runCurrencies(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("currencies", flag.ContinueOnError)
	output := fs.String("o", view.FormatText, "output format: text, json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.Deps.Registry.Load(ctx); err != nil {
		return err
	}
	return view.WriteCurrencies(os.Stdout, *output, a.Deps.Registry.Currencies())
}

// parseInterspersed lets flags follow positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

// serveMetrics exposes the client metrics when METRICS_ADDR is set.
func serveMetrics(a *app.App) func() {
	addr := a.Config.Metrics.Addr
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.Deps.Metrics, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Deps.Logger.Error("Metrics listener failed", "addr", addr, "error", err)
		}
	}()
	a.Deps.Logger.Info("Serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Default().Warn("Metrics listener shutdown", "error", err)
		}
	}
}
