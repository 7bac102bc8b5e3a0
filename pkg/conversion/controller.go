package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirasaad/fxconvert/pkg/currency"
	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/amirasaad/fxconvert/pkg/format"
	"github.com/amirasaad/fxconvert/pkg/provider"
)

// ErrControllerStopped is returned by Dispatch once Run has exited.
var ErrControllerStopped = errors.New("controller stopped")

// View renders controller state. All calls come from the controller goroutine.
type View interface {
	currency.Selector
	// SetBusy toggles the busy indicator and disables submit while true.
	SetBusy(busy bool)
	// ShowResult shows the result panel and hides the error panel.
	ShowResult(d Display)
	// ShowError shows the error panel and hides the result panel.
	ShowError(message string)
	// HideMessages hides both panels.
	HideMessages()
}

// Catalog is the registry as seen by the controller.
type Catalog interface {
	Resolver
	Load(ctx context.Context) error
	PopulateSelectors(sel currency.Selector) (from, to string)
}

// Debouncer coalesces auto-triggers.
type Debouncer interface {
	Schedule(fn func())
	Cancel()
}

type envelope struct {
	ev  Event
	ack chan struct{}
}

// catalogReady is posted when the registry finished loading.
type catalogReady struct{}

func (catalogReady) isEvent() {}

// Controller drives the conversion form. Run owns all state; other goroutines
// talk to it through Dispatch.
type Controller struct {
	view      View
	catalog   Catalog
	requester provider.Converter
	debouncer Debouncer
	formatter *format.Formatter
	logger    *slog.Logger

	events chan envelope
	done   chan struct{}
	runCtx context.Context
	wg     sync.WaitGroup

	state State

	mu       sync.RWMutex
	snapshot State
}

// NewController wires a controller. Nothing happens until Run is called.
func NewController(
	view View,
	catalog Catalog,
	requester provider.Converter,
	debouncer Debouncer,
	formatter *format.Formatter,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		view:      view,
		catalog:   catalog,
		requester: requester,
		debouncer: debouncer,
		formatter: formatter,
		logger:    logger.With("component", "controller"),
		events:    make(chan envelope, 16),
		done:      make(chan struct{}),
	}
}

// Run loads the currency list and processes events until ctx is done.
// In-flight requests are awaited before it returns.
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	defer func() {
		c.debouncer.Cancel()
		close(c.done)
		c.wg.Wait()
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		var ev Event = catalogReady{}
		if err := c.catalog.Load(ctx); err != nil {
			ev = CurrenciesFailed{Err: err}
		}
		_ = c.Dispatch(ctx, ev)
	}()

	for {
		select {
		case env := <-c.events:
			c.handle(env.ev)
			if env.ack != nil {
				close(env.ack)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Dispatch posts ev and waits until the controller has processed it.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	env := envelope{ev: ev, ack: make(chan struct{})}
	select {
	case c.events <- env:
	case <-c.done:
		return ErrControllerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-env.ack:
		return nil
	case <-c.done:
		return ErrControllerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetAmount forwards an amount edit.
func (c *Controller) SetAmount(ctx context.Context, text string) error {
	return c.Dispatch(ctx, AmountChanged{Text: text})
}

// SelectSource forwards a source selection.
func (c *Controller) SelectSource(ctx context.Context, code string) error {
	return c.Dispatch(ctx, SourceSelected{Code: code})
}

// SelectTarget forwards a target selection.
func (c *Controller) SelectTarget(ctx context.Context, code string) error {
	return c.Dispatch(ctx, TargetSelected{Code: code})
}

// Swap forwards a swap request.
func (c *Controller) Swap(ctx context.Context) error {
	return c.Dispatch(ctx, Swapped{})
}

// Submit forwards an explicit conversion request.
func (c *Controller) Submit(ctx context.Context) error {
	return c.Dispatch(ctx, Submitted{})
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

func (c *Controller) handle(ev Event) {
	if _, ok := ev.(catalogReady); ok {
		from, to := c.catalog.PopulateSelectors(c.view)
		ev = CurrenciesLoaded{From: from, To: to}
	}

	switch e := ev.(type) {
	case ConversionSucceeded:
		if IsStale(c.state, e.Seq) {
			c.logger.Debug("Discarding stale conversion result", "seq", e.Seq, "pending", c.state.Pending)
		}
	case ConversionFailed:
		if IsStale(c.state, e.Seq) {
			c.logger.Debug("Discarding stale conversion error", "seq", e.Seq, "pending", c.state.Pending, "error", e.Err)
		}
	case DebounceElapsed:
		if e.Trigger != c.state.Armed {
			c.logger.Debug("Discarding outdated auto-trigger", "trigger", e.Trigger, "armed", c.state.Armed)
		}
	case CurrenciesFailed:
		c.logger.Error("Currency list unavailable, interaction disabled", "error", e.Err)
	}

	prev := c.state
	next, effects := Transition(prev, ev)
	c.state = next

	c.mu.Lock()
	c.snapshot = next
	c.mu.Unlock()

	if prev.Phase != next.Phase {
		c.logger.Debug("State changed", "from", prev.Phase, "to", next.Phase, "seq", next.Seq)
	}

	_, submitted := ev.(Submitted)
	c.render(prev, next, submitted)

	for _, eff := range effects {
		c.apply(eff)
	}
}

func (c *Controller) apply(eff Effect) {
	switch e := eff.(type) {
	case ArmDebounce:
		c.debouncer.Schedule(func() {
			_ = c.Dispatch(c.runCtx, DebounceElapsed{Trigger: e.Trigger})
		})
	case CancelDebounce:
		c.debouncer.Cancel()
	case RequestConversion:
		c.request(e.Seq, e.Query)
	}
}

// request runs the remote call on its own goroutine. A completion event is
// posted on every path, panics included, so Loading is always left.
func (c *Controller) request(seq uint64, q domain.ConversionQuery) {
	c.logger.Info("Requesting conversion",
		"seq", seq, "amount", q.Amount.String(), "from", q.From, "to", q.To)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		var ev Event
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("Conversion request panicked", "seq", seq, "panic", r)
				ev = ConversionFailed{Seq: seq, Err: fmt.Errorf("conversion panicked: %v", r)}
			}
			_ = c.Dispatch(c.runCtx, ev)
		}()

		result, err := c.requester.Convert(c.runCtx, q)
		switch {
		case err != nil:
			c.logger.Warn("Conversion failed", "seq", seq, "error", err)
			ev = ConversionFailed{Seq: seq, Err: err}
		case result == nil:
			ev = ConversionFailed{Seq: seq, Err: errors.New("empty conversion result")}
		default:
			ev = ConversionSucceeded{Seq: seq, Result: result}
		}
	}()
}

func (c *Controller) render(prev, next State, force bool) {
	if prev.Busy() != next.Busy() {
		c.view.SetBusy(next.Busy())
	}
	if prev.Inputs.From != next.Inputs.From || prev.Inputs.To != next.Inputs.To {
		c.view.SetSelection(next.Inputs.From, next.Inputs.To)
	}

	changed := prev.Phase != next.Phase || prev.Result != next.Result || prev.Message != next.Message
	if !changed && !force {
		return
	}
	switch next.Phase {
	case PhaseResult:
		c.view.ShowResult(Present(next.Result, c.catalog, c.formatter))
	case PhaseError:
		c.view.ShowError(next.Message)
	default:
		c.view.HideMessages()
	}
}
