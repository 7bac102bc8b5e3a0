package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/amirasaad/fxconvert/pkg/conversion"
	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/charmbracelet/lipgloss"
)

var _ conversion.View = (*Terminal)(nil)

// Terminal is a line-oriented conversion.View. Panels are printed when shown;
// hiding is only tracked, since printed lines cannot be taken back.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles

	options  []domain.Currency
	byCode   map[string]domain.Currency
	from, to string
	busy     bool
	panel    string
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithRenderer binds the styles to r instead of a renderer for out.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(t *Terminal) {
		t.styles = NewStyles(r)
	}
}

// NewTerminal creates a view writing to out.
func NewTerminal(out io.Writer, opts ...Option) *Terminal {
	t := &Terminal{
		out:    out,
		styles: NewStyles(lipgloss.NewRenderer(out)),
		byCode: make(map[string]domain.Currency),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetCurrencyOptions implements currency.Selector.
func (t *Terminal) SetCurrencyOptions(currencies []domain.Currency) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.options = append([]domain.Currency(nil), currencies...)
	t.byCode = make(map[string]domain.Currency, len(currencies))
	for _, c := range currencies {
		t.byCode[c.Code] = c
	}
	fmt.Fprintf(t.out, "%d currencies available. Type %s to see them.\n", len(currencies), hintCommand("list"))
}

// SetSelection implements currency.Selector.
func (t *Terminal) SetSelection(from, to string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.from, t.to = from, to
}

// SetBusy implements conversion.View.
func (t *Terminal) SetBusy(busy bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.busy = busy
	if busy {
		fmt.Fprintln(t.out, t.styles.Busy.Render("Converting..."))
	}
}

// ShowResult implements conversion.View.
func (t *Terminal) ShowResult(d conversion.Display) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panel = "result"
	fmt.Fprintln(t.out, RenderDisplay(t.styles, d))
}

// ShowError implements conversion.View.
func (t *Terminal) ShowError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panel = "error"
	fmt.Fprintln(t.out, t.styles.Error.Render("✗ "+message))
}

// HideMessages implements conversion.View.
func (t *Terminal) HideMessages() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panel = ""
}

// Selection returns the selected codes.
func (t *Terminal) Selection() (from, to string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.from, t.to
}

// Busy reports whether a conversion is in flight.
func (t *Terminal) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy
}

// Panel returns "result", "error" or "" for the visible panel.
func (t *Terminal) Panel() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.panel
}

// Lookup returns the option for code, if offered.
func (t *Terminal) Lookup(code string) (domain.Currency, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.byCode[code]
	return c, ok
}

// Options returns the selectable currencies.
func (t *Terminal) Options() []domain.Currency {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Currency(nil), t.options...)
}

// Println writes a line to the view output.
func (t *Terminal) Println(a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, a...)
}

// RenderDisplay renders the result panel.
func RenderDisplay(s Styles, d conversion.Display) string {
	converted := fmt.Sprintf("%s %s", d.ConvertedAmount, d.ConvertedCurrency)
	if d.ToName != "" && d.ToName != d.ConvertedCurrency {
		converted += " (" + d.ToName + ")"
	}
	lines := []string{
		fmt.Sprintf("%s %s =", d.OriginalAmount, d.OriginalCurrency),
		s.Amount.Render(converted),
		s.Muted.Render(d.Rate),
	}
	if d.Timestamp != "" {
		lines = append(lines, s.Muted.Render("Updated "+d.Timestamp))
	}
	return s.Result.Render(strings.Join(lines, "\n"))
}
