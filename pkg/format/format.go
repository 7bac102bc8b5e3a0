// Package format renders amounts, rates and timestamps for display.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// DefaultLocale matches the reference client.
	DefaultLocale = "fr-FR"
	// AmountScale is the number of fraction digits shown for amounts and rates.
	AmountScale = 4
	// TimestampLayout is dd/MM/yyyy HH:mm.
	TimestampLayout = "02/01/2006 15:04"
)

// Formatter formats values consistently for one locale and time zone.
type Formatter struct {
	location *time.Location
	group    string
	point    string
}

// New builds a formatter. An empty locale falls back to DefaultLocale and a nil
// location to time.Local.
func New(locale string, loc *time.Location) (*Formatter, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	if loc == nil {
		loc = time.Local
	}
	group, point := separators(message.NewPrinter(tag))
	return &Formatter{location: loc, group: group, point: point}, nil
}

// separators reads the locale's grouping and decimal symbols from a sample
// rendering of 1234.5.
func separators(p *message.Printer) (group, point string) {
	sample := []rune(p.Sprint(number.Decimal(1234.5, number.Scale(1))))
	if len(sample) < 6 {
		return "", "."
	}
	return string(sample[1 : len(sample)-5]), string(sample[len(sample)-2])
}

// LoadLocation resolves a zone name; "" and "Local" mean time.Local.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// Amount formats d with AmountScale fraction digits. Digits come from the
// decimal itself, so amounts of any size keep their exact value.
func (f *Formatter) Amount(d decimal.Decimal) string {
	fixed := d.StringFixed(AmountScale)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + f.groupDigits(whole) + f.point + frac
}

func (f *Formatter) groupDigits(digits string) string {
	if f.group == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(f.group)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Rate formats the unit exchange rate line, e.g. "1 USD = 0,9250 EUR".
func (f *Formatter) Rate(from, to string, rate decimal.Decimal) string {
	return fmt.Sprintf("1 %s = %s %s", from, f.Amount(rate), to)
}

// Timestamp formats t in the formatter's time zone.
func (f *Formatter) Timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.location).Format(TimestampLayout)
}
