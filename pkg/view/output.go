package view

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/amirasaad/fxconvert/pkg/conversion"
	"github.com/amirasaad/fxconvert/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Output formats of the one-shot commands.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for an unsupported -o value.
var ErrUnknownFormat = fmt.Errorf("unknown output format, want %s, %s or %s", FormatText, FormatJSON, FormatYAML)

// WriteConversion prints a one-shot conversion.
func WriteConversion(w io.Writer, format string, s Styles, res *domain.ConversionResult, d conversion.Display) error {
	switch format {
	case FormatText, "":
		_, err := fmt.Fprintln(w, RenderDisplay(s, d))
		return err
	case FormatJSON:
		return writeJSON(w, res)
	case FormatYAML:
		return writeYAML(w, res)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteCurrencies prints the currency list.
func WriteCurrencies(w io.Writer, format string, currencies []domain.Currency) error {
	switch format {
	case FormatText, "":
		for _, c := range currencies {
			if _, err := fmt.Fprintf(w, "%-4s  %-20s %s\n", c.Code, c.Name, c.Symbol); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		return writeJSON(w, currencies)
	case FormatYAML:
		return writeYAML(w, currencies)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
