package currency

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/shopspring/decimal"
)

//go:embed currencies.csv
var currenciesCSV string

const columns = 4

// Entry is a currency with its reference rate against USD.
type Entry struct {
	Currency domain.Currency
	USDRate  decimal.Decimal
}

// LoadCSV loads reference currencies from a CSV file or embedded content.
// If path is empty, it uses the embedded CSV content.
func LoadCSV(path string) ([]Entry, error) {
	var r io.Reader

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	} else {
		r = strings.NewReader(currenciesCSV)
	}

	return parseCSV(r)
}

func parseCSV(r io.Reader) ([]Entry, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("invalid CSV format: missing header")
	}
	if len(records[0]) < columns {
		return nil, fmt.Errorf(
			"invalid CSV format: expected at least %d columns, got %d",
			columns,
			len(records[0]),
		)
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		// Skip malformed rows
		if len(rec) < columns {
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(rec[3]))
		if err != nil || !rate.IsPositive() {
			return nil, fmt.Errorf("line %d: invalid usd_rate %q", i+2, rec[3])
		}
		entries = append(entries, Entry{
			Currency: domain.Currency{
				Code:   strings.TrimSpace(rec[0]),
				Name:   strings.TrimSpace(rec[1]),
				Symbol: strings.TrimSpace(rec[2]),
			},
			USDRate: rate,
		})
	}
	return entries, nil
}
