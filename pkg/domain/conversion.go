package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a convertible currency as listed by the pricing API.
type Currency struct {
	Code   string `json:"code" yaml:"code" validate:"required,max=10"`
	Name   string `json:"name" yaml:"name" validate:"required"`
	Symbol string `json:"symbol" yaml:"symbol"`
}

// ConversionQuery is a validated conversion attempt.
type ConversionQuery struct {
	Amount decimal.Decimal
	From   string
	To     string
}

// ConversionResult is the pricing API answer for a successful conversion.
type ConversionResult struct {
	Amount          decimal.Decimal `json:"amount" yaml:"amount"`
	FromCurrency    string          `json:"fromCurrency" yaml:"fromCurrency"`
	ToCurrency      string          `json:"toCurrency" yaml:"toCurrency"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount" yaml:"convertedAmount"`
	ExchangeRate    decimal.Decimal `json:"exchangeRate" yaml:"exchangeRate"`
	Timestamp       Timestamp       `json:"timestamp" yaml:"timestamp"`
}

// localLayouts are the zone-less layouts the API is known to emit.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp accepts RFC 3339 strings, zone-less ISO date-times (read as local
// time) and epoch milliseconds.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] != '"' {
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", data, err)
		}
		t.Time = time.UnixMilli(ms)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = ts
		return nil
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = ts
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339))
}

func (t Timestamp) MarshalYAML() (any, error) {
	return t.Format(time.RFC3339), nil
}
