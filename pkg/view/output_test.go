package view_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/amirasaad/fxconvert/pkg/view"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var sampleResult = &domain.ConversionResult{
	Amount:          decimal.NewFromInt(100),
	FromCurrency:    "USD",
	ToCurrency:      "EUR",
	ConvertedAmount: decimal.RequireFromString("92.5"),
	ExchangeRate:    decimal.RequireFromString("0.925"),
	Timestamp:       domain.Timestamp{Time: time.Date(2024, 3, 5, 8, 7, 0, 0, time.UTC)},
}

func TestWriteConversion(t *testing.T) {
	var buf bytes.Buffer
	styles := view.NewStyles(lipgloss.NewRenderer(&buf))

	t.Run("text", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, view.WriteConversion(&buf, view.FormatText, styles, sampleResult, sampleDisplay))
		assert.Contains(t, buf.String(), "92,5000 EUR")
		assert.Contains(t, buf.String(), "1 USD = 0,9250 EUR")
	})

	t.Run("json", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, view.WriteConversion(&buf, view.FormatJSON, styles, sampleResult, sampleDisplay))
		var decoded domain.ConversionResult
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.True(t, sampleResult.ConvertedAmount.Equal(decoded.ConvertedAmount))
		assert.Equal(t, "EUR", decoded.ToCurrency)
		assert.True(t, sampleResult.Timestamp.Equal(decoded.Timestamp.Time))
	})

	t.Run("yaml", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, view.WriteConversion(&buf, view.FormatYAML, styles, sampleResult, sampleDisplay))
		var decoded map[string]string
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "92.5", decoded["convertedAmount"])
		assert.Equal(t, "USD", decoded["fromCurrency"])
		assert.Equal(t, "2024-03-05T08:07:00Z", decoded["timestamp"])
	})

	t.Run("unknown", func(t *testing.T) {
		err := view.WriteConversion(&buf, "xml", styles, sampleResult, sampleDisplay)
		assert.ErrorIs(t, err, view.ErrUnknownFormat)
	})
}

func TestWriteCurrencies(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, view.WriteCurrencies(&buf, view.FormatText, sampleCurrencies))
	assert.Contains(t, buf.String(), "GBP   British Pound")

	buf.Reset()
	require.NoError(t, view.WriteCurrencies(&buf, view.FormatYAML, sampleCurrencies))
	var decoded []domain.Currency
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleCurrencies, decoded)

	assert.ErrorIs(t, view.WriteCurrencies(&buf, "csv", sampleCurrencies), view.ErrUnknownFormat)
}
