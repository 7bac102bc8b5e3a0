package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/fxconvert/pkg/config"
	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/amirasaad/fxconvert/pkg/testutils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*PricingAPIClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.API{BaseURL: srv.URL + "/api/", HTTPTimeout: 2 * time.Second}
	return NewPricingAPIClient(cfg, testutils.DiscardLogger(), opts...), srv
}

func query(amount, from, to string) domain.ConversionQuery {
	return domain.ConversionQuery{Amount: decimal.RequireFromString(amount), From: from, To: to}
}

func TestConvert_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/convert", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("amount"))
		assert.Equal(t, "USD", r.URL.Query().Get("from"))
		assert.Equal(t, "EUR", r.URL.Query().Get("to"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fromCurrency":"USD","toCurrency":"EUR","amount":100,` +
			`"convertedAmount":92.5,"exchangeRate":0.925,"timestamp":"2024-03-05T09:07:00Z"}`))
	})

	res, err := client.Convert(context.Background(), query("100", "USD", "EUR"))
	require.NoError(t, err)
	assert.Equal(t, "USD", res.FromCurrency)
	assert.Equal(t, "EUR", res.ToCurrency)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.ConvertedAmount.Equal(decimal.RequireFromString("92.5")))
	assert.True(t, res.ExchangeRate.Equal(decimal.RequireFromString("0.925")))
	assert.Equal(t, time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC), res.Timestamp.UTC())
}

func TestConvert_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k3y", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"fromCurrency":"USD","toCurrency":"EUR"}`))
	}))
	defer srv.Close()

	client := NewPricingAPIClient(&config.API{BaseURL: srv.URL, ApiKey: "k3y", HTTPTimeout: time.Second}, testutils.DiscardLogger())
	_, err := client.Convert(context.Background(), query("1", "USD", "EUR"))
	require.NoError(t, err)
}

func TestConvert_ErrorPayloadMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":400,"message":"X","timestamp":1700000000000}`))
	})

	_, err := client.Convert(context.Background(), query("1", "USD", "ZZZ"))
	require.Error(t, err)
	var rerr *domain.RequestError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "X", rerr.Error())
	assert.Equal(t, http.StatusBadRequest, rerr.Status)
}

func TestConvert_ErrorWithoutBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "malformed", body: "<html>bad gateway</html>"},
		{name: "blank message", body: `{"message":"  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.Convert(context.Background(), query("1", "USD", "EUR"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "502")
			assert.Equal(t, "HTTP status 502", domain.UserMessage(err))
		})
	}
}

func TestConvert_TransportFailure(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	res, err := client.Convert(context.Background(), query("1", "USD", "EUR"))
	assert.Nil(t, res)
	var rerr *domain.RequestError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 0, rerr.Status)
	assert.Equal(t, domain.MsgRetry, rerr.Message)
	assert.Error(t, rerr.Unwrap())
}

func TestConvert_MalformedSuccessBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"amount":`))
	})
	_, err := client.Convert(context.Background(), query("1", "USD", "EUR"))
	var rerr *domain.RequestError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, domain.MsgRetry, rerr.Message)
}

func TestConvert_ContextCanceled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Convert(ctx, query("1", "USD", "EUR"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListCurrencies(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/currencies", r.URL.Path)
		_, _ = w.Write([]byte(`[{"code":"USD","name":"US Dollar","symbol":"$"},{"code":"EUR","name":"Euro","symbol":"€"}]`))
	})

	list, err := client.ListCurrencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Currency{
		{Code: "USD", Name: "US Dollar", Symbol: "$"},
		{Code: "EUR", Name: "Euro", Symbol: "€"},
	}, list)
}

func TestListCurrencies_NonSuccess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.ListCurrencies(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestMetrics_RecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	var status atomic.Int32
	status.Store(http.StatusOK)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{}`))
	}, WithMetrics(metrics))

	_, err := client.Convert(context.Background(), query("1", "USD", "EUR"))
	require.NoError(t, err)
	status.Store(http.StatusInternalServerError)
	_, err = client.Convert(context.Background(), query("1", "USD", "EUR"))
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.requests.WithLabelValues("convert", outcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.requests.WithLabelValues("convert", outcomeAPIError)), 0)
}

func TestNewPricingAPIClient_Limiter(t *testing.T) {
	cfg := &config.API{BaseURL: "http://example.invalid", RequestsPerSecond: 2, Burst: 0}
	client := NewPricingAPIClient(cfg, nil)
	require.NotNil(t, client.limiter)
	assert.Equal(t, 1, client.limiter.Burst())

	client = NewPricingAPIClient(cfg, nil, WithLimiter(nil))
	assert.Nil(t, client.limiter)
}
