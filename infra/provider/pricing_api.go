package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amirasaad/fxconvert/pkg/config"
	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/amirasaad/fxconvert/pkg/provider"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// PricingAPIClient talks to the remote conversion API:
//
//	GET {base}/currencies
//	GET {base}/convert?amount=&from=&to=
type PricingAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *Metrics
	logger     *slog.Logger
}

// Option configures a PricingAPIClient.
type Option func(*PricingAPIClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *PricingAPIClient) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) Option {
	return func(p *PricingAPIClient) { p.metrics = m }
}

// WithLimiter replaces the configured rate limiter; nil disables throttling.
func WithLimiter(l *rate.Limiter) Option {
	return func(p *PricingAPIClient) { p.limiter = l }
}

// NewPricingAPIClient creates a client from cfg.
func NewPricingAPIClient(cfg *config.API, logger *slog.Logger, opts ...Option) *PricingAPIClient {
	if logger == nil {
		logger = slog.Default()
	}
	p := &PricingAPIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.ApiKey,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger.With("component", "pricing_api"),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ListCurrencies fetches the convertible currencies.
func (p *PricingAPIClient) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	start := time.Now()
	resp, err := p.get(ctx, "currencies", nil)
	if err != nil {
		p.metrics.observe("currencies", outcomeTransport, time.Since(start))
		return nil, fmt.Errorf("failed to fetch currencies: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if !isSuccess(resp.StatusCode) {
		p.metrics.observe("currencies", outcomeAPIError, time.Since(start))
		return nil, domain.NewStatusError(resp.StatusCode)
	}

	var currencies []domain.Currency
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&currencies); err != nil {
		p.metrics.observe("currencies", outcomeAPIError, time.Since(start))
		return nil, fmt.Errorf("failed to decode currencies: %w", err)
	}
	p.metrics.observe("currencies", outcomeSuccess, time.Since(start))
	return currencies, nil
}

// Convert runs one conversion. Every failure is returned as *domain.RequestError.
func (p *PricingAPIClient) Convert(ctx context.Context, q domain.ConversionQuery) (result *domain.ConversionResult, err error) {
	start := time.Now()
	outcome := outcomeSuccess
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Conversion request panicked", "panic", r)
			result, err = nil, domain.NewTransportError(fmt.Errorf("panic: %v", r))
			outcome = outcomeTransport
		}
		p.metrics.observe("convert", outcome, time.Since(start))
	}()

	params := url.Values{}
	params.Set("amount", q.Amount.String())
	params.Set("from", q.From)
	params.Set("to", q.To)

	resp, err := p.get(ctx, "convert", params)
	if err != nil {
		outcome = outcomeTransport
		p.logger.Warn("Conversion request failed", "from", q.From, "to", q.To, "error", err)
		return nil, domain.NewTransportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		outcome = outcomeTransport
		return nil, domain.NewTransportError(fmt.Errorf("failed to read response: %w", err))
	}

	if !isSuccess(resp.StatusCode) {
		outcome = outcomeAPIError
		rerr := statusError(resp.StatusCode, body)
		p.logger.Warn("Conversion rejected", "status", resp.StatusCode, "message", rerr.Message)
		return nil, rerr
	}

	var res domain.ConversionResult
	if err := json.Unmarshal(body, &res); err != nil {
		outcome = outcomeAPIError
		return nil, &domain.RequestError{
			Status:  resp.StatusCode,
			Message: domain.MsgRetry,
			Err:     fmt.Errorf("failed to decode response: %w", err),
		}
	}
	p.logger.Debug("Conversion completed",
		"from", res.FromCurrency,
		"to", res.ToCurrency,
		"rate", res.ExchangeRate.String(),
	)
	return &res, nil
}

// statusError prefers the API's {message} and falls back to the status code.
func statusError(status int, body []byte) *domain.RequestError {
	var payload struct {
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return &domain.RequestError{Status: status, Message: msg}
		}
	}
	return domain.NewStatusError(status)
}

func (p *PricingAPIClient) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	u := p.baseURL + "/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	p.logger.Debug("Calling pricing API", "path", path, "request_id", requestID)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// Ensure PricingAPIClient implements provider.PricingAPI
var _ provider.PricingAPI = (*PricingAPIClient)(nil)
