package testutils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	fixtures "github.com/amirasaad/fxconvert/internal/fixtures/currency"
	"github.com/amirasaad/fxconvert/pkg/config"
	"github.com/amirasaad/fxconvert/pkg/service/exchange"
	"github.com/amirasaad/fxconvert/pkg/testutils"
	"github.com/amirasaad/fxconvert/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

// BasePath is the mount point used by the suite.
const BasePath = "/currency-converter/api"

// FixedNow is the timestamp stamped on every conversion in the suite.
var FixedNow = time.Date(2024, 3, 5, 8, 7, 0, 0, time.UTC)

// StubAPITestSuite runs the stub API in-process with the embedded rate table.
type StubAPITestSuite struct {
	suite.Suite
	App     *fiber.App
	Service *exchange.Service
	Cfg     *config.Server
}

// SetupTest builds a fresh app per test so rate limiting state does not leak.
func (s *StubAPITestSuite) SetupTest() {
	entries, err := fixtures.LoadCSV("")
	s.Require().NoError(err)

	s.Service, err = exchange.New(entries, testutils.DiscardLogger(),
		exchange.WithClock(func() time.Time { return FixedNow }))
	s.Require().NoError(err)

	s.Cfg = &config.Server{
		Host:      "localhost",
		Port:      8080,
		BasePath:  BasePath,
		RateLimit: 1000,
	}
	s.App = webapi.NewApp(s.Service, s.Cfg, testutils.DiscardLogger())
}

// MakeRequest sends a request through the app without a listener.
func (s *StubAPITestSuite) MakeRequest(method, path string, headers map[string]string) *http.Response {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.App.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// DecodeJSON decodes and closes the response body.
func (s *StubAPITestSuite) DecodeJSON(resp *http.Response, v any) {
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Require().NoError(json.Unmarshal(body, v), string(body))
}
