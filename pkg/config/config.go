package config

import (
	"time"
)

// API configures the remote pricing API client.
//
//revive:disable
type API struct {
	BaseURL           string        `envconfig:"BASE_URL" default:"http://localhost:8080/currency-converter/api" validate:"required,url"`
	ApiKey            string        `envconfig:"KEY"`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`
	RequestsPerSecond float64       `envconfig:"REQUESTS_PER_SECOND" default:"5" validate:"gte=0"`
	Burst             int           `envconfig:"BURST" default:"5" validate:"gte=0"`
}

//revive:enable

// UI configures the interactive client.
type UI struct {
	Debounce    time.Duration `envconfig:"DEBOUNCE" default:"500ms" validate:"gt=0"`
	Locale      string        `envconfig:"LOCALE" default:"fr-FR" validate:"required"`
	TimeZone    string        `envconfig:"TIME_ZONE" default:"Local"`
	DefaultFrom string        `envconfig:"DEFAULT_FROM" default:"USD"`
	DefaultTo   string        `envconfig:"DEFAULT_TO" default:"EUR"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[fxconvert]"`
	// File receives log output; empty means stderr.
	File string `envconfig:"FILE"`
}

// Server configures the stub pricing API.
type Server struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     int    `envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	BasePath string `envconfig:"BASE_PATH" default:"/currency-converter/api" validate:"startswith=/"`
	// RateLimit is the number of requests allowed per client IP and second.
	RateLimit int `envconfig:"RATE_LIMIT" default:"20" validate:"gt=0"`
	// RatesFile overrides the embedded reference rate table.
	RatesFile string `envconfig:"RATES_FILE"`
}

type Metrics struct {
	// Addr enables a Prometheus listener when set, e.g. ":9100".
	Addr string `envconfig:"ADDR"`
}

type App struct {
	Env     string   `envconfig:"APP_ENV" default:"development"`
	API     *API     `envconfig:"API" validate:"required"`
	UI      *UI      `envconfig:"UI" validate:"required"`
	Log     *Log     `envconfig:"LOG" validate:"required"`
	Server  *Server  `envconfig:"SERVER" validate:"required"`
	Metrics *Metrics `envconfig:"METRICS" validate:"required"`
}
