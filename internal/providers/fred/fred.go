package fred

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"policydash/internal/model"
)

const (
	defaultBaseURL          = "https://api.stlouisfed.org/"
	defaultObservationsPath = "fred/series/observations"
	defaultRateLimitPerSec  = 2
	defaultRateLimitBurst   = 2
	defaultUserAgent        = "policydash/0.1"
	missingValue            = "."
)

var (
	ErrMissingAPIKey = errors.New("fred: API key not found, set FRED_API_KEY")
	ErrNoSeries      = errors.New("fred: series does not exist")
)

type Config struct {
	BaseURL          string
	ObservationsPath string
	APIKey           string
	RateLimitPerSec  float64
	RateLimitBurst   int
	Timeout          time.Duration
	UserAgent        string
}

type Provider struct {
	config  Config
	client  *resty.Client
	limiter *rate.Limiter
}

// NewWithConfig validates cfg and fills defaults. A missing API key is a
// configuration error reported before any request is made.
func NewWithConfig(cfg Config) (*Provider, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/"
	if strings.TrimSpace(cfg.ObservationsPath) == "" {
		cfg.ObservationsPath = defaultObservationsPath
	}
	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = defaultRateLimitPerSec
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultRateLimitBurst
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)
	// zero means no client timeout; the caller's context still applies
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Provider{
		config:  cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst),
	}, nil
}

func (p *Provider) Name() string {
	return "fred"
}

type observationsResponse struct {
	Observations []observation `json:"observations"`
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type errorResponse struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

// FetchSeries issues a single observations request. Missing observations
// (".") are skipped. There is no retry: any failure is returned as is.
func (p *Provider) FetchSeries(ctx context.Context, seriesID string, start time.Time) (model.Series, error) {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return model.Series{}, errors.New("fred: series id is required")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return model.Series{}, err
	}

	var (
		payload observationsResponse
		apiErr  errorResponse
	)
	params := map[string]string{
		"series_id": seriesID,
		"api_key":   p.config.APIKey,
		"file_type": "json",
	}
	if !start.IsZero() {
		params["observation_start"] = start.Format(model.DateLayout)
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&payload).
		SetError(&apiErr).
		Get(p.config.ObservationsPath)
	if err != nil {
		return model.Series{}, fmt.Errorf("fred: %s: %w", seriesID, err)
	}
	if resp.IsError() {
		message := strings.TrimSpace(apiErr.Message)
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		if strings.Contains(strings.ToLower(message), "does not exist") {
			return model.Series{}, fmt.Errorf("%w: %s", ErrNoSeries, seriesID)
		}
		return model.Series{}, fmt.Errorf("fred: %s: request failed (%s): %s", seriesID, resp.Status(), message)
	}

	return parseObservations(seriesID, payload.Observations)
}

func parseObservations(seriesID string, raw []observation) (model.Series, error) {
	series := model.Series{Name: seriesID, Observations: make([]model.Observation, 0, len(raw))}
	for _, obs := range raw {
		value := strings.TrimSpace(obs.Value)
		if value == "" || value == missingValue {
			continue
		}
		date, err := time.Parse(model.DateLayout, strings.TrimSpace(obs.Date))
		if err != nil {
			return model.Series{}, fmt.Errorf("fred: %s: bad date %q: %w", seriesID, obs.Date, err)
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return model.Series{}, fmt.Errorf("fred: %s: bad value %q on %s: %w", seriesID, obs.Value, obs.Date, err)
		}
		series.Observations = append(series.Observations, model.Observation{Date: date, Value: parsed})
	}
	return series, nil
}
