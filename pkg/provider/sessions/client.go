// Package sessions implements the session lap provider against a
// FastF1-bridge HTTP endpoint delivering per-lap telemetry plus the
// session weather time series.
package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	"github.com/ohler55/ojg/oj"

	"github.com/f1stint/f1-tiredata-manager-go/log"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/provider"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultDelay   = 500 * time.Millisecond
)

type (
	Client struct {
		http     *resty.Client
		throttle *provider.Throttle
		cacheDir string
		l        *log.Logger
	}
	Option func(c *config)

	config struct {
		baseURL  string
		cacheDir string
		timeout  time.Duration
		delay    time.Duration
		clock    clockwork.Clock
	}
)

func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithCacheDir enables the disk response cache in the given directory.
// An empty value disables caching. The cache is explicit configuration,
// never ambient process state, so tests can isolate or disable it.
func WithCacheDir(dir string) Option {
	return func(c *config) { c.cacheDir = dir }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *config) { c.timeout = timeout }
}

func WithDelay(delay time.Duration) Option {
	return func(c *config) { c.delay = delay }
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *config) { c.clock = clock }
}

func NewClient(opts ...Option) (*Client, error) {
	cfg := &config{
		timeout: DefaultTimeout,
		delay:   DefaultDelay,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.baseURL == "" {
		return nil, fmt.Errorf("session provider: base URL is required")
	}
	if cfg.cacheDir != "" {
		if err := os.MkdirAll(cfg.cacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("session provider cache dir: %w", err)
		}
	}
	return &Client{
		http:     resty.New().SetBaseURL(cfg.baseURL).SetTimeout(cfg.timeout),
		throttle: provider.NewThrottle(cfg.delay, cfg.clock),
		cacheDir: cfg.cacheDir,
		l:        log.Default().Named("provider.sessions"),
	}, nil
}

var _ provider.SessionLaps = (*Client)(nil)

// RaceLaps returns the lap telemetry rows and the weather time series of
// the race session of (year, round).
func (c *Client) RaceLaps(ctx context.Context, year, round int) (
	[]model.LapRecord, []model.WeatherSample, error,
) {
	path := fmt.Sprintf("/session/%d/%d/R/laps", year, round)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	var payload sessionPayload
	if err := oj.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("decode session payload %s: %w", path, err)
	}

	laps := make([]model.LapRecord, 0, len(payload.Laps))
	for i := range payload.Laps {
		lap, err := payload.Laps[i].toModel(year, round)
		if err != nil {
			c.l.Warn("skipping malformed lap entry",
				log.Int("year", year), log.Int("round", round),
				log.ErrorField(err))
			continue
		}
		laps = append(laps, lap)
	}
	samples := make([]model.WeatherSample, 0, len(payload.Weather))
	for i := range payload.Weather {
		sample, err := payload.Weather[i].toModel()
		if err != nil {
			c.l.Warn("skipping malformed weather entry",
				log.Int("year", year), log.Int("round", round),
				log.ErrorField(err))
			continue
		}
		samples = append(samples, sample)
	}
	c.l.Info("fetched session laps",
		log.Int("year", year), log.Int("round", round),
		log.Int("laps", len(laps)), log.Int("weatherSamples", len(samples)))
	return laps, samples, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if body, ok := c.cacheRead(path); ok {
		c.l.Debug("cache hit", log.String("path", path))
		return body, nil
	}
	if err := c.throttle.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, &provider.Error{URL: path, Err: err}
	}
	if resp.IsError() {
		return nil, &provider.Error{URL: path, StatusCode: resp.StatusCode()}
	}
	c.cacheWrite(path, resp.Body())
	return resp.Body(), nil
}

func (c *Client) cacheFile(path string) string {
	sum := sha256.Sum256([]byte(path))
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:])+".json")
}

func (c *Client) cacheRead(path string) ([]byte, bool) {
	if c.cacheDir == "" {
		return nil, false
	}
	body, err := os.ReadFile(c.cacheFile(path))
	if err != nil {
		return nil, false
	}
	return body, true
}

func (c *Client) cacheWrite(path string, body []byte) {
	if c.cacheDir == "" {
		return
	}
	if err := os.WriteFile(c.cacheFile(path), body, 0o644); err != nil {
		c.l.Warn("could not write cache entry",
			log.String("path", path), log.ErrorField(err))
	}
}

// wire types

type (
	sessionPayload struct {
		Laps    []lapEntry     `json:"laps"`
		Weather []weatherEntry `json:"weather"`
	}

	lapEntry struct {
		Driver         string   `json:"driver"`
		DriverNumber   *int     `json:"driverNumber"`
		Team           string   `json:"team"`
		LapNumber      int      `json:"lapNumber"`
		LapTime        *float64 `json:"lapTime"`
		Sector1        *float64 `json:"sector1"`
		Sector2        *float64 `json:"sector2"`
		Sector3        *float64 `json:"sector3"`
		Compound       string   `json:"compound"`
		TyreLife       *int     `json:"tyreLife"`
		Stint          int      `json:"stint"`
		FreshTyre      bool     `json:"freshTyre"`
		TrackStatus    string   `json:"trackStatus"`
		IsPersonalBest bool     `json:"isPersonalBest"`
		IsAccurate     bool     `json:"isAccurate"`
		StartTime      string   `json:"startTime"`
	}

	weatherEntry struct {
		Time      string  `json:"time"`
		AirTemp   float64 `json:"airTemp"`
		TrackTemp float64 `json:"trackTemp"`
		Humidity  float64 `json:"humidity"`
		Rainfall  bool    `json:"rainfall"`
		WindSpeed float64 `json:"windSpeed"`
	}
)

func (e *lapEntry) toModel(year, round int) (model.LapRecord, error) {
	if e.Driver == "" {
		return model.LapRecord{}, fmt.Errorf("missing driver code")
	}
	if e.LapNumber < 1 {
		return model.LapRecord{}, fmt.Errorf("invalid lap number %d", e.LapNumber)
	}
	start, err := time.Parse(time.RFC3339, e.StartTime)
	if err != nil {
		return model.LapRecord{}, fmt.Errorf("start time %q: %w", e.StartTime, err)
	}
	stint := e.Stint
	if stint < 1 {
		stint = 1
	}
	return model.LapRecord{
		Year:           year,
		Round:          round,
		Driver:         e.Driver,
		DriverNumber:   e.DriverNumber,
		Team:           e.Team,
		LapNumber:      e.LapNumber,
		LapTimeSeconds: e.LapTime,
		Sector1Seconds: e.Sector1,
		Sector2Seconds: e.Sector2,
		Sector3Seconds: e.Sector3,
		Compound:       model.ParseCompound(e.Compound),
		TyreLife:       e.TyreLife,
		Stint:          stint,
		FreshTyre:      e.FreshTyre,
		TrackStatus:    e.TrackStatus,
		IsPersonalBest: e.IsPersonalBest,
		IsAccurate:     e.IsAccurate,
		LapStartTime:   start,
	}, nil
}

func (e *weatherEntry) toModel() (model.WeatherSample, error) {
	ts, err := time.Parse(time.RFC3339, e.Time)
	if err != nil {
		return model.WeatherSample{}, fmt.Errorf("weather time %q: %w", e.Time, err)
	}
	return model.WeatherSample{
		Time:      ts,
		AirTemp:   e.AirTemp,
		TrackTemp: e.TrackTemp,
		Humidity:  e.Humidity,
		Rainfall:  e.Rainfall,
		WindSpeed: e.WindSpeed,
	}, nil
}
