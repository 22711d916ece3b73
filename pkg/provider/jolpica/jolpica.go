// Package jolpica implements the season results provider on top of the
// Jolpica API (Ergast successor).
package jolpica

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/f1stint/f1-tiredata-manager-go/log"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/provider"
)

const (
	DefaultBaseURL = "https://api.jolpi.ca/ergast/f1"
	DefaultTimeout = 10 * time.Second
	DefaultDelay   = 500 * time.Millisecond
)

type (
	Client struct {
		http     *resty.Client
		throttle *provider.Throttle
		l        *log.Logger
	}
	Option func(c *config)

	config struct {
		baseURL string
		timeout time.Duration
		delay   time.Duration
		clock   clockwork.Clock
	}
)

func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *config) { c.timeout = timeout }
}

// WithDelay sets the minimum delay between API calls.
func WithDelay(delay time.Duration) Option {
	return func(c *config) { c.delay = delay }
}

// WithClock injects the clock used by the throttle.
func WithClock(clock clockwork.Clock) Option {
	return func(c *config) { c.clock = clock }
}

func NewClient(opts ...Option) *Client {
	cfg := &config{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		delay:   DefaultDelay,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{
		http:     resty.New().SetBaseURL(cfg.baseURL).SetTimeout(cfg.timeout),
		throttle: provider.NewThrottle(cfg.delay, cfg.clock),
		l:        log.Default().Named("provider.jolpica"),
	}
}

var _ provider.SeasonResults = (*Client)(nil)

// Schedule returns the race descriptors of a season ordered by round.
func (c *Client) Schedule(ctx context.Context, year int) (
	[]model.RaceDescriptor, error,
) {
	body, err := c.get(ctx, fmt.Sprintf("/%d.json", year))
	if err != nil {
		return nil, err
	}
	var races []scheduleRace
	if err := extractRaces(body, &races); err != nil {
		return nil, err
	}

	ret := make([]model.RaceDescriptor, 0, len(races))
	for i := range races {
		item, err := races[i].toModel()
		if err != nil {
			c.l.Warn("skipping malformed schedule entry",
				log.Int("year", year), log.ErrorField(err))
			continue
		}
		ret = append(ret, item)
	}
	c.l.Info("fetched season schedule",
		log.Int("year", year), log.Int("races", len(ret)))
	return ret, nil
}

// PitStops returns the pit stop events of one race.
func (c *Client) PitStops(ctx context.Context, year, round int) (
	[]model.PitStop, error,
) {
	body, err := c.get(ctx, fmt.Sprintf("/%d/%d/pitstops.json", year, round))
	if err != nil {
		return nil, err
	}
	var races []pitStopRace
	if err := extractRaces(body, &races); err != nil {
		return nil, err
	}
	if len(races) == 0 {
		return nil, nil
	}

	ret := make([]model.PitStop, 0, len(races[0].PitStops))
	for i := range races[0].PitStops {
		item, err := races[0].PitStops[i].toModel(year, round)
		if err != nil {
			c.l.Warn("skipping malformed pit stop entry",
				log.Int("year", year), log.Int("round", round),
				log.ErrorField(err))
			continue
		}
		ret = append(ret, item)
	}
	return ret, nil
}

// Results returns the classified race result of one race.
func (c *Client) Results(ctx context.Context, year, round int) (
	[]model.RaceResult, error,
) {
	body, err := c.get(ctx, fmt.Sprintf("/%d/%d/results.json", year, round))
	if err != nil {
		return nil, err
	}
	var races []resultRace
	if err := extractRaces(body, &races); err != nil {
		return nil, err
	}
	if len(races) == 0 {
		return nil, nil
	}

	ret := make([]model.RaceResult, 0, len(races[0].Results))
	for i := range races[0].Results {
		item, err := races[0].Results[i].toModel(year, round)
		if err != nil {
			c.l.Warn("skipping malformed result entry",
				log.Int("year", year), log.Int("round", round),
				log.ErrorField(err))
			continue
		}
		ret = append(ret, item)
	}
	return ret, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
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
	return resp.Body(), nil
}

// extractRaces pulls MRData.RaceTable.Races out of a Jolpica payload and
// unmarshals it into target.
func extractRaces(body []byte, target any) error {
	obj, err := oj.Parse(body)
	if err != nil {
		return err
	}
	path := jp.C("MRData").C("RaceTable").C("Races")
	res := path.Get(obj)
	if len(res) == 0 {
		return nil
	}
	return oj.Unmarshal([]byte(oj.JSON(res[0])), target)
}

// wire types: Jolpica delivers all numbers as strings

type (
	scheduleRace struct {
		Round    string `json:"round"`
		RaceName string `json:"raceName"`
		Date     string `json:"date"`
		Circuit  struct {
			CircuitID   string `json:"circuitId"`
			CircuitName string `json:"circuitName"`
			Location    struct {
				Country string `json:"country"`
			} `json:"Location"`
		} `json:"Circuit"`
	}

	pitStopRace struct {
		PitStops []pitStopEntry `json:"PitStops"`
	}
	pitStopEntry struct {
		DriverID string `json:"driverId"`
		Lap      string `json:"lap"`
		Stop     string `json:"stop"`
		Duration string `json:"duration"`
		Time     string `json:"time"`
	}

	resultRace struct {
		Results []resultEntry `json:"Results"`
	}
	resultEntry struct {
		Position string `json:"position"`
		Grid     string `json:"grid"`
		Laps     string `json:"laps"`
		Status   string `json:"status"`
		Points   string `json:"points"`
		Driver   struct {
			DriverID        string `json:"driverId"`
			Code            string `json:"code"`
			PermanentNumber string `json:"permanentNumber"`
		} `json:"Driver"`
		Constructor struct {
			ConstructorID string `json:"constructorId"`
		} `json:"Constructor"`
	}
)

func (r *scheduleRace) toModel() (model.RaceDescriptor, error) {
	round, err := strconv.Atoi(r.Round)
	if err != nil {
		return model.RaceDescriptor{}, fmt.Errorf("round %q: %w", r.Round, err)
	}
	date, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return model.RaceDescriptor{}, fmt.Errorf("date %q: %w", r.Date, err)
	}
	return model.RaceDescriptor{
		Round:       round,
		RaceName:    r.RaceName,
		CircuitID:   r.Circuit.CircuitID,
		CircuitName: r.Circuit.CircuitName,
		Country:     r.Circuit.Location.Country,
		Date:        date,
	}, nil
}

func (p *pitStopEntry) toModel(year, round int) (model.PitStop, error) {
	lap, err := strconv.Atoi(p.Lap)
	if err != nil {
		return model.PitStop{}, fmt.Errorf("lap %q: %w", p.Lap, err)
	}
	stop, err := strconv.Atoi(p.Stop)
	if err != nil {
		return model.PitStop{}, fmt.Errorf("stop %q: %w", p.Stop, err)
	}
	duration, err := strconv.ParseFloat(p.Duration, 64)
	if err != nil {
		return model.PitStop{}, fmt.Errorf("duration %q: %w", p.Duration, err)
	}
	return model.PitStop{
		Year:            year,
		Round:           round,
		Driver:          p.DriverID,
		Lap:             lap,
		StopNumber:      stop,
		DurationSeconds: duration,
		TimeOfDay:       p.Time,
	}, nil
}

func (r *resultEntry) toModel(year, round int) (model.RaceResult, error) {
	position, err := strconv.Atoi(r.Position)
	if err != nil {
		return model.RaceResult{}, fmt.Errorf("position %q: %w", r.Position, err)
	}
	grid, err := strconv.Atoi(r.Grid)
	if err != nil {
		return model.RaceResult{}, fmt.Errorf("grid %q: %w", r.Grid, err)
	}
	laps, err := strconv.Atoi(r.Laps)
	if err != nil {
		return model.RaceResult{}, fmt.Errorf("laps %q: %w", r.Laps, err)
	}
	points, err := strconv.ParseFloat(r.Points, 64)
	if err != nil {
		return model.RaceResult{}, fmt.Errorf("points %q: %w", r.Points, err)
	}
	ret := model.RaceResult{
		Year:        year,
		Round:       round,
		Position:    position,
		Driver:      r.Driver.DriverID,
		DriverCode:  r.Driver.Code,
		Constructor: r.Constructor.ConstructorID,
		Grid:        grid,
		Laps:        laps,
		Status:      r.Status,
		Points:      points,
	}
	if num, err := strconv.Atoi(r.Driver.PermanentNumber); err == nil {
		ret.DriverNumber = &num
	}
	return ret, nil
}
