// Package collect orchestrates a season collection run: schedule lookup,
// per-race lap and weather retrieval, degradation metrics and the
// interchange file output.
package collect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"

	"github.com/f1stint/f1-tiredata-manager-go/log"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/interchange"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/observability"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/processing/stint"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/processing/weather"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/provider"
)

// DefaultRacePause spaces out whole-race retrievals to stay polite to the
// upstream services.
const DefaultRacePause = 2 * time.Second

type (
	Collector struct {
		seasons   provider.SeasonResults
		sessions  provider.SessionLaps
		clock     clockwork.Clock
		racePause time.Duration
		outputDir string
		maxRaces  int
		runID     string
		l         *log.Logger
	}

	Option func(c *Collector)

	// SeasonStats summarizes one season run for the closing log line.
	SeasonStats struct {
		Year             int
		Races            int
		Laps             int
		Drivers          int
		WeatherSamples   int
		PitStops         int
		Results          int
		ProviderFailures int
		LapFile          string
		PitFile          string
	}
)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Collector) { c.clock = clock }
}

func WithRacePause(pause time.Duration) Option {
	return func(c *Collector) { c.racePause = pause }
}

func WithOutputDir(dir string) Option {
	return func(c *Collector) { c.outputDir = dir }
}

// WithMaxRaces caps the number of races collected per season. 0 means all.
func WithMaxRaces(maxRaces int) Option {
	return func(c *Collector) { c.maxRaces = maxRaces }
}

func NewCollector(
	seasons provider.SeasonResults, sessions provider.SessionLaps, opts ...Option,
) *Collector {
	c := &Collector{
		seasons:   seasons,
		sessions:  sessions,
		clock:     clockwork.NewRealClock(),
		racePause: DefaultRacePause,
		outputDir: ".",
		runID:     uuid.Must(uuid.NewV4()).String()[:8],
		l:         log.Default().Named("collect"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectSeason retrieves one season and writes the interchange files.
// A failed schedule lookup aborts the season; any later provider failure
// degrades the affected scope to empty and is counted.
//
//nolint:funlen // sequential collection pipeline
func (c *Collector) CollectSeason(ctx context.Context, year int) (
	*SeasonStats, error,
) {
	schedule, err := c.seasons.Schedule(ctx, year)
	if err != nil {
		observability.ProviderFailures.Inc()
		return nil, fmt.Errorf("season %d schedule: %w", year, err)
	}
	if c.maxRaces > 0 && len(schedule) > c.maxRaces {
		schedule = schedule[:c.maxRaces]
	}
	c.l.Info("collecting season",
		log.Int("year", year), log.Int("races", len(schedule)),
		log.String("runId", c.runID))

	stats := &SeasonStats{Year: year}
	allLaps := make([]model.LapRecord, 0)
	allStops := make([]model.PitStop, 0)

	for i := range schedule {
		race := &schedule[i]
		laps, stops := c.collectRace(ctx, year, race, stats)
		allLaps = append(allLaps, laps...)
		allStops = append(allStops, stops...)
		if i < len(schedule)-1 {
			select {
			case <-c.clock.After(c.racePause):
			case <-ctx.Done():
				return stats, ctx.Err()
			}
		}
	}

	enriched := stint.Compute(allLaps)
	stats.Laps = len(enriched)
	stats.Drivers = len(lo.UniqBy(enriched, func(l model.LapRecord) string {
		return l.Driver
	}))
	stats.WeatherSamples = lo.CountBy(enriched, func(l model.LapRecord) bool {
		return l.Weather != nil
	})
	stats.PitStops = len(allStops)

	if err := c.writeFiles(year, enriched, allStops, stats); err != nil {
		return stats, err
	}
	c.l.Info("season collected",
		log.Int("year", year), log.Int("races", stats.Races),
		log.Int("laps", stats.Laps), log.Int("drivers", stats.Drivers),
		log.Int("pitStops", stats.PitStops),
		log.Int("providerFailures", stats.ProviderFailures))
	return stats, nil
}

// collectRace retrieves one race. Provider failures leave the affected
// scope empty; the run continues with the next race.
func (c *Collector) collectRace(
	ctx context.Context, year int, race *model.RaceDescriptor, stats *SeasonStats,
) (laps []model.LapRecord, stops []model.PitStop) {
	c.l.Info("collecting race",
		log.Int("year", year), log.Int("round", race.Round),
		log.String("name", race.RaceName))

	laps, series, err := c.sessions.RaceLaps(ctx, year, race.Round)
	if err != nil {
		c.degrade(err, "race laps", year, race.Round, stats)
		laps = nil
	} else {
		laps = weather.Associate(laps, series)
		for i := range laps {
			laps[i].RaceName = race.RaceName
			laps[i].CircuitName = race.CircuitName
			laps[i].Country = race.Country
		}
		stats.Races++
	}

	stops, err = c.seasons.PitStops(ctx, year, race.Round)
	if err != nil {
		c.degrade(err, "pit stops", year, race.Round, stats)
		stops = nil
	}

	results, err := c.seasons.Results(ctx, year, race.Round)
	if err != nil {
		c.degrade(err, "results", year, race.Round, stats)
	} else {
		stats.Results += len(results)
	}
	return laps, stops
}

func (c *Collector) degrade(
	err error, what string, year, round int, stats *SeasonStats,
) {
	var pErr *provider.Error
	if !errors.As(err, &pErr) {
		c.l.Warn("unexpected error, treating scope as empty",
			log.String("scope", what), log.ErrorField(err))
	} else {
		c.l.Warn("provider failed, treating scope as empty",
			log.String("scope", what), log.Int("year", year),
			log.Int("round", round), log.ErrorField(err))
	}
	stats.ProviderFailures++
	observability.ProviderFailures.Inc()
}

func (c *Collector) writeFiles(
	year int, laps []model.LapRecord, stops []model.PitStop, stats *SeasonStats,
) error {
	if len(laps) == 0 && len(stops) == 0 {
		c.l.Warn("nothing collected, no files written", log.Int("year", year))
		return nil
	}
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return err
	}
	now := c.clock.Now()

	if len(laps) > 0 {
		name := filepath.Join(c.outputDir, interchange.LapFileName(year, c.runID, now))
		if err := writeTo(name, func(f *os.File) error {
			return interchange.WriteLaps(f, laps)
		}); err != nil {
			return err
		}
		stats.LapFile = name
	}
	if len(stops) > 0 {
		name := filepath.Join(c.outputDir, interchange.PitFileName(year, c.runID, now))
		if err := writeTo(name, func(f *os.File) error {
			return interchange.WritePitStops(f, stops)
		}); err != nil {
			return err
		}
		stats.PitFile = name
	}
	return nil
}

func writeTo(name string, write func(f *os.File) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
