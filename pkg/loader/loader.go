// Package loader persists interchange files into the relational store:
// entity resolution for the dimension tables, batched idempotent inserts
// for the fact tables and the stint-metrics post-pass.
package loader

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/f1stint/f1-tiredata-manager-go/log"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/interchange"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/observability"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/processing/stint"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/laptime"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/pitstop"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/stintmetric"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/weather"
)

// DefaultBatchSize bounds memory and transaction size per fact batch.
const DefaultBatchSize = 1000

type (
	// Counts is the outcome of loading one file. Attempted vs Persisted
	// makes silent data loss observable.
	Counts struct {
		Attempted int
		Persisted int
		Skipped   int
		Weather   int
	}

	BatchLoader struct {
		pool      *pgxpool.Pool
		batchSize int
		l         *log.Logger
	}

	Option func(b *BatchLoader)
)

func WithBatchSize(size int) Option {
	return func(b *BatchLoader) { b.batchSize = size }
}

func NewBatchLoader(pool *pgxpool.Pool, opts ...Option) *BatchLoader {
	b := &BatchLoader{
		pool:      pool,
		batchSize: DefaultBatchSize,
		l:         log.Default().Named("loader"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// LoadLapFile loads one interchange lap file. Structurally malformed rows
// count as skipped; a failed batch write aborts this file only.
func (b *BatchLoader) LoadLapFile(ctx context.Context, path string) (Counts, error) {
	f, err := os.Open(path)
	if err != nil {
		return Counts{}, err
	}
	defer f.Close()

	laps, malformed, err := interchange.ReadLaps(f)
	if err != nil {
		return Counts{}, err
	}
	b.l.Info("read lap file",
		log.String("file", path),
		log.Int("rows", len(laps)+malformed), log.Int("malformed", malformed))

	counts, err := b.LoadLaps(ctx, laps)
	counts.Attempted += malformed
	counts.Skipped += malformed
	return counts, err
}

// LoadLaps validates, resolves and persists lap records in fixed-size
// batches. Each batch commits in one transaction; row-level skip
// decisions happen before the transaction.
//
//nolint:funlen,gocognit // sequential load pipeline
func (b *BatchLoader) LoadLaps(
	ctx context.Context, laps []model.LapRecord,
) (Counts, error) {
	counts := Counts{Attempted: len(laps)}
	resolver := NewEntityResolver(b.pool)

	lapRows := make([]model.DbLapTime, 0, b.batchSize)
	weatherRows := make([]model.DbWeather, 0, b.batchSize)

	flush := func() error {
		if len(lapRows) == 0 && len(weatherRows) == 0 {
			return nil
		}
		var inserted, wInserted int
		err := pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
			var err error
			if inserted, err = laptime.InsertBatch(ctx, tx, lapRows); err != nil {
				return err
			}
			wInserted, err = weather.InsertBatch(ctx, tx, weatherRows)
			return err
		})
		if err != nil {
			return &PersistenceError{Op: "lap batch", Err: err}
		}
		counts.Persisted += inserted
		counts.Weather += wInserted
		observability.LapsPersisted.Add(float64(inserted))
		observability.WeatherPersisted.Add(float64(wInserted))
		b.l.Info("batch committed",
			log.Int("laps", len(lapRows)), log.Int("weather", len(weatherRows)))
		lapRows = lapRows[:0]
		weatherRows = weatherRows[:0]
		return nil
	}

	for i := range laps {
		lap := &laps[i]
		row, weatherRow, err := b.buildRows(ctx, resolver, lap)
		if err != nil {
			if recoverable(err) {
				counts.Skipped++
				observability.LapsSkipped.Inc()
				b.l.Warn("skipping lap row",
					log.Int("year", lap.Year), log.Int("round", lap.Round),
					log.String("driver", lap.Driver),
					log.Int("lap", lap.LapNumber), log.ErrorField(err))
				continue
			}
			return counts, err
		}
		lapRows = append(lapRows, *row)
		if weatherRow != nil {
			weatherRows = append(weatherRows, *weatherRow)
		}
		if len(lapRows) >= b.batchSize {
			if err := flush(); err != nil {
				return counts, err
			}
		}
	}
	if err := flush(); err != nil {
		return counts, err
	}
	return counts, nil
}

// buildRows turns one lap record into fact rows, resolving all dimension
// keys. Validation and resolution failures are recoverable; the caller
// skips the row.
func (b *BatchLoader) buildRows(
	ctx context.Context, resolver *EntityResolver, lap *model.LapRecord,
) (*model.DbLapTime, *model.DbWeather, error) {
	if !lap.HasLapTime() {
		return nil, nil, &ValidationError{
			Field: "lap_time_seconds", Reason: "absent or not positive",
		}
	}
	if lap.LapNumber < 1 {
		return nil, nil, &ValidationError{
			Field: "lap_number", Reason: "must be >= 1",
		}
	}

	circuitID, err := resolver.ResolveCircuit(ctx, lap.CircuitName, lap.Country)
	if err != nil {
		return nil, nil, err
	}
	// race date is not carried in the interchange file
	raceID, err := resolver.ResolveRace(
		ctx, lap.Year, lap.Round, lap.RaceName, circuitID, time.Now())
	if err != nil {
		return nil, nil, err
	}
	teamID, err := resolver.ResolveTeam(ctx, lap.Team, lap.Year)
	if err != nil {
		return nil, nil, err
	}
	driverID, err := resolver.ResolveDriver(
		ctx, lap.Driver, lap.DriverNumber, lap.Year, teamID)
	if err != nil {
		return nil, nil, err
	}
	compoundID, err := resolver.CompoundID(ctx, lap.Compound)
	if err != nil {
		return nil, nil, err
	}

	row := &model.DbLapTime{
		RaceID:         raceID,
		DriverID:       driverID,
		LapNumber:      lap.LapNumber,
		LapTimeSeconds: *lap.LapTimeSeconds,
		Sector1Seconds: lap.Sector1Seconds,
		Sector2Seconds: lap.Sector2Seconds,
		Sector3Seconds: lap.Sector3Seconds,
		CompoundID:     compoundID,
		TyreLife:       lap.TyreLife,
		StintNumber:    lap.Stint,
		FreshTyre:      lap.FreshTyre,
		TrackStatus:    lap.TrackStatus,
		IsPersonalBest: lap.IsPersonalBest,
		IsAccurate:     lap.IsAccurate,
	}
	var weatherRow *model.DbWeather
	if lap.Weather != nil {
		weatherRow = &model.DbWeather{
			RaceID:    raceID,
			LapNumber: lap.LapNumber,
			AirTemp:   &lap.Weather.AirTemp,
			TrackTemp: &lap.Weather.TrackTemp,
			Humidity:  &lap.Weather.Humidity,
			Rainfall:  lap.Weather.Rainfall,
			WindSpeed: &lap.Weather.WindSpeed,
		}
	}
	return row, weatherRow, nil
}

// LoadPitFile loads one interchange pit stop file. Stops referencing
// races or drivers not present in the store are skipped.
func (b *BatchLoader) LoadPitFile(ctx context.Context, path string) (Counts, error) {
	f, err := os.Open(path)
	if err != nil {
		return Counts{}, err
	}
	defer f.Close()

	stops, malformed, err := interchange.ReadPitStops(f)
	if err != nil {
		return Counts{}, err
	}
	counts, err := b.LoadPitStops(ctx, stops)
	counts.Attempted += malformed
	counts.Skipped += malformed
	return counts, err
}

// LoadPitStops persists pit stop events. Unlike laps, pit stops never
// create dimension rows: unresolved race/driver keys are skipped.
func (b *BatchLoader) LoadPitStops(
	ctx context.Context, stops []model.PitStop,
) (Counts, error) {
	counts := Counts{Attempted: len(stops)}
	resolver := newLookupResolver(b.pool)

	rows := make([]model.DbPitStop, 0, b.batchSize)
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		var inserted int
		err := pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
			var err error
			inserted, err = pitstop.InsertBatch(ctx, tx, rows)
			return err
		})
		if err != nil {
			return &PersistenceError{Op: "pit stop batch", Err: err}
		}
		counts.Persisted += inserted
		observability.PitStopsPersisted.Add(float64(inserted))
		rows = rows[:0]
		return nil
	}

	for i := range stops {
		s := &stops[i]
		raceID, driverID, err := resolver.lookup(ctx, s.Year, s.Round, s.Driver)
		if err != nil {
			if recoverable(err) {
				counts.Skipped++
				b.l.Warn("skipping pit stop row",
					log.Int("year", s.Year), log.Int("round", s.Round),
					log.String("driver", s.Driver), log.ErrorField(err))
				continue
			}
			return counts, err
		}
		rows = append(rows, model.DbPitStop{
			RaceID:          raceID,
			DriverID:        driverID,
			LapNumber:       s.Lap,
			StopNumber:      s.StopNumber,
			DurationSeconds: s.DurationSeconds,
		})
		if len(rows) >= b.batchSize {
			if err := flush(); err != nil {
				return counts, err
			}
		}
	}
	if err := flush(); err != nil {
		return counts, err
	}
	return counts, nil
}

// RecomputeStintMetrics re-runs the calculator over every stored stint
// and upserts the aggregate rows. Running it twice yields the same
// stored values.
func (b *BatchLoader) RecomputeStintMetrics(ctx context.Context) (int, error) {
	refs, err := laptime.LoadStintRefs(ctx, b.pool)
	if err != nil {
		return 0, err
	}

	recomputed := 0
	for _, ref := range refs {
		if err := b.recomputeStint(ctx, ref); err != nil {
			b.l.Warn("failed to recompute stint metrics",
				log.Int("raceId", ref.RaceID), log.Int("driverId", ref.DriverID),
				log.Int("stint", ref.StintNumber), log.ErrorField(err))
			continue
		}
		recomputed++
	}
	b.l.Info("recomputed stint metrics", log.Int("stints", recomputed))
	return recomputed, nil
}

func (b *BatchLoader) recomputeStint(
	ctx context.Context, ref laptime.StintRef,
) error {
	dbLaps, err := laptime.LoadStintLaps(ctx, b.pool, ref)
	if err != nil {
		return err
	}
	if len(dbLaps) == 0 {
		return nil
	}

	laps := make([]model.LapRecord, len(dbLaps))
	for i := range dbLaps {
		lapTime := dbLaps[i].LapTimeSeconds
		laps[i] = model.LapRecord{
			LapNumber:      dbLaps[i].LapNumber,
			LapTimeSeconds: &lapTime,
			TyreLife:       dbLaps[i].TyreLife,
			Stint:          ref.StintNumber,
		}
	}
	summaries := stint.Summarize(laps)
	if len(summaries) != 1 {
		return errors.New("stint laps did not form a single group")
	}
	s := summaries[0]
	return stintmetric.Upsert(ctx, b.pool, &model.DbStintMetric{
		RaceID:          ref.RaceID,
		DriverID:        ref.DriverID,
		StintNumber:     ref.StintNumber,
		LapCount:        s.LapCount,
		ValidPairs:      s.ValidPairs,
		BaselineLapTime: s.Baseline,
		AvgLapTime:      s.AvgLapTime,
		DegradationRate: s.DegradationRate,
	})
}

// recoverable reports whether the error only affects a single row.
func recoverable(err error) bool {
	var vErr *ValidationError
	var rErr *ResolutionError
	return errors.As(err, &vErr) || errors.As(err, &rErr)
}
