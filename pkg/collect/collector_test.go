package collect

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/interchange"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/provider"
)

type fakeSeasons struct {
	schedule    []model.RaceDescriptor
	scheduleErr error
	pitStopsErr error
}

func (f *fakeSeasons) Schedule(_ context.Context, _ int) (
	[]model.RaceDescriptor, error,
) {
	return f.schedule, f.scheduleErr
}

func (f *fakeSeasons) PitStops(_ context.Context, _, round int) (
	[]model.PitStop, error,
) {
	if f.pitStopsErr != nil {
		return nil, f.pitStopsErr
	}
	return []model.PitStop{
		{Year: 2024, Round: round, Driver: "VER", Lap: 12, StopNumber: 1, DurationSeconds: 21.9},
	}, nil
}

func (f *fakeSeasons) Results(_ context.Context, _, round int) (
	[]model.RaceResult, error,
) {
	return []model.RaceResult{
		{Year: 2024, Round: round, Position: 1, DriverCode: "VER"},
	}, nil
}

type fakeSessions struct {
	err    error
	called int
}

func (f *fakeSessions) RaceLaps(_ context.Context, year, round int) (
	[]model.LapRecord, []model.WeatherSample, error,
) {
	f.called++
	if f.err != nil {
		return nil, nil, f.err
	}
	start, _ := time.Parse(time.RFC3339, "2024-03-02T15:03:00Z")
	laps := make([]model.LapRecord, 0, 3)
	for lap := 1; lap <= 3; lap++ {
		lapTime := 91.0 + 0.3*float64(lap)
		life := lap
		laps = append(laps, model.LapRecord{
			Year: year, Round: round, Driver: "VER", Team: "Red Bull Racing",
			LapNumber: lap, LapTimeSeconds: &lapTime,
			Compound: model.CompoundMedium, TyreLife: &life, Stint: 1,
			LapStartTime: start.Add(time.Duration(lap) * 92 * time.Second),
		})
	}
	series := []model.WeatherSample{
		{Time: start, AirTemp: 22, TrackTemp: 31, Humidity: 48, WindSpeed: 1.4},
	}
	return laps, series, nil
}

func testSchedule() []model.RaceDescriptor {
	return []model.RaceDescriptor{
		{Round: 1, RaceName: "Bahrain Grand Prix",
			CircuitName: "Bahrain International Circuit", Country: "Bahrain"},
		{Round: 2, RaceName: "Saudi Arabian Grand Prix",
			CircuitName: "Jeddah Corniche Circuit", Country: "Saudi Arabia"},
	}
}

func TestCollectSeason(t *testing.T) {
	dir := t.TempDir()
	c := NewCollector(
		&fakeSeasons{schedule: testSchedule()},
		&fakeSessions{},
		WithOutputDir(dir),
		WithRacePause(time.Millisecond),
	)

	stats, err := c.CollectSeason(context.Background(), 2024)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Races)
	assert.Equal(t, 6, stats.Laps)
	assert.Equal(t, 1, stats.Drivers)
	assert.Equal(t, 2, stats.PitStops)
	assert.Equal(t, 2, stats.Results)
	assert.Equal(t, 0, stats.ProviderFailures)

	f, err := os.Open(stats.LapFile)
	require.NoError(t, err)
	defer f.Close()
	laps, malformed, err := interchange.ReadLaps(f)
	require.NoError(t, err)
	assert.Equal(t, 0, malformed)
	require.Len(t, laps, 6)
	// descriptor data is attached to every lap
	assert.Equal(t, "Bahrain International Circuit", laps[0].CircuitName)
	assert.Equal(t, "Bahrain", laps[0].Country)
	// degradation metrics travel with the file
	assert.InDelta(t, 0.3, laps[0].Metrics.DegradationRate, 0.001)
	// every lap gets the single weather sample of the session
	assert.NotNil(t, laps[0].Weather)
}

func TestCollectSeasonMaxRaces(t *testing.T) {
	sessions := &fakeSessions{}
	c := NewCollector(
		&fakeSeasons{schedule: testSchedule()},
		sessions,
		WithOutputDir(t.TempDir()),
		WithRacePause(time.Millisecond),
		WithMaxRaces(1),
	)

	stats, err := c.CollectSeason(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Races)
	assert.Equal(t, 1, sessions.called)
}

func TestCollectSeasonLapProviderDown(t *testing.T) {
	dir := t.TempDir()
	c := NewCollector(
		&fakeSeasons{schedule: testSchedule()},
		&fakeSessions{err: &provider.Error{URL: "http://laps", StatusCode: 503}},
		WithOutputDir(dir),
		WithRacePause(time.Millisecond),
	)

	stats, err := c.CollectSeason(context.Background(), 2024)
	require.NoError(t, err)
	// laps degrade to empty but pit stops still arrive
	assert.Equal(t, 0, stats.Laps)
	assert.Equal(t, 2, stats.PitStops)
	assert.Equal(t, 2, stats.ProviderFailures)
	assert.Empty(t, stats.LapFile)
	assert.NotEmpty(t, stats.PitFile)
}

func TestCollectSeasonScheduleDown(t *testing.T) {
	c := NewCollector(
		&fakeSeasons{
			scheduleErr: &provider.Error{URL: "http://schedule", StatusCode: 500},
		},
		&fakeSessions{},
		WithOutputDir(t.TempDir()),
	)

	_, err := c.CollectSeason(context.Background(), 2024)
	require.Error(t, err)
}

func TestCollectSeasonPitStopsDown(t *testing.T) {
	dir := t.TempDir()
	c := NewCollector(
		&fakeSeasons{
			schedule:    testSchedule(),
			pitStopsErr: &provider.Error{URL: "http://pits", StatusCode: 429},
		},
		&fakeSessions{},
		WithOutputDir(dir),
		WithRacePause(time.Millisecond),
	)

	stats, err := c.CollectSeason(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Laps)
	assert.Equal(t, 0, stats.PitStops)
	assert.Equal(t, 2, stats.ProviderFailures)
	assert.Empty(t, stats.PitFile)

	entries, err := filepath.Glob(filepath.Join(dir, interchange.LapFilePattern))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
