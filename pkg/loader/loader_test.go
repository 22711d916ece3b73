//nolint:funlen,errcheck // ok for this test code
package loader

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/laptime"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/pitstop"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/stintmetric"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/weather"
	"github.com/f1stint/f1-tiredata-manager-go/testsupport/basedata"
	"github.com/f1stint/f1-tiredata-manager-go/testsupport/testdb"
)

func TestLoadLaps(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	b := NewBatchLoader(pool)

	laps := basedata.SampleLaps()
	counts, err := b.LoadLaps(ctx, laps)
	assert.NilError(t, err)

	// 12 rows attempted, 1 without a lap time
	assert.Equal(t, 12, counts.Attempted)
	assert.Equal(t, 11, counts.Persisted)
	assert.Equal(t, 1, counts.Skipped)

	stored, err := laptime.Count(ctx, pool)
	assert.NilError(t, err)
	assert.Equal(t, 11, stored)
}

func TestLoadLapsIdempotent(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	b := NewBatchLoader(pool)

	laps := basedata.SampleLaps()
	_, err := b.LoadLaps(ctx, laps)
	assert.NilError(t, err)

	counts, err := b.LoadLaps(ctx, laps)
	assert.NilError(t, err)
	// every valid row hits the conflict path on the second run
	assert.Equal(t, 0, counts.Persisted)

	stored, err := laptime.Count(ctx, pool)
	assert.NilError(t, err)
	assert.Equal(t, 11, stored)
}

func TestLoadLapsSmallBatches(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	b := NewBatchLoader(pool, WithBatchSize(4))

	counts, err := b.LoadLaps(ctx, basedata.SampleLaps())
	assert.NilError(t, err)
	assert.Equal(t, 11, counts.Persisted)
}

func TestLoadLapsWeather(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	b := NewBatchLoader(pool)

	laps := basedata.SampleLaps()
	sample := basedata.SampleWeather(laps[0].LapStartTime)
	laps[0].Weather = &sample

	counts, err := b.LoadLaps(ctx, laps)
	assert.NilError(t, err)
	assert.Equal(t, 1, counts.Weather)

	stored, err := weather.Count(ctx, pool)
	assert.NilError(t, err)
	assert.Equal(t, 1, stored)
}

func TestLoadPitStops(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	b := NewBatchLoader(pool)

	_, err := b.LoadLaps(ctx, basedata.SampleLaps())
	assert.NilError(t, err)

	stops := basedata.SamplePitStops()
	counts, err := b.LoadPitStops(ctx, stops)
	assert.NilError(t, err)
	assert.Equal(t, 2, counts.Persisted)

	stored, err := pitstop.Count(ctx, pool)
	assert.NilError(t, err)
	assert.Equal(t, 2, stored)
}

func TestLoadPitStopsUnknownDriver(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	b := NewBatchLoader(pool)

	_, err := b.LoadLaps(ctx, basedata.SampleLaps())
	assert.NilError(t, err)

	stops := basedata.SamplePitStops()
	stops[0].Driver = "XXX"
	counts, err := b.LoadPitStops(ctx, stops)
	assert.NilError(t, err)
	assert.Equal(t, 1, counts.Persisted)
	assert.Equal(t, 1, counts.Skipped)
}

func TestRecomputeStintMetrics(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	b := NewBatchLoader(pool)

	_, err := b.LoadLaps(ctx, basedata.SampleLaps())
	assert.NilError(t, err)

	recomputed, err := b.RecomputeStintMetrics(ctx)
	assert.NilError(t, err)
	// one stint per driver per race
	assert.Equal(t, 4, recomputed)

	refs, err := laptime.LoadStintRefs(ctx, pool)
	assert.NilError(t, err)
	item, err := stintmetric.LoadByStint(
		ctx, pool, refs[0].RaceID, refs[0].DriverID, refs[0].StintNumber)
	assert.NilError(t, err)
	assert.Equal(t, 3, item.LapCount)
	assert.Equal(t, 3, item.ValidPairs)
	assert.Assert(t, item.BaselineLapTime != nil)
	assert.Equal(t, 92.4, *item.BaselineLapTime)
	// lap time grows 0.4s per lap of tyre life
	assert.Assert(t, item.DegradationRate > 0.39 && item.DegradationRate < 0.41)

	// a second pass yields the same stored values
	recomputed, err = b.RecomputeStintMetrics(ctx)
	assert.NilError(t, err)
	assert.Equal(t, 4, recomputed)
	again, err := stintmetric.LoadByStint(
		ctx, pool, refs[0].RaceID, refs[0].DriverID, refs[0].StintNumber)
	assert.NilError(t, err)
	assert.Equal(t, *item.BaselineLapTime, *again.BaselineLapTime)
	assert.Equal(t, item.DegradationRate, again.DegradationRate)

	stored, err := stintmetric.Count(ctx, pool)
	assert.NilError(t, err)
	assert.Equal(t, 4, stored)
}
