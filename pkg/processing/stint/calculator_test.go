package stint

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

//nolint:unparam // year fixed in test data
func testLap(driver string, stintNum, lapNum int, lapTime *float64, life *int,
) model.LapRecord {
	return model.LapRecord{
		Year:           2023,
		Round:          1,
		Driver:         driver,
		Stint:          stintNum,
		LapNumber:      lapNum,
		LapTimeSeconds: lapTime,
		TyreLife:       life,
	}
}

func TestCompute_BaselineIsFirstLapNotFastest(t *testing.T) {
	laps := []model.LapRecord{
		testLap("VER", 1, 1, fptr(92.0), iptr(1)),
		testLap("VER", 1, 2, fptr(90.0), iptr(2)), // faster than lap 1
		testLap("VER", 1, 3, fptr(91.0), iptr(3)),
	}
	got := Compute(laps)
	for i := range got {
		assert.Equal(t, 92.0, *got[i].Metrics.StintFirstLapTime)
	}
}

func TestCompute_SortsOutOfOrderLaps(t *testing.T) {
	laps := []model.LapRecord{
		testLap("VER", 1, 3, fptr(91.0), iptr(3)),
		testLap("VER", 1, 1, fptr(92.0), iptr(1)),
		testLap("VER", 1, 2, fptr(90.0), iptr(2)),
	}
	got := Compute(laps)
	assert.Equal(t, 1, got[0].LapNumber)
	assert.Equal(t, 92.0, *got[0].Metrics.StintFirstLapTime)
	assert.Equal(t, 0.0, *got[0].Metrics.TimeDeltaFromFirst)
	assert.Equal(t, -2.0, *got[1].Metrics.TimeDeltaFromFirst)
	assert.Equal(t, -1.0, *got[2].Metrics.TimeDeltaFromFirst)
}

func TestCompute_RollingAverageShrinksAtStart(t *testing.T) {
	laps := []model.LapRecord{
		testLap("VER", 1, 1, fptr(90.0), iptr(1)),
		testLap("VER", 1, 2, fptr(91.0), iptr(2)),
		testLap("VER", 1, 3, fptr(89.0), iptr(3)),
	}
	got := Compute(laps)
	want := []float64{90.0, 90.5, 90.0}
	for i := range got {
		assert.InDelta(t, want[i], *got[i].Metrics.LapTimeRollingAvg, 1e-9)
	}
}

func TestCompute_RollingAverageIgnoresAbsentLapTimes(t *testing.T) {
	laps := []model.LapRecord{
		testLap("VER", 1, 1, fptr(90.0), iptr(1)),
		testLap("VER", 1, 2, nil, iptr(2)),
		testLap("VER", 1, 3, fptr(92.0), iptr(3)),
	}
	got := Compute(laps)
	// lap 3 window is {90, absent, 92}
	assert.InDelta(t, 91.0, *got[2].Metrics.LapTimeRollingAvg, 1e-9)
	// absent lap propagates absence for its delta
	assert.Nil(t, got[1].Metrics.TimeDeltaFromFirst)
	// but still carries the stint baseline and rolling avg of the valid laps
	assert.Equal(t, 90.0, *got[1].Metrics.StintFirstLapTime)
	assert.InDelta(t, 90.0, *got[1].Metrics.LapTimeRollingAvg, 1e-9)
}

func TestCompute_DegradationRate(t *testing.T) {
	tests := []struct {
		name        string
		laps        []model.LapRecord
		wantRate    float64
		wantSamples int
	}{
		{
			name: "two points slope one",
			laps: []model.LapRecord{
				testLap("VER", 1, 1, fptr(90.0), iptr(1)),
				testLap("VER", 1, 2, fptr(91.0), iptr(2)),
			},
			wantRate:    1.0,
			wantSamples: 2,
		},
		{
			name: "single valid pair yields neutral zero",
			laps: []model.LapRecord{
				testLap("VER", 1, 1, fptr(90.0), iptr(1)),
				testLap("VER", 1, 2, nil, iptr(2)),
			},
			wantRate:    0,
			wantSamples: 1,
		},
		{
			name: "missing tyre life excluded from fit",
			laps: []model.LapRecord{
				testLap("VER", 1, 1, fptr(90.0), iptr(1)),
				testLap("VER", 1, 2, fptr(95.0), nil),
				testLap("VER", 1, 3, fptr(92.0), iptr(3)),
			},
			wantRate:    1.0,
			wantSamples: 2,
		},
		{
			name: "non positive lap time excluded from fit",
			laps: []model.LapRecord{
				testLap("VER", 1, 1, fptr(90.0), iptr(1)),
				testLap("VER", 1, 2, fptr(-1.0), iptr(2)),
				testLap("VER", 1, 3, fptr(92.0), iptr(3)),
			},
			wantRate:    1.0,
			wantSamples: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.laps)
			for i := range got {
				assert.InDelta(t, tt.wantRate, got[i].Metrics.DegradationRate, 1e-9)
				assert.Equal(t, tt.wantSamples, got[i].Metrics.DegradationSamples)
			}
		})
	}
}

func TestCompute_StintsAreIndependent(t *testing.T) {
	laps := []model.LapRecord{
		testLap("VER", 1, 1, fptr(90.0), iptr(1)),
		testLap("VER", 1, 2, fptr(91.0), iptr(2)),
		testLap("VER", 2, 3, fptr(88.0), iptr(1)),
		testLap("HAM", 1, 1, fptr(93.0), iptr(1)),
	}
	got := Compute(laps)

	byKey := make(map[model.StintKey][]model.LapRecord)
	for i := range got {
		byKey[got[i].Key()] = append(byKey[got[i].Key()], got[i])
	}
	verS2 := byKey[model.StintKey{Year: 2023, Round: 1, Driver: "VER", Stint: 2}]
	assert.Len(t, verS2, 1)
	assert.Equal(t, 88.0, *verS2[0].Metrics.StintFirstLapTime)
	assert.Equal(t, 0.0, verS2[0].Metrics.DegradationRate)
	assert.Equal(t, 1, verS2[0].Metrics.DegradationSamples)

	hamS1 := byKey[model.StintKey{Year: 2023, Round: 1, Driver: "HAM", Stint: 1}]
	assert.Equal(t, 93.0, *hamS1[0].Metrics.StintFirstLapTime)
}

func TestCompute_IsPure(t *testing.T) {
	laps := []model.LapRecord{
		testLap("VER", 1, 2, fptr(91.0), iptr(2)),
		testLap("VER", 1, 1, fptr(90.0), iptr(1)),
	}
	first := Compute(laps)
	second := Compute(laps)
	assert.Empty(t, cmp.Diff(first, second))
	// input order untouched
	assert.Equal(t, 2, laps[0].LapNumber)
	assert.Nil(t, laps[0].Metrics.StintFirstLapTime)
}

func TestSummarize(t *testing.T) {
	laps := []model.LapRecord{
		testLap("VER", 1, 1, fptr(90.0), iptr(1)),
		testLap("VER", 1, 2, fptr(91.0), iptr(2)),
		testLap("VER", 1, 3, nil, iptr(3)),
	}
	got := Summarize(laps)
	assert.Len(t, got, 1)
	s := got[0]
	assert.Equal(t, 3, s.LapCount)
	assert.Equal(t, 2, s.ValidPairs)
	assert.Equal(t, 90.0, *s.Baseline)
	assert.InDelta(t, 90.5, *s.AvgLapTime, 1e-9)
	assert.InDelta(t, 1.0, s.DegradationRate, 1e-9)
}
