// Package weather associates a session weather time series with lap
// records. The association is a pure join: for each lap start time the
// sample with the minimum absolute time difference wins.
package weather

import (
	"slices"
	"time"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
)

// Associate returns a copy of laps with the nearest weather sample
// attached to each lap. An empty series returns the laps unchanged. The
// input slices are not modified.
func Associate(
	laps []model.LapRecord,
	series []model.WeatherSample,
) []model.LapRecord {
	ret := make([]model.LapRecord, len(laps))
	copy(ret, laps)
	if len(series) == 0 {
		return ret
	}

	sorted := make([]model.WeatherSample, len(series))
	copy(sorted, series)
	slices.SortFunc(sorted, func(a, b model.WeatherSample) int {
		return a.Time.Compare(b.Time)
	})

	// process laps in start-time order so the series cursor only moves
	// forward (sort-merge join)
	order := make([]int, len(ret))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		return ret[a].LapStartTime.Compare(ret[b].LapStartTime)
	})

	cursor := 0
	for _, idx := range order {
		ts := ret[idx].LapStartTime
		for cursor+1 < len(sorted) &&
			absDiff(sorted[cursor+1].Time, ts) <= absDiff(sorted[cursor].Time, ts) {
			cursor++
		}
		sample := sorted[cursor]
		ret[idx].Weather = &sample
	}
	return ret
}

func absDiff(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
