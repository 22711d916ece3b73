package stint

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
)

// RollingWindow is the trailing window size for the lap time rolling average.
const RollingWindow = 3

// Compute partitions laps into stints keyed by (year, round, driver, stint),
// orders each stint by lap number and attaches the derived degradation
// metrics to every lap. The input is not modified; the returned slice is
// ordered by (year, round, driver, stint, lap number).
func Compute(laps []model.LapRecord) []model.LapRecord {
	work := make([]model.LapRecord, len(laps))
	copy(work, laps)
	sortLaps(work)

	start := 0
	for i := 1; i <= len(work); i++ {
		if i == len(work) || work[i].Key() != work[start].Key() {
			computeGroup(work[start:i])
			start = i
		}
	}
	return work
}

// Summary is the aggregate view of one stint, used for the stored
// stint-level metrics.
type Summary struct {
	Key             model.StintKey
	LapCount        int
	ValidPairs      int
	Baseline        *float64
	AvgLapTime      *float64
	DegradationRate float64
}

// Summarize computes one Summary per stint found in laps. Like Compute it
// sorts internally, so callers may pass laps in any order.
func Summarize(laps []model.LapRecord) []Summary {
	enriched := Compute(laps)

	ret := make([]Summary, 0)
	start := 0
	for i := 1; i <= len(enriched); i++ {
		if i == len(enriched) || enriched[i].Key() != enriched[start].Key() {
			group := enriched[start:i]
			s := Summary{
				Key:             group[0].Key(),
				LapCount:        len(group),
				ValidPairs:      group[0].Metrics.DegradationSamples,
				Baseline:        group[0].Metrics.StintFirstLapTime,
				DegradationRate: group[0].Metrics.DegradationRate,
			}
			valid := lo.Filter(group, func(l model.LapRecord, _ int) bool {
				return l.HasLapTime()
			})
			if len(valid) > 0 {
				sum := lo.SumBy(valid, func(l model.LapRecord) float64 {
					return *l.LapTimeSeconds
				})
				avg := sum / float64(len(valid))
				s.AvgLapTime = &avg
			}
			ret = append(ret, s)
			start = i
		}
	}
	return ret
}

func sortLaps(laps []model.LapRecord) {
	slices.SortStableFunc(laps, func(a, b model.LapRecord) int {
		return cmp.Or(
			cmp.Compare(a.Year, b.Year),
			cmp.Compare(a.Round, b.Round),
			cmp.Compare(a.Driver, b.Driver),
			cmp.Compare(a.Stint, b.Stint),
			cmp.Compare(a.LapNumber, b.LapNumber),
		)
	})
}

// computeGroup fills the metrics of one stint. group is ordered by lap
// number and never empty.
func computeGroup(group []model.LapRecord) {
	baseline := stintBaseline(group)
	slope, pairs := degradationSlope(group)

	for i := range group {
		m := &group[i].Metrics
		m.StintFirstLapTime = baseline
		m.TimeDeltaFromFirst = deltaFromBaseline(&group[i], baseline)
		m.LapTimeRollingAvg = rollingAvg(group, i)
		m.DegradationRate = slope
		m.DegradationSamples = pairs
	}
}

// stintBaseline is the lap time of the first lap in the stint carrying a
// valid lap time. Deliberately the first, not the fastest: it captures the
// fresh-tire performance even if a later lap is quicker.
func stintBaseline(group []model.LapRecord) *float64 {
	for i := range group {
		if group[i].HasLapTime() {
			v := *group[i].LapTimeSeconds
			return &v
		}
	}
	return nil
}

func deltaFromBaseline(lap *model.LapRecord, baseline *float64) *float64 {
	if baseline == nil || !lap.HasLapTime() {
		return nil
	}
	d := *lap.LapTimeSeconds - *baseline
	return &d
}

// rollingAvg is the mean over the trailing window ending at idx, ignoring
// laps without a valid lap time. The window shrinks at the stint start.
func rollingAvg(group []model.LapRecord, idx int) *float64 {
	from := max(0, idx-RollingWindow+1)
	sum := 0.0
	n := 0
	for i := from; i <= idx; i++ {
		if group[i].HasLapTime() {
			sum += *group[i].LapTimeSeconds
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// degradationSlope fits lap time over tyre life with ordinary least
// squares. Fewer than two valid pairs yield the neutral slope 0.
func degradationSlope(group []model.LapRecord) (slope float64, pairs int) {
	xs := make([]float64, 0, len(group))
	ys := make([]float64, 0, len(group))
	for i := range group {
		if group[i].TyreLife != nil && group[i].HasLapTime() {
			xs = append(xs, float64(*group[i].TyreLife))
			ys = append(ys, *group[i].LapTimeSeconds)
		}
	}
	pairs = len(xs)
	if pairs < 2 {
		return 0, pairs
	}

	n := float64(pairs)
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		// all laps share one tyre life value, no measurable trend
		return 0, pairs
	}
	return (n*sumXY - sumX*sumY) / denom, pairs
}
