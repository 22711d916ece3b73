package model

import (
	"fmt"
	"time"
)

type (
	// LapRecord is one lap of one driver in one race as delivered by the
	// session lap provider. Optional values are pointers so that absence
	// can be told apart from zero.
	LapRecord struct {
		Year           int
		Round          int
		RaceName       string
		CircuitName    string
		Country        string
		Driver         string // driver code (VER, HAM, ...)
		DriverNumber   *int
		Team           string
		LapNumber      int
		LapTimeSeconds *float64
		Sector1Seconds *float64
		Sector2Seconds *float64
		Sector3Seconds *float64
		Compound       Compound
		TyreLife       *int
		Stint          int
		FreshTyre      bool
		TrackStatus    string
		IsPersonalBest bool
		IsAccurate     bool
		LapStartTime   time.Time

		Weather *WeatherSample
		Metrics DerivedLapMetrics
	}

	// DerivedLapMetrics are the per-stint degradation signals attached to
	// each lap by the calculator.
	DerivedLapMetrics struct {
		StintFirstLapTime  *float64
		TimeDeltaFromFirst *float64
		LapTimeRollingAvg  *float64
		// DegradationRate is the OLS slope of lap time over tyre life for
		// the whole stint, broadcast to every lap. Stints with fewer than
		// two valid pairs get 0; check DegradationSamples to distinguish
		// that from a genuine flat fit.
		DegradationRate    float64
		DegradationSamples int
	}

	// WeatherSample is one point of the session weather time series.
	WeatherSample struct {
		Time      time.Time
		AirTemp   float64
		TrackTemp float64
		Humidity  float64
		Rainfall  bool
		WindSpeed float64
	}

	// StintKey identifies a stint within a driver's race.
	StintKey struct {
		Year   int
		Round  int
		Driver string
		Stint  int
	}
)

func (k StintKey) String() string {
	return fmt.Sprintf("%d/%d %s stint %d", k.Year, k.Round, k.Driver, k.Stint)
}

// Key returns the stint this lap belongs to.
func (l *LapRecord) Key() StintKey {
	return StintKey{Year: l.Year, Round: l.Round, Driver: l.Driver, Stint: l.Stint}
}

// HasLapTime reports whether the lap carries a usable (strictly positive)
// lap time.
func (l *LapRecord) HasLapTime() bool {
	return l.LapTimeSeconds != nil && *l.LapTimeSeconds > 0
}
