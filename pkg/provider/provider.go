// Package provider holds the contracts for the external data sources and
// the plumbing shared by their clients.
package provider

import (
	"context"
	"fmt"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
)

type (
	// SeasonResults delivers schedule, pit stop and result data for a
	// season.
	SeasonResults interface {
		Schedule(ctx context.Context, year int) ([]model.RaceDescriptor, error)
		PitStops(ctx context.Context, year, round int) ([]model.PitStop, error)
		Results(ctx context.Context, year, round int) ([]model.RaceResult, error)
	}

	// SessionLaps delivers per-lap telemetry and the parallel weather time
	// series of a race session.
	SessionLaps interface {
		RaceLaps(ctx context.Context, year, round int) (
			[]model.LapRecord, []model.WeatherSample, error,
		)
	}
)

// Error marks a failed call to an external data source. Callers recover
// locally by treating the affected scope as empty.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("provider request %s: status %d", e.URL, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.Err }
