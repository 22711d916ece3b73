package model

import "time"

type (
	// RaceDescriptor is one entry of a season schedule.
	RaceDescriptor struct {
		Round       int
		RaceName    string
		CircuitID   string
		CircuitName string
		Country     string
		Date        time.Time
	}

	// PitStop is one pit stop event of a race.
	PitStop struct {
		Year            int
		Round           int
		Driver          string
		Lap             int
		StopNumber      int
		DurationSeconds float64
		TimeOfDay       string
	}

	// RaceResult is one classified entry of a race result.
	RaceResult struct {
		Year         int
		Round        int
		Position     int
		Driver       string
		DriverCode   string
		DriverNumber *int
		Constructor  string
		Grid         int
		Laps         int
		Status       string
		Points       float64
	}
)
