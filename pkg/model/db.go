package model

import "time"

// database row types

type (
	DbCircuit struct {
		ID      int
		Name    string
		Country string
	}

	DbTeam struct {
		ID   int
		Name string
		Year int
	}

	DbDriver struct {
		ID       int
		Code     string
		Number   *int
		FullName string
		Year     int
		TeamID   int
	}

	DbRace struct {
		ID        int
		Year      int
		Round     int
		Name      string
		CircuitID int
		Date      time.Time
	}

	DbCompound struct {
		ID   int
		Name string
	}

	DbLapTime struct {
		RaceID         int
		DriverID       int
		LapNumber      int
		LapTimeSeconds float64
		Sector1Seconds *float64
		Sector2Seconds *float64
		Sector3Seconds *float64
		CompoundID     *int
		TyreLife       *int
		StintNumber    int
		FreshTyre      bool
		TrackStatus    string
		IsPersonalBest bool
		IsAccurate     bool
	}

	DbWeather struct {
		RaceID    int
		LapNumber int
		AirTemp   *float64
		TrackTemp *float64
		Humidity  *float64
		Rainfall  bool
		WindSpeed *float64
	}

	DbPitStop struct {
		RaceID          int
		DriverID        int
		LapNumber       int
		StopNumber      int
		DurationSeconds float64
	}

	// DbStintMetric is the stored aggregate of one (race, driver, stint).
	DbStintMetric struct {
		RaceID          int
		DriverID        int
		StintNumber     int
		LapCount        int
		ValidPairs      int
		BaselineLapTime *float64
		AvgLapTime      *float64
		DegradationRate float64
	}
)
