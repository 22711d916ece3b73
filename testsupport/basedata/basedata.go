package basedata

import (
	"time"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func raceStart(round, lap int) time.Time {
	base, _ := time.Parse(time.RFC3339, "2024-03-02T15:03:00Z")
	return base.AddDate(0, 0, (round-1)*14).Add(time.Duration(lap) * 95 * time.Second)
}

func sampleLap(round int, driver string, lap int, lapTime *float64) model.LapRecord {
	raceName := "Bahrain Grand Prix"
	circuit := "Bahrain International Circuit"
	country := "Bahrain"
	if round == 2 {
		raceName = "Saudi Arabian Grand Prix"
		circuit = "Jeddah Corniche Circuit"
		country = "Saudi Arabia"
	}
	team := "Red Bull Racing"
	number := 1
	if driver == "HAM" {
		team = "Mercedes"
		number = 44
	}
	return model.LapRecord{
		Year:           2024,
		Round:          round,
		RaceName:       raceName,
		CircuitName:    circuit,
		Country:        country,
		Driver:         driver,
		DriverNumber:   iptr(number),
		Team:           team,
		LapNumber:      lap,
		LapTimeSeconds: lapTime,
		Compound:       model.CompoundSoft,
		TyreLife:       iptr(lap),
		Stint:          1,
		FreshTyre:      lap == 1,
		TrackStatus:    "1",
		IsAccurate:     true,
		LapStartTime:   raceStart(round, lap),
	}
}

// SampleLaps returns two races with two drivers and three laps each, plus
// one lap without a lap time. Loading them persists 11 rows and skips 1.
func SampleLaps() []model.LapRecord {
	laps := make([]model.LapRecord, 0, 12)
	for _, round := range []int{1, 2} {
		for _, driver := range []string{"VER", "HAM"} {
			for lap := 1; lap <= 3; lap++ {
				lapTime := fptr(92.0 + 0.4*float64(lap))
				if round == 2 && driver == "HAM" && lap == 2 {
					lapTime = nil
				}
				laps = append(laps, sampleLap(round, driver, lap, lapTime))
			}
		}
	}
	return laps
}

// SampleWeather returns one weather observation at the given time.
func SampleWeather(at time.Time) model.WeatherSample {
	return model.WeatherSample{
		Time:      at,
		AirTemp:   24.5,
		TrackTemp: 38.2,
		Humidity:  41.0,
		WindSpeed: 2.8,
	}
}

// SamplePitStops returns one stop per driver for the first sample race.
func SamplePitStops() []model.PitStop {
	return []model.PitStop{
		{
			Year: 2024, Round: 1, Driver: "VER",
			Lap: 2, StopNumber: 1, DurationSeconds: 22.3, TimeOfDay: "15:22:10",
		},
		{
			Year: 2024, Round: 1, Driver: "HAM",
			Lap: 3, StopNumber: 1, DurationSeconds: 23.1, TimeOfDay: "15:24:02",
		},
	}
}
