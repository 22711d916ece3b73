// Package interchange reads and writes the tabular files that form the
// boundary between the collection run and the load run. One lap file and
// one pit file per season per run, comma separated with a header row.
package interchange

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
)

const (
	LapFilePattern = "f1_lap_data_*.csv"
	PitFilePattern = "f1_pit_data_*.csv"

	timestampLayout = "20060102_150405"
)

// LapFileName builds the lap file name for one season of one run.
func LapFileName(year int, runID string, ts time.Time) string {
	return fmt.Sprintf("f1_lap_data_%d_%s_%s.csv",
		year, runID, ts.Format(timestampLayout))
}

// PitFileName builds the pit stop file name for one season of one run.
func PitFileName(year int, runID string, ts time.Time) string {
	return fmt.Sprintf("f1_pit_data_%d_%s_%s.csv",
		year, runID, ts.Format(timestampLayout))
}

//nolint:gochecknoglobals // column layout
var lapHeader = []string{
	"year", "race_round", "race_name", "circuit_name", "country",
	"driver", "driver_number", "team",
	"lap_number", "lap_time_seconds",
	"sector1_time_seconds", "sector2_time_seconds", "sector3_time_seconds",
	"compound", "tyre_life", "stint", "fresh_tyre", "track_status",
	"is_personal_best", "is_accurate", "lap_start_time",
	"air_temp", "track_temp", "humidity", "rainfall", "wind_speed",
	"stint_first_lap_time", "time_delta_from_first", "lap_time_rolling_avg",
	"degradation_rate", "degradation_samples",
}

//nolint:gochecknoglobals // column layout
var pitHeader = []string{
	"year", "race_round", "driver", "lap", "stop_number",
	"duration_seconds", "time_of_day",
}

// WriteLaps writes the enriched lap records to w, header first.
func WriteLaps(w io.Writer, laps []model.LapRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(lapHeader); err != nil {
		return err
	}
	for i := range laps {
		if err := cw.Write(lapRow(&laps[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePitStops writes the pit stop events to w, header first.
func WritePitStops(w io.Writer, stops []model.PitStop) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(pitHeader); err != nil {
		return err
	}
	for i := range stops {
		s := &stops[i]
		row := []string{
			strconv.Itoa(s.Year),
			strconv.Itoa(s.Round),
			s.Driver,
			strconv.Itoa(s.Lap),
			strconv.Itoa(s.StopNumber),
			formatFloat(s.DurationSeconds),
			s.TimeOfDay,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func lapRow(l *model.LapRecord) []string {
	row := []string{
		strconv.Itoa(l.Year),
		strconv.Itoa(l.Round),
		l.RaceName,
		l.CircuitName,
		l.Country,
		l.Driver,
		formatIntPtr(l.DriverNumber),
		l.Team,
		strconv.Itoa(l.LapNumber),
		formatFloatPtr(l.LapTimeSeconds),
		formatFloatPtr(l.Sector1Seconds),
		formatFloatPtr(l.Sector2Seconds),
		formatFloatPtr(l.Sector3Seconds),
		string(l.Compound),
		formatIntPtr(l.TyreLife),
		strconv.Itoa(l.Stint),
		strconv.FormatBool(l.FreshTyre),
		l.TrackStatus,
		strconv.FormatBool(l.IsPersonalBest),
		strconv.FormatBool(l.IsAccurate),
		l.LapStartTime.Format(time.RFC3339),
	}
	if l.Weather != nil {
		row = append(row,
			formatFloat(l.Weather.AirTemp),
			formatFloat(l.Weather.TrackTemp),
			formatFloat(l.Weather.Humidity),
			strconv.FormatBool(l.Weather.Rainfall),
			formatFloat(l.Weather.WindSpeed),
		)
	} else {
		row = append(row, "", "", "", "", "")
	}
	row = append(row,
		formatFloatPtr(l.Metrics.StintFirstLapTime),
		formatFloatPtr(l.Metrics.TimeDeltaFromFirst),
		formatFloatPtr(l.Metrics.LapTimeRollingAvg),
		formatFloat(l.Metrics.DegradationRate),
		strconv.Itoa(l.Metrics.DegradationSamples),
	)
	return row
}

// ReadLaps parses a lap file. Optional columns may be missing entirely;
// rows whose structural fields (year, round, driver, lap number) cannot be
// parsed are dropped and counted in malformed.
func ReadLaps(r io.Reader) (laps []model.LapRecord, malformed int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("lap file header: %w", err)
	}
	cols := headerIndex(header)

	laps = make([]model.LapRecord, 0)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			malformed++
			continue
		}
		lap, ok := parseLapRow(cols, record)
		if !ok {
			malformed++
			continue
		}
		laps = append(laps, lap)
	}
	return laps, malformed, nil
}

// ReadPitStops parses a pit stop file with the same tolerance rules as
// ReadLaps.
func ReadPitStops(r io.Reader) (stops []model.PitStop, malformed int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("pit file header: %w", err)
	}
	cols := headerIndex(header)

	stops = make([]model.PitStop, 0)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			malformed++
			continue
		}
		stop, ok := parsePitRow(cols, record)
		if !ok {
			malformed++
			continue
		}
		stops = append(stops, stop)
	}
	return stops, malformed, nil
}

type columns map[string]int

func headerIndex(header []string) columns {
	cols := make(columns, len(header))
	for i, name := range header {
		cols[name] = i
	}
	return cols
}

func (c columns) str(record []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func (c columns) intVal(record []string, name string) (int, bool) {
	v, err := strconv.Atoi(c.str(record, name))
	return v, err == nil
}

func (c columns) intPtr(record []string, name string) *int {
	if v, ok := c.intVal(record, name); ok {
		return &v
	}
	return nil
}

func (c columns) floatPtr(record []string, name string) *float64 {
	v, err := strconv.ParseFloat(c.str(record, name), 64)
	if err != nil {
		return nil
	}
	return &v
}

func (c columns) boolVal(record []string, name string) bool {
	v, err := strconv.ParseBool(c.str(record, name))
	return err == nil && v
}

func parseLapRow(cols columns, record []string) (model.LapRecord, bool) {
	year, okYear := cols.intVal(record, "year")
	round, okRound := cols.intVal(record, "race_round")
	lapNumber, okLap := cols.intVal(record, "lap_number")
	driver := cols.str(record, "driver")
	if !okYear || !okRound || !okLap || driver == "" {
		return model.LapRecord{}, false
	}

	lap := model.LapRecord{
		Year:           year,
		Round:          round,
		RaceName:       cols.str(record, "race_name"),
		CircuitName:    cols.str(record, "circuit_name"),
		Country:        cols.str(record, "country"),
		Driver:         driver,
		DriverNumber:   cols.intPtr(record, "driver_number"),
		Team:           cols.str(record, "team"),
		LapNumber:      lapNumber,
		LapTimeSeconds: cols.floatPtr(record, "lap_time_seconds"),
		Sector1Seconds: cols.floatPtr(record, "sector1_time_seconds"),
		Sector2Seconds: cols.floatPtr(record, "sector2_time_seconds"),
		Sector3Seconds: cols.floatPtr(record, "sector3_time_seconds"),
		Compound:       model.ParseCompound(cols.str(record, "compound")),
		TyreLife:       cols.intPtr(record, "tyre_life"),
		Stint:          1,
		FreshTyre:      cols.boolVal(record, "fresh_tyre"),
		TrackStatus:    cols.str(record, "track_status"),
		IsPersonalBest: cols.boolVal(record, "is_personal_best"),
		IsAccurate:     cols.boolVal(record, "is_accurate"),
	}
	if stintNum, ok := cols.intVal(record, "stint"); ok && stintNum >= 1 {
		lap.Stint = stintNum
	}
	if ts, err := time.Parse(time.RFC3339, cols.str(record, "lap_start_time")); err == nil {
		lap.LapStartTime = ts
	}
	if airTemp := cols.floatPtr(record, "air_temp"); airTemp != nil {
		lap.Weather = &model.WeatherSample{
			AirTemp:  *airTemp,
			Rainfall: cols.boolVal(record, "rainfall"),
		}
		if v := cols.floatPtr(record, "track_temp"); v != nil {
			lap.Weather.TrackTemp = *v
		}
		if v := cols.floatPtr(record, "humidity"); v != nil {
			lap.Weather.Humidity = *v
		}
		if v := cols.floatPtr(record, "wind_speed"); v != nil {
			lap.Weather.WindSpeed = *v
		}
	}
	lap.Metrics = model.DerivedLapMetrics{
		StintFirstLapTime:  cols.floatPtr(record, "stint_first_lap_time"),
		TimeDeltaFromFirst: cols.floatPtr(record, "time_delta_from_first"),
		LapTimeRollingAvg:  cols.floatPtr(record, "lap_time_rolling_avg"),
	}
	if v := cols.floatPtr(record, "degradation_rate"); v != nil {
		lap.Metrics.DegradationRate = *v
	}
	if v, ok := cols.intVal(record, "degradation_samples"); ok {
		lap.Metrics.DegradationSamples = v
	}
	return lap, true
}

func parsePitRow(cols columns, record []string) (model.PitStop, bool) {
	year, okYear := cols.intVal(record, "year")
	round, okRound := cols.intVal(record, "race_round")
	lap, okLap := cols.intVal(record, "lap")
	stop, okStop := cols.intVal(record, "stop_number")
	driver := cols.str(record, "driver")
	if !okYear || !okRound || !okLap || !okStop || driver == "" {
		return model.PitStop{}, false
	}
	duration := cols.floatPtr(record, "duration_seconds")
	if duration == nil {
		return model.PitStop{}, false
	}
	return model.PitStop{
		Year:            year,
		Round:           round,
		Driver:          driver,
		Lap:             lap,
		StopNumber:      stop,
		DurationSeconds: *duration,
		TimeOfDay:       cols.str(record, "time_of_day"),
	}, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
