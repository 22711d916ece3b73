package weather

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository"
)

const insertStmt = `
insert into weather_conditions (
	race_id, lap_number, air_temp_celsius, track_temp_celsius,
	humidity_percent, rainfall, wind_speed_kmh
) values ($1,$2,$3,$4,$5,$6,$7)
on conflict (race_id, lap_number) do nothing`

// InsertBatch writes the rows in one round trip, ignoring duplicate
// (race, lap) keys. Returns the number of rows actually inserted.
func InsertBatch(
	ctx context.Context, conn repository.Querier, rows []model.DbWeather,
) (int, error) {
	batch := &pgx.Batch{}
	for i := range rows {
		r := &rows[i]
		batch.Queue(insertStmt,
			r.RaceID, r.LapNumber, r.AirTemp, r.TrackTemp,
			r.Humidity, r.Rainfall, r.WindSpeed)
	}
	br := conn.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range rows {
		cmdTag, err := br.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(cmdTag.RowsAffected())
	}
	return inserted, nil
}

// Count returns the number of stored weather rows.
func Count(ctx context.Context, conn repository.Querier) (int, error) {
	row := conn.QueryRow(ctx, "select count(*) from weather_conditions")
	var count int
	err := row.Scan(&count)
	return count, err
}
