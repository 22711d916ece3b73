package pitstop

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository"
)

const insertStmt = `
insert into pit_stops (
	race_id, driver_id, lap_number, stop_number, duration_seconds
) values ($1,$2,$3,$4,$5)
on conflict (race_id, driver_id, lap_number, stop_number) do nothing`

// InsertBatch writes the rows in one round trip, ignoring duplicates.
// Returns the number of rows actually inserted.
func InsertBatch(
	ctx context.Context, conn repository.Querier, rows []model.DbPitStop,
) (int, error) {
	batch := &pgx.Batch{}
	for i := range rows {
		r := &rows[i]
		batch.Queue(insertStmt,
			r.RaceID, r.DriverID, r.LapNumber, r.StopNumber, r.DurationSeconds)
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

// Count returns the number of stored pit stop rows.
func Count(ctx context.Context, conn repository.Querier) (int, error) {
	row := conn.QueryRow(ctx, "select count(*) from pit_stops")
	var count int
	err := row.Scan(&count)
	return count, err
}
