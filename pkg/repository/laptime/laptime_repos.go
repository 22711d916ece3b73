package laptime

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository"
)

const insertStmt = `
insert into lap_times (
	race_id, driver_id, lap_number, lap_time_seconds,
	sector1_time_seconds, sector2_time_seconds, sector3_time_seconds,
	compound_id, tyre_life, stint_number, fresh_tyre,
	track_status, is_personal_best, is_accurate
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
on conflict (race_id, driver_id, lap_number) do nothing`

// InsertBatch writes the rows in one round trip. Duplicate logical keys
// are no-ops; the returned count is the number of rows actually inserted.
func InsertBatch(
	ctx context.Context, conn repository.Querier, rows []model.DbLapTime,
) (int, error) {
	batch := &pgx.Batch{}
	for i := range rows {
		r := &rows[i]
		batch.Queue(insertStmt,
			r.RaceID, r.DriverID, r.LapNumber, r.LapTimeSeconds,
			r.Sector1Seconds, r.Sector2Seconds, r.Sector3Seconds,
			r.CompoundID, r.TyreLife, r.StintNumber, r.FreshTyre,
			r.TrackStatus, r.IsPersonalBest, r.IsAccurate)
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

// StintRef identifies one stored stint.
type StintRef struct {
	RaceID      int
	DriverID    int
	StintNumber int
}

// LoadStintRefs returns every distinct (race, driver, stint) triple present
// in lap_times.
func LoadStintRefs(ctx context.Context, conn repository.Querier) (
	[]StintRef, error,
) {
	rows, err := conn.Query(ctx, `
	select distinct race_id, driver_id, stint_number
	from lap_times
	order by race_id, driver_id, stint_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]StintRef, 0)
	for rows.Next() {
		var item StintRef
		if err := rows.Scan(&item.RaceID, &item.DriverID, &item.StintNumber); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

// LoadStintLaps returns the stored laps of one stint ordered by lap number.
func LoadStintLaps(
	ctx context.Context, conn repository.Querier, ref StintRef,
) ([]model.DbLapTime, error) {
	rows, err := conn.Query(ctx, `
	select race_id, driver_id, lap_number, lap_time_seconds, tyre_life, stint_number
	from lap_times
	where race_id=$1 and driver_id=$2 and stint_number=$3
	order by lap_number`,
		ref.RaceID, ref.DriverID, ref.StintNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]model.DbLapTime, 0)
	for rows.Next() {
		var item model.DbLapTime
		if err := rows.Scan(
			&item.RaceID, &item.DriverID, &item.LapNumber,
			&item.LapTimeSeconds, &item.TyreLife, &item.StintNumber,
		); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

// Count returns the number of stored lap rows.
func Count(ctx context.Context, conn repository.Querier) (int, error) {
	row := conn.QueryRow(ctx, "select count(*) from lap_times")
	var count int
	err := row.Scan(&count)
	return count, err
}
