package stintmetric

import (
	"context"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository"
)

// Upsert stores the aggregate of one stint. Recomputing a stint twice
// yields the same stored values.
func Upsert(
	ctx context.Context, conn repository.Querier, item *model.DbStintMetric,
) error {
	_, err := conn.Exec(ctx, `
	insert into stint_metrics (
		race_id, driver_id, stint_number, lap_count, valid_pairs,
		baseline_lap_time, avg_lap_time, degradation_rate
	) values ($1,$2,$3,$4,$5,$6,$7,$8)
	on conflict (race_id, driver_id, stint_number) do update set
		lap_count=excluded.lap_count,
		valid_pairs=excluded.valid_pairs,
		baseline_lap_time=excluded.baseline_lap_time,
		avg_lap_time=excluded.avg_lap_time,
		degradation_rate=excluded.degradation_rate`,
		item.RaceID, item.DriverID, item.StintNumber, item.LapCount,
		item.ValidPairs, item.BaselineLapTime, item.AvgLapTime,
		item.DegradationRate)
	return err
}

func LoadByStint(
	ctx context.Context, conn repository.Querier,
	raceID, driverID, stintNumber int,
) (*model.DbStintMetric, error) {
	row := conn.QueryRow(ctx, `
	select race_id, driver_id, stint_number, lap_count, valid_pairs,
		baseline_lap_time, avg_lap_time, degradation_rate
	from stint_metrics
	where race_id=$1 and driver_id=$2 and stint_number=$3`,
		raceID, driverID, stintNumber)
	var item model.DbStintMetric
	if err := row.Scan(
		&item.RaceID, &item.DriverID, &item.StintNumber, &item.LapCount,
		&item.ValidPairs, &item.BaselineLapTime, &item.AvgLapTime,
		&item.DegradationRate,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

// Count returns the number of stored stint metric rows.
func Count(ctx context.Context, conn repository.Querier) (int, error) {
	row := conn.QueryRow(ctx, "select count(*) from stint_metrics")
	var count int
	err := row.Scan(&count)
	return count, err
}
