package race

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, item *model.DbRace) error {
	row := conn.QueryRow(ctx, `
	insert into races (year, race_round, race_name, circuit_id, race_date)
	values ($1,$2,$3,$4,$5)
	returning race_id`,
		item.Year, item.Round, item.Name, item.CircuitID, item.Date)
	return row.Scan(&item.ID)
}

func LoadByYearAndRound(
	ctx context.Context, conn repository.Querier, year, round int,
) (*model.DbRace, error) {
	row := conn.QueryRow(ctx, `
	select race_id, year, race_round, race_name, circuit_id, race_date
	from races where year=$1 and race_round=$2`,
		year, round)
	var item model.DbRace
	if err := row.Scan(
		&item.ID, &item.Year, &item.Round, &item.Name, &item.CircuitID, &item.Date,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

// Ensure returns the id for the (year, round) natural key, creating the
// row if needed.
func Ensure(ctx context.Context, conn repository.Querier, item *model.DbRace) (
	int, error,
) {
	row := conn.QueryRow(ctx, `
	insert into races (year, race_round, race_name, circuit_id, race_date)
	values ($1,$2,$3,$4,$5)
	on conflict (year, race_round) do nothing
	returning race_id`,
		item.Year, item.Round, item.Name, item.CircuitID, item.Date)
	err := row.Scan(&item.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := LoadByYearAndRound(ctx, conn, item.Year, item.Round)
		if err != nil {
			return 0, err
		}
		item.ID = existing.ID
		return existing.ID, nil
	}
	if err != nil {
		return 0, err
	}
	return item.ID, nil
}
