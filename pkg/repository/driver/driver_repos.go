package driver

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, item *model.DbDriver) error {
	row := conn.QueryRow(ctx, `
	insert into drivers (driver_code, driver_number, full_name, year, team_id)
	values ($1,$2,$3,$4,$5)
	returning driver_id`,
		item.Code, item.Number, item.FullName, item.Year, item.TeamID)
	return row.Scan(&item.ID)
}

func LoadByCodeAndYear(
	ctx context.Context, conn repository.Querier, code string, year int,
) (*model.DbDriver, error) {
	row := conn.QueryRow(ctx, `
	select driver_id, driver_code, driver_number, full_name, year, team_id
	from drivers where driver_code=$1 and year=$2`,
		code, year)
	var item model.DbDriver
	if err := row.Scan(
		&item.ID, &item.Code, &item.Number, &item.FullName, &item.Year, &item.TeamID,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

// Ensure returns the id for the (code, year) natural key, creating the
// row if needed.
func Ensure(ctx context.Context, conn repository.Querier, item *model.DbDriver) (
	int, error,
) {
	row := conn.QueryRow(ctx, `
	insert into drivers (driver_code, driver_number, full_name, year, team_id)
	values ($1,$2,$3,$4,$5)
	on conflict (driver_code, year) do nothing
	returning driver_id`,
		item.Code, item.Number, item.FullName, item.Year, item.TeamID)
	err := row.Scan(&item.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := LoadByCodeAndYear(ctx, conn, item.Code, item.Year)
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
