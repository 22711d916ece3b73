package team

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, item *model.DbTeam) error {
	row := conn.QueryRow(ctx, `
	insert into teams (team_name, year) values ($1,$2)
	returning team_id`,
		item.Name, item.Year)
	return row.Scan(&item.ID)
}

func LoadByNameAndYear(
	ctx context.Context, conn repository.Querier, name string, year int,
) (*model.DbTeam, error) {
	row := conn.QueryRow(ctx, `
	select team_id, team_name, year from teams where team_name=$1 and year=$2`,
		name, year)
	var item model.DbTeam
	if err := row.Scan(&item.ID, &item.Name, &item.Year); err != nil {
		return nil, err
	}
	return &item, nil
}

// Ensure returns the id for the (name, year) natural key, creating the
// row if needed.
func Ensure(ctx context.Context, conn repository.Querier, item *model.DbTeam) (
	int, error,
) {
	row := conn.QueryRow(ctx, `
	insert into teams (team_name, year) values ($1,$2)
	on conflict (team_name, year) do nothing
	returning team_id`,
		item.Name, item.Year)
	err := row.Scan(&item.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := LoadByNameAndYear(ctx, conn, item.Name, item.Year)
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
