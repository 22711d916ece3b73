package circuit

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, item *model.DbCircuit) error {
	row := conn.QueryRow(ctx, `
	insert into circuits (circuit_name, country) values ($1,$2)
	returning circuit_id`,
		item.Name, item.Country)
	return row.Scan(&item.ID)
}

func LoadByName(ctx context.Context, conn repository.Querier, name string) (
	*model.DbCircuit, error,
) {
	row := conn.QueryRow(ctx, `
	select circuit_id, circuit_name, country from circuits where circuit_name=$1`,
		name)
	var item model.DbCircuit
	if err := row.Scan(&item.ID, &item.Name, &item.Country); err != nil {
		return nil, err
	}
	return &item, nil
}

// Ensure returns the id of the circuit with the given natural key,
// creating the row if needed. The conflict-tolerant insert keeps the
// operation safe against concurrent load runs racing on the same key.
func Ensure(ctx context.Context, conn repository.Querier, item *model.DbCircuit) (
	int, error,
) {
	row := conn.QueryRow(ctx, `
	insert into circuits (circuit_name, country) values ($1,$2)
	on conflict (circuit_name) do nothing
	returning circuit_id`,
		item.Name, item.Country)
	err := row.Scan(&item.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := LoadByName(ctx, conn, item.Name)
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

// deletes an entry from the database, returns number of rows deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from circuits where circuit_id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
