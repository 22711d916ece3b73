package compound

import (
	"context"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository"
)

// LoadByName looks up a seeded tire compound. Returns pgx.ErrNoRows for
// unknown names.
func LoadByName(ctx context.Context, conn repository.Querier, name string) (
	*model.DbCompound, error,
) {
	row := conn.QueryRow(ctx, `
	select compound_id, compound_name from tire_compounds where compound_name=$1`,
		name)
	var item model.DbCompound
	if err := row.Scan(&item.ID, &item.Name); err != nil {
		return nil, err
	}
	return &item, nil
}

func LoadAll(ctx context.Context, conn repository.Querier) (
	[]*model.DbCompound, error,
) {
	rows, err := conn.Query(ctx,
		"select compound_id, compound_name from tire_compounds order by compound_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*model.DbCompound, 0)
	for rows.Next() {
		var item model.DbCompound
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, rows.Err()
}
