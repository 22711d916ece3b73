package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/driver"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/race"
)

// lookupResolver resolves race and driver ids without ever creating
// dimension rows. Pit stops only attach to races already loaded from lap
// data; a miss is a recoverable ResolutionError.
type lookupResolver struct {
	conn    repository.Querier
	races   map[raceKey]int
	drivers map[driverKey]int
}

func newLookupResolver(conn repository.Querier) *lookupResolver {
	return &lookupResolver{
		conn:    conn,
		races:   make(map[raceKey]int),
		drivers: make(map[driverKey]int),
	}
}

func (r *lookupResolver) lookup(
	ctx context.Context, year, round int, driverCode string,
) (raceID, driverID int, err error) {
	if driverCode == "" {
		return 0, 0, &ValidationError{Field: "driver_code", Reason: "is empty"}
	}
	rKey := raceKey{year: year, round: round}
	raceID, ok := r.races[rKey]
	if !ok {
		item, err := race.LoadByYearAndRound(ctx, r.conn, year, round)
		if err != nil {
			return 0, 0, wrapLookup("race", fmt.Sprintf("%d/%d", year, round), err)
		}
		raceID = item.ID
		r.races[rKey] = raceID
	}
	dKey := driverKey{code: driverCode, year: year}
	driverID, ok = r.drivers[dKey]
	if !ok {
		item, err := driver.LoadByCodeAndYear(ctx, r.conn, driverCode, year)
		if err != nil {
			return 0, 0, wrapLookup("driver", driverCode, err)
		}
		driverID = item.ID
		r.drivers[dKey] = driverID
	}
	return raceID, driverID, nil
}

func wrapLookup(kind, key string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		err = errors.New("not present in store")
	}
	return &ResolutionError{Kind: kind, Key: key, Err: err}
}
