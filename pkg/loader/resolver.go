package loader

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/f1stint/f1-tiredata-manager-go/log"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/circuit"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/compound"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/driver"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/race"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/repository/team"
)

type (
	teamKey struct {
		name string
		year int
	}
	driverKey struct {
		code string
		year int
	}
	raceKey struct {
		year  int
		round int
	}
)

// EntityResolver maps natural keys to surrogate ids, creating dimension
// rows on first sight. The caches are scoped to one load run and are not
// safe for concurrent use; the underlying inserts are conflict tolerant,
// so concurrent runs cannot create duplicate rows.
type EntityResolver struct {
	conn      repository.Querier
	circuits  map[string]int
	teams     map[teamKey]int
	drivers   map[driverKey]int
	races     map[raceKey]int
	compounds map[model.Compound]*int
	l         *log.Logger
}

func NewEntityResolver(conn repository.Querier) *EntityResolver {
	return &EntityResolver{
		conn:      conn,
		circuits:  make(map[string]int),
		teams:     make(map[teamKey]int),
		drivers:   make(map[driverKey]int),
		races:     make(map[raceKey]int),
		compounds: make(map[model.Compound]*int),
		l:         log.Default().Named("loader.resolver"),
	}
}

// ResolveCircuit returns the id for the circuit name, creating the row if
// needed.
func (r *EntityResolver) ResolveCircuit(
	ctx context.Context, name, country string,
) (int, error) {
	if name == "" {
		return 0, &ValidationError{Field: "circuit_name", Reason: "is empty"}
	}
	if id, ok := r.circuits[name]; ok {
		return id, nil
	}
	id, err := circuit.Ensure(ctx, r.conn, &model.DbCircuit{
		Name: name, Country: country,
	})
	if err != nil {
		return 0, &ResolutionError{Kind: "circuit", Key: name, Err: err}
	}
	r.l.Info("resolved circuit", log.String("name", name), log.Int("id", id))
	r.circuits[name] = id
	return id, nil
}

// ResolveTeam returns the id for (name, year), creating the row if needed.
func (r *EntityResolver) ResolveTeam(
	ctx context.Context, name string, year int,
) (int, error) {
	if name == "" {
		return 0, &ValidationError{Field: "team_name", Reason: "is empty"}
	}
	key := teamKey{name: name, year: year}
	if id, ok := r.teams[key]; ok {
		return id, nil
	}
	id, err := team.Ensure(ctx, r.conn, &model.DbTeam{Name: name, Year: year})
	if err != nil {
		return 0, &ResolutionError{Kind: "team", Key: name, Err: err}
	}
	r.l.Info("resolved team",
		log.String("name", name), log.Int("year", year), log.Int("id", id))
	r.teams[key] = id
	return id, nil
}

// ResolveDriver returns the id for (code, year), creating the row if
// needed. The driver code doubles as the full name on creation, matching
// the information available in the interchange file.
func (r *EntityResolver) ResolveDriver(
	ctx context.Context, code string, number *int, year, teamID int,
) (int, error) {
	if code == "" {
		return 0, &ValidationError{Field: "driver_code", Reason: "is empty"}
	}
	key := driverKey{code: code, year: year}
	if id, ok := r.drivers[key]; ok {
		return id, nil
	}
	id, err := driver.Ensure(ctx, r.conn, &model.DbDriver{
		Code: code, Number: number, FullName: code, Year: year, TeamID: teamID,
	})
	if err != nil {
		return 0, &ResolutionError{Kind: "driver", Key: code, Err: err}
	}
	r.l.Info("resolved driver",
		log.String("code", code), log.Int("year", year), log.Int("id", id))
	r.drivers[key] = id
	return id, nil
}

// ResolveRace returns the id for (year, round), creating the row if
// needed.
func (r *EntityResolver) ResolveRace(
	ctx context.Context, year, round int, name string, circuitID int,
	date time.Time,
) (int, error) {
	if year == 0 || round == 0 {
		return 0, &ValidationError{Field: "race", Reason: "year/round missing"}
	}
	key := raceKey{year: year, round: round}
	if id, ok := r.races[key]; ok {
		return id, nil
	}
	id, err := race.Ensure(ctx, r.conn, &model.DbRace{
		Year: year, Round: round, Name: name, CircuitID: circuitID, Date: date,
	})
	if err != nil {
		return 0, &ResolutionError{Kind: "race", Key: name, Err: err}
	}
	r.l.Info("resolved race",
		log.Int("year", year), log.Int("round", round), log.Int("id", id))
	r.races[key] = id
	return id, nil
}

// CompoundID maps a compound to its seeded dimension id. Unknown
// compounds resolve to nil, which becomes a NULL fact column.
func (r *EntityResolver) CompoundID(
	ctx context.Context, c model.Compound,
) (*int, error) {
	if c == "" || c == model.CompoundUnknown {
		return nil, nil
	}
	if id, ok := r.compounds[c]; ok {
		return id, nil
	}
	item, err := compound.LoadByName(ctx, r.conn, string(c))
	if errors.Is(err, pgx.ErrNoRows) {
		r.compounds[c] = nil
		return nil, nil
	}
	if err != nil {
		return nil, &ResolutionError{Kind: "compound", Key: string(c), Err: err}
	}
	id := item.ID
	r.compounds[c] = &id
	return &id, nil
}
