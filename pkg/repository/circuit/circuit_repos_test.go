//nolint:errcheck // ok for this test code
package circuit

import (
	"context"
	"log"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gotest.tools/v3/assert"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/testsupport/testdb"
)

var sampleCircuit = &model.DbCircuit{
	Name:    "Autodromo Nazionale di Monza",
	Country: "Italy",
}

func createSampleEntry(db *pgxpool.Pool) *model.DbCircuit {
	ctx := context.Background()
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		return Create(ctx, tx, sampleCircuit)
	})
	if err != nil {
		log.Fatalf("createSampleEntry: %v\n", err)
	}
	return sampleCircuit
}

func TestCreate(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()

	item := &model.DbCircuit{Name: "Circuit de Monaco", Country: "Monaco"}
	err := Create(ctx, pool, item)
	assert.NilError(t, err)
	assert.Assert(t, item.ID > 0)
}

func TestLoadByName(t *testing.T) {
	pool := testdb.InitTestDb()
	sample := createSampleEntry(pool)

	item, err := LoadByName(context.Background(), pool, sample.Name)
	assert.NilError(t, err)
	assert.Equal(t, sample.ID, item.ID)
	assert.Equal(t, "Italy", item.Country)
}

func TestEnsure(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()

	item := &model.DbCircuit{Name: "Silverstone Circuit", Country: "UK"}
	first, err := Ensure(ctx, pool, item)
	assert.NilError(t, err)

	// the second call must find the existing row
	second, err := Ensure(ctx, pool,
		&model.DbCircuit{Name: "Silverstone Circuit", Country: "UK"})
	assert.NilError(t, err)
	assert.Equal(t, first, second)
}

func TestDeleteByID(t *testing.T) {
	pool := testdb.InitTestDb()
	sample := createSampleEntry(pool)

	num, err := DeleteByID(context.Background(), pool, sample.ID)
	assert.NilError(t, err)
	assert.Equal(t, 1, num)
}
