package compound

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"gotest.tools/v3/assert"

	"github.com/f1stint/f1-tiredata-manager-go/testsupport/testdb"
)

func TestSeededCompounds(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()

	all, err := LoadAll(ctx, pool)
	assert.NilError(t, err)
	assert.Equal(t, 5, len(all))

	soft, err := LoadByName(ctx, pool, "SOFT")
	assert.NilError(t, err)
	assert.Equal(t, "SOFT", soft.Name)

	_, err = LoadByName(ctx, pool, "HYPERSOFT")
	assert.Assert(t, errors.Is(err, pgx.ErrNoRows))
}
