package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/testsupport/testdb"
)

func TestResolverStableIds(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	r := NewEntityResolver(pool)

	first, err := r.ResolveCircuit(ctx, "Monza", "Italy")
	assert.NilError(t, err)
	second, err := r.ResolveCircuit(ctx, "Monza", "Italy")
	assert.NilError(t, err)
	assert.Equal(t, first, second)

	// a fresh resolver with empty caches finds the same row
	other := NewEntityResolver(pool)
	third, err := other.ResolveCircuit(ctx, "Monza", "Italy")
	assert.NilError(t, err)
	assert.Equal(t, first, third)
}

func TestResolverEmptyKeys(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	r := NewEntityResolver(pool)

	var vErr *ValidationError
	_, err := r.ResolveCircuit(ctx, "", "Italy")
	assert.Assert(t, errors.As(err, &vErr))
	_, err = r.ResolveTeam(ctx, "", 2024)
	assert.Assert(t, errors.As(err, &vErr))
	_, err = r.ResolveDriver(ctx, "", nil, 2024, 1)
	assert.Assert(t, errors.As(err, &vErr))
	_, err = r.ResolveRace(ctx, 0, 0, "x", 1, time.Now())
	assert.Assert(t, errors.As(err, &vErr))
}

func TestResolverCompound(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	r := NewEntityResolver(pool)

	id, err := r.CompoundID(ctx, model.CompoundSoft)
	assert.NilError(t, err)
	assert.Assert(t, id != nil)

	unknown, err := r.CompoundID(ctx, model.CompoundUnknown)
	assert.NilError(t, err)
	assert.Assert(t, unknown == nil)
}
