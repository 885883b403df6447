package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallIndexes_CreatesPermanentSet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, runMigrations(ctx, db, NopTracer{}))

	require.NoError(t, installIndexes(ctx, db, NopTracer{}, InstallIfNotExist))

	for _, d := range permanentIndexes {
		exists, err := indexExists(ctx, db, d.Name)
		require.NoError(t, err)
		assert.True(t, exists, "index %s should exist", d.Name)
	}
}

func TestInstallIndexes_SkipNonEssential(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, runMigrations(ctx, db, NopTracer{}))

	require.NoError(t, installIndexes(ctx, db, NopTracer{}, SkipNonEssential))

	for _, d := range permanentIndexes {
		exists, err := indexExists(ctx, db, d.Name)
		require.NoError(t, err)
		assert.False(t, exists, "index %s should not exist when deferred", d.Name)
	}
}

func TestInstallIndexes_AlreadyExists_NoError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, runMigrations(ctx, db, NopTracer{}))

	require.NoError(t, installIndexes(ctx, db, NopTracer{}, InstallIfNotExist))
	require.NoError(t, installIndexes(ctx, db, NopTracer{}, InstallIfNotExist))
}

func TestWithEphemeralIndex_CreatesAndDrops(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, runMigrations(ctx, db, NopTracer{}))

	d := indexByName("inputsBySpentAt")

	var sawCreated bool
	err := withEphemeralIndex(ctx, db, NopTracer{}, d, func() error {
		exists, err := indexExists(ctx, db, d.Name)
		require.NoError(t, err)
		sawCreated = exists
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sawCreated, "index should exist during the bracket")

	exists, err := indexExists(ctx, db, d.Name)
	require.NoError(t, err)
	assert.False(t, exists, "temporary index should be dropped after the bracket")
}

func TestWithEphemeralIndex_LeavesPermanentIndexInPlace(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, runMigrations(ctx, db, NopTracer{}))
	require.NoError(t, installIndexes(ctx, db, NopTracer{}, InstallIfNotExist))

	d := indexByName("inputsBySpentAt")
	err := withEphemeralIndex(ctx, db, NopTracer{}, d, func() error { return nil })
	require.NoError(t, err)

	exists, err := indexExists(ctx, db, d.Name)
	require.NoError(t, err)
	assert.True(t, exists, "a permanently-installed index must survive the bracket")
}

func TestWithEphemeralIndexes_Nests(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, runMigrations(ctx, db, NopTracer{}))

	defs := []indexDef{indexByName("inputsBySpentAt"), indexByName("inputsByCreatedAt")}

	var bothExisted bool
	err := withEphemeralIndexes(ctx, db, NopTracer{}, defs, func() error {
		a, err := indexExists(ctx, db, defs[0].Name)
		require.NoError(t, err)
		b, err := indexExists(ctx, db, defs[1].Name)
		require.NoError(t, err)
		bothExisted = a && b
		return nil
	})
	require.NoError(t, err)
	assert.True(t, bothExisted)

	for _, d := range defs {
		exists, err := indexExists(ctx, db, d.Name)
		require.NoError(t, err)
		assert.False(t, exists)
	}
}

func TestIndexByName_UnknownPanics(t *testing.T) {
	assert.Panics(t, func() { indexByName("doesNotExist") })
}
