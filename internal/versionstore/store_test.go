package versionstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-engine/vellum/runtime/reflection"
)

// exerciseStore runs the behavior every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "game.Player")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	records := sampleRecords()
	require.NoError(t, store.Save(ctx, records...))
	require.NoError(t, store.Save(ctx))

	got, err := store.Load(ctx, "game.Player")
	require.NoError(t, err)
	requireRecord(t, records[0], got)

	all, err = store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "game.Actor", all[0].Name)
	assert.Equal(t, "game.Player", all[1].Name)
	assert.Equal(t, "game.Tint", all[2].Name)

	// Save replaces the existing record.
	updated := records[0]
	updated.Version = "0000000000000100"
	updated.UserVersion = 3
	require.NoError(t, store.Save(ctx, updated))

	got, err = store.Load(ctx, "game.Player")
	require.NoError(t, err)
	requireRecord(t, updated, got)

	all, err = store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	exerciseStore(t, store)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Save(ctx, sampleRecords()...), context.Canceled)
	_, err = store.All(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecord_Hash(t *testing.T) {
	h, err := Record{Name: "a", Version: "00000000000000ff"}.Hash()
	require.NoError(t, err)
	assert.Equal(t, reflection.Hash64(0xff), h)

	_, err = Record{Name: "a", Version: "not-hex"}.Hash()
	assert.Error(t, err)
}

func TestSnapshot(t *testing.T) {
	reg := newRegistry(t, "xyz", true)
	records := Snapshot(reg, recordedAt)
	require.Len(t, records, 2)

	vec, ok := reg.ReflectionByName(reflection.TypeName[Vec]())
	require.True(t, ok)
	assert.Equal(t, KindType, records[0].Kind)
	assert.Equal(t, vec.Name(), records[0].Name)
	assert.Equal(t, vec.Version().String(), records[0].Version)

	h, err := records[0].Hash()
	require.NoError(t, err)
	assert.Equal(t, vec.Version(), h)

	assert.Equal(t, KindEnum, records[1].Kind)
	assert.Equal(t, reflection.TypeName[Tint](), records[1].Name)
	assert.Equal(t, recordedAt, records[1].RecordedAt)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = Open(ctx, Config{Backend: BackendSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, Config{Backend: "etcd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "etcd")
}
