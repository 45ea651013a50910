package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

var _ storage.Backend = (*Storage)(nil)

const key = "taller:datos"

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client, key), mr
}

func TestLoad_MissingKey(t *testing.T) {
	s, _ := newTestStorage(t)

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaveLoad_KeepsBackup(t *testing.T) {
	s, mr := newTestStorage(t)
	ctx := context.Background()

	first := &storage.Snapshot{Operators: []storage.Operator{{ID: 1, Name: "Rosa"}}}
	first.Normalize()
	require.NoError(t, s.Save(ctx, first))
	assert.False(t, mr.Exists(key+":bak"))

	second := first.Clone()
	second.Operators[0].Name = "Rosa María"
	second.Machines = []string{"Recta"}
	require.NoError(t, s.Save(ctx, second))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Rosa María", got.Operators[0].Name)
	assert.Equal(t, []string{"Recta"}, got.Machines)
	assert.Equal(t, int64(2), got.OperatorCounter)

	bak, err := mr.Get(key + ":bak")
	require.NoError(t, err)
	var prev storage.Snapshot
	require.NoError(t, json.Unmarshal([]byte(bak), &prev))
	assert.Equal(t, "Rosa", prev.Operators[0].Name)
}

func TestLoad_CorruptValue(t *testing.T) {
	s, mr := newTestStorage(t)
	require.NoError(t, mr.Set(key, "{broken"))

	_, err := s.Load(context.Background())
	assert.Error(t, err)
}
