package tokenstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/courseclient/internal/config"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok := s.Get(ctx)
	assert.False(t, ok, "fresh store should be empty")

	require.NoError(t, s.Set(ctx, "abc"))
	token, ok := s.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	require.NoError(t, s.Set(ctx, "def"))
	token, _ = s.Get(ctx)
	assert.Equal(t, "def", token, "Set overwrites")

	require.NoError(t, s.Clear(ctx))
	_, ok = s.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, s.Clear(ctx), "Clear on empty store")

	require.NoError(t, s.Set(ctx, ""))
	token, ok = s.Get(ctx)
	assert.False(t, ok, "empty token reads as absent")
	assert.Empty(t, token)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "storage.json"), "", nil)
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStore_PreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o600))

	s, err := NewFileStore(path, DefaultKey, nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "abc"))
	require.NoError(t, s.Clear(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var values map[string]string
	require.NoError(t, json.Unmarshal(data, &values))
	assert.Equal(t, map[string]string{"theme": "dark"}, values)
}

func TestFileStore_CorruptFileReadsAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewFileStore(path, DefaultKey, nil)
	require.NoError(t, err)

	_, ok := s.Get(context.Background())
	assert.False(t, ok)

	require.NoError(t, s.Set(context.Background(), "fresh"))
	token, ok := s.Get(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "fresh", token)
}

func TestFileStore_RequiresPath(t *testing.T) {
	_, err := NewFileStore("", DefaultKey, nil)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	s, err := Open(config.TokenConfig{Driver: config.DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(config.TokenConfig{Driver: config.DriverFile, Path: filepath.Join(t.TempDir(), "s.json")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(config.TokenConfig{Driver: config.DriverRedis, RedisURL: "redis://localhost:6379/0"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)

	_, err = Open(config.TokenConfig{Driver: config.DriverRedis, RedisURL: "::bad"}, nil)
	assert.Error(t, err)

	_, err = Open(config.TokenConfig{Driver: "bolt"}, nil)
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("COURSE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("COURSE_TEST_REDIS_URL not set; skipping redis token store test")
	}
	s, err := NewRedisStoreFromURL(url, "courseclient:test:token", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}
