package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time { return c.t }

func TestFileTokenStore_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewFileTokenStore(path)

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok, "no file means no token")

	require.NoError(t, store.Save("tok-1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", got)

	require.NoError(t, store.Clear())
	_, ok, err = store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	// 二重のClearはエラーにしない
	assert.NoError(t, store.Clear())
}

func TestFileTokenStore_ExpiredTokenIsAbsent(t *testing.T) {
	clock := &manualClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileTokenStore(path, WithStoreClock(clock.now))

	require.NoError(t, store.Save("tok"))

	clock.t = clock.t.Add(DefaultTokenMaxAge - time.Second)
	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok, "token is still valid just before expiry")

	clock.t = clock.t.Add(time.Second)
	_, ok, err = store.Load()
	require.NoError(t, err)
	assert.False(t, ok, "token at expiry is treated as absent")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "expired token file should be removed")
}

func TestFileTokenStore_WithMaxAge(t *testing.T) {
	clock := &manualClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"),
		WithStoreClock(clock.now), WithMaxAge(time.Minute))

	require.NoError(t, store.Save("tok"))
	clock.t = clock.t.Add(2 * time.Minute)

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileTokenStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, ok, err := NewFileTokenStore(path).Load()
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestDefaultTokenPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	path, err := DefaultTokenPath()
	require.NoError(t, err)
	assert.Equal(t, "token.json", filepath.Base(path))
	assert.Equal(t, "authctl", filepath.Base(filepath.Dir(path)))
}
