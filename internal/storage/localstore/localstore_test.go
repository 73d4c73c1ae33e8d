package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoadMissing(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	var v snapshot
	found, err := s.Load("panier", &v)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, v)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	in := []snapshot{{Name: "Crêpe Nutella", Count: 2}, {Name: "Crêpe du chef", Count: 1}}
	require.NoError(t, s.Save("panier", in))

	var out []snapshot
	found, err := s.Load("panier", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)

	// One file per key, directly under the snapshot dir.
	_, err = os.Stat(filepath.Join(dir, "panier.json"))
	assert.NoError(t, err)
}

func TestSaveReplaces(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save("panier", []snapshot{{Name: "a", Count: 1}, {Name: "b", Count: 2}}))
	require.NoError(t, s.Save("panier", []snapshot{{Name: "c", Count: 3}}))

	var out []snapshot
	found, err := s.Load("panier", &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, out, 1)
	assert.Equal(t, "c", out[0].Name)
}

func TestKeysAreIsolated(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save("panier", snapshot{Name: "cart"}))
	require.NoError(t, s.Save("temoignages", snapshot{Name: "comments"}))

	var v snapshot
	found, err := s.Load("temoignages", &v)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "comments", v.Name)
}

func TestKeyCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "snapshots"))
	require.NoError(t, err)

	require.NoError(t, s.Save("../escape", snapshot{Name: "x"}))

	// The separator is neutralized; the file stays inside the store dir.
	_, err = os.Stat(filepath.Join(dir, "escape.json"))
	assert.True(t, os.IsNotExist(err))

	var v snapshot
	found, err := s.Load("../escape", &v)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "panier.json"), []byte("{not json"), 0o644))

	var v snapshot
	_, err = s.Load("panier", &v)
	assert.Error(t, err)
}
