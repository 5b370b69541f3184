package gui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSelectorListing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "models"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), nil, 0o644))

	var s FileSelector
	require.NoError(t, s.Start(dir))
	assert.True(t, s.IsActive())
	assert.Equal(t, []Entry{
		{Name: "..", Dir: true},
		{Name: "models", Dir: true},
		{Name: "a.png"},
		{Name: "b.png"},
	}, s.Entries())
}

func TestFileSelectorNavigation(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "models")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "cube.glb"), nil, 0o644))

	s := FileSelector{Filter: ExtFilter(".glb")}
	require.NoError(t, s.Start(dir))

	s.Move(1)
	_, picked, err := s.Enter()
	require.NoError(t, err)
	assert.False(t, picked)
	assert.Equal(t, sub, s.Dir())

	s.Move(10)
	path, picked, err := s.Enter()
	require.NoError(t, err)
	require.True(t, picked)
	assert.Equal(t, filepath.Join(sub, "cube.glb"), path)
	assert.Equal(t, path, s.Selection())
	assert.False(t, s.IsActive())
}

func TestFileSelectorParent(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "x")
	require.NoError(t, os.Mkdir(sub, 0o755))

	var s FileSelector
	require.NoError(t, s.Start(sub))
	_, _, err := s.Enter()
	require.NoError(t, err)
	assert.Equal(t, dir, s.Dir())
}

func TestFileSelectorErrors(t *testing.T) {
	var s FileSelector
	assert.Error(t, s.Start(filepath.Join(t.TempDir(), "missing")))
	assert.False(t, s.IsActive())

	_, picked, err := s.Enter()
	assert.NoError(t, err)
	assert.False(t, picked)
}

func TestExtFilter(t *testing.T) {
	f := ExtFilter(".obj", ".glb")
	assert.True(t, f("duck.OBJ"))
	assert.True(t, f("duck.glb"))
	assert.False(t, f("duck.png"))
}
