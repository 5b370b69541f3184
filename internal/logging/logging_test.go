package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objview.log")
	log, closer, err := New("debug", path, nil)
	require.NoError(t, err)

	log.Info().Str("component", "viewer").Msg("model loaded")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "model loaded", entry["message"])
	assert.Equal(t, "viewer", entry["component"])
	assert.Contains(t, entry, "time")
}

func TestNewBadLevel(t *testing.T) {
	_, _, err := New("loud", "", nil)
	assert.Error(t, err)
}

func TestStatusLineShowsInfoAndAbove(t *testing.T) {
	status := NewStatusLine()
	log, _, err := New("debug", "", status)
	require.NoError(t, err)

	log.Info().Msg("loaded image size")
	assert.Contains(t, status.Last(0), "loaded image size")

	log.Debug().Msg("set from network")
	assert.Contains(t, status.Last(0), "loaded image size", "debug stays out of the status line")

	log.Error().Str("model", "x.obj").Msg("error reading model")
	assert.Contains(t, status.Last(0), "error reading model")
	assert.Contains(t, status.Last(0), "x.obj")
}

func TestStatusLineExpires(t *testing.T) {
	now := time.Unix(100, 0)
	status := &StatusLine{now: func() time.Time { return now }}
	_, err := status.Write([]byte("first\nsecond\n"))
	require.NoError(t, err)
	assert.Equal(t, "second", status.Last(time.Second))

	now = now.Add(2 * time.Second)
	assert.Empty(t, status.Last(time.Second))
	assert.Equal(t, "second", status.Last(0))
}
