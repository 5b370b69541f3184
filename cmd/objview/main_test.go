package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/objview/internal/config"
)

// parse runs the root command's flag parsing and returns the config it
// would start with.
func parse(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	cmd, f := rootCmd()
	require.NoError(t, cmd.ParseFlags(args))
	return loadConfig(cmd, *f, cmd.Flags().Args())
}

func TestDefaults(t *testing.T) {
	cfg, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestModelArgDropsDefaultTexture(t *testing.T) {
	cfg, err := parse(t, "teapot.obj")
	require.NoError(t, err)
	assert.Equal(t, "teapot.obj", cfg.Model)
	assert.Empty(t, cfg.Texture)

	cfg, err = parse(t, "--texture", "brick.png", "teapot.obj")
	require.NoError(t, err)
	assert.Equal(t, "brick.png", cfg.Texture)
}

func TestFlagsOverride(t *testing.T) {
	cfg, err := parse(t,
		"--fps", "30", "--bg", "#102030", "--no-osc", "--replica", "--stereo",
		"--osc-peer", "10.0.0.2:9010", "--osc-peer", "10.0.0.3:9010",
	)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, "#102030", cfg.Background)
	assert.False(t, cfg.OSC.Enabled)
	assert.True(t, cfg.Replica)
	assert.True(t, cfg.Stereo)
	assert.Equal(t, []string{"10.0.0.2:9010", "10.0.0.3:9010"}, cfg.OSC.Peers)
}

func TestConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objview.toml")
	require.NoError(t, os.WriteFile(path, []byte("fps = 24\nbackground = \"0,0,0\"\n"), 0o644))

	cfg, err := parse(t, "--config", path, "--bg", "1,2,3")
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.FPS)
	assert.Equal(t, "1,2,3", cfg.Background)
}

func TestInvalidFlags(t *testing.T) {
	_, err := parse(t, "--fps", "0")
	assert.Error(t, err)

	_, err = parse(t, "--config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
