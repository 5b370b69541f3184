package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/objview/internal/param"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "objview.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "data/ducky.obj", cfg.Model)
	assert.Equal(t, "data/hubble.jpg", cfg.Texture)
	assert.Equal(t, "127.0.0.1:9010", cfg.OSC.Listen)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
model = "scene.glb"
fps = 30
background = "#000000"

[osc]
listen = "0.0.0.0:9100"
peers = ["10.0.0.2:9010", "10.0.0.3:9010"]

[log]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "scene.glb", cfg.Model)
	assert.Equal(t, "data/hubble.jpg", cfg.Texture, "unset keys keep defaults")
	assert.Equal(t, 30, cfg.FPS)
	assert.True(t, cfg.OSC.Enabled)
	assert.Equal(t, []string{"10.0.0.2:9010", "10.0.0.3:9010"}, cfg.OSC.Peers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.toml") }},
		{"bad syntax", func(t *testing.T) string { return writeConfig(t, "fps = = 3") }},
		{"unknown key", func(t *testing.T) string { return writeConfig(t, "fsp = 30") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.path(t))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"bad background", func(c *Config) { c.Background = "blue" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"no listen address", func(c *Config) { c.OSC.Listen = "" }},
		{"negative eye separation", func(c *Config) { c.EyeSeparation = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    param.RGBA
		wantErr bool
	}{
		{"255,0,0", param.RGBA{R: 1, A: 1}, false},
		{" 0,0,255 ", param.RGBA{B: 1, A: 1}, false},
		{"#00ff00", param.RGBA{G: 1, A: 1}, false},
		{"300,0,0", param.RGBA{}, true},
		{"red", param.RGBA{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseColor(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDeltaSlice(t, []float64{tc.want.R, tc.want.G, tc.want.B, tc.want.A},
				[]float64{got.R, got.G, got.B, got.A}, 1e-9)
		})
	}
}
