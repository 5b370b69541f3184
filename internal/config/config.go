// Package config loads the viewer settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/taigrr/objview/internal/param"
)

// Config is the complete set of settings. Command-line flags are applied
// over it.
type Config struct {
	Model   string `toml:"model"`
	Texture string `toml:"texture"`

	FPS        int    `toml:"fps"`
	Background string `toml:"background"` // "#rrggbb" or "R,G,B"

	// Stereo starts with side-by-side rendering on.
	Stereo        bool    `toml:"stereo"`
	EyeSeparation float64 `toml:"eye_separation"`

	// Replica nodes follow parameters from the network and don't animate
	// or load defaults.
	Replica bool `toml:"replica"`
	// Watch reloads the model and texture when their files change.
	Watch bool `toml:"watch"`

	OSC OSC `toml:"osc"`
	Log Log `toml:"log"`
}

// OSC configures the parameter server.
type OSC struct {
	Enabled bool     `toml:"enabled"`
	Listen  string   `toml:"listen"`
	Peers   []string `toml:"peers"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Model:         "data/ducky.obj",
		Texture:       "data/hubble.jpg",
		FPS:           60,
		Background:    "30,30,40",
		EyeSeparation: 0.2,
		OSC: OSC{
			Enabled: true,
			Listen:  "127.0.0.1:9010",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. Unknown keys are an error so typos
// don't go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if _, err := ParseColor(c.Background); err != nil {
		errs = append(errs, err)
	}
	if c.EyeSeparation < 0 {
		errs = append(errs, fmt.Errorf("eye_separation must not be negative"))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	if c.OSC.Enabled && c.OSC.Listen == "" {
		errs = append(errs, errors.New("osc.listen is empty"))
	}
	return errors.Join(errs...)
}

// ParseColor reads "#rrggbb" or "R,G,B" with 0-255 components.
func ParseColor(s string) (param.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return param.ParseHex(s)
	}
	var r, g, b int
	if n, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil || n != 3 {
		return param.RGBA{}, fmt.Errorf("parse colour %q: want #rrggbb or R,G,B", s)
	}
	for _, v := range []int{r, g, b} {
		if v < 0 || v > 255 {
			return param.RGBA{}, fmt.Errorf("parse colour %q: component %d out of range", s, v)
		}
	}
	return param.RGBA{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}, nil
}
