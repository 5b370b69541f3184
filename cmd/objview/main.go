// objview - networked 3D model viewer for the terminal.
// View OBJ and glTF files with shared parameters over OSC.
//
// Controls:
//
//	Mouse drag  - Rotate model (yaw/pitch)
//	Click       - Select the mesh under the pointer
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Q/E         - Roll left/right
//	Space       - Apply random impulse
//	R           - Reset view
//	G           - Toggle the parameter panel
//	T           - Toggle texture on/off
//	X           - Toggle wireframe mode (x-ray)
//	L           - Light positioning mode (move mouse, click to set, Esc to cancel)
//	P           - Save a screenshot
//	?           - Toggle HUD overlay
//	+/-         - Adjust zoom
//	Esc         - Quit (or cancel light mode)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/objview/internal/app"
	"github.com/taigrr/objview/internal/config"
	"github.com/taigrr/objview/internal/logging"
)

type flags struct {
	config    string
	texture   string
	fps       int
	bg        string
	oscListen string
	oscPeers  []string
	noOSC     bool
	replica   bool
	watch     bool
	stereo    bool
	logLevel  string
	logFile   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, _ := rootCmd()
	if err := fang.Execute(ctx, cmd); err != nil {
		os.Exit(1)
	}
}

func rootCmd() (*cobra.Command, *flags) {
	var f flags
	cmd := &cobra.Command{
		Use:   "objview [model.obj|model.gltf|model.glb]",
		Short: "Networked 3D model viewer for the terminal",
		Long: `objview renders OBJ and glTF models in the terminal.

Every viewer parameter is published over OSC, so a primary node can drive
any number of replicas. Press g for the parameter panel.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "TOML config file")
	fl.StringVarP(&f.texture, "texture", "t", "", "texture image (PNG/JPG/...)")
	fl.IntVar(&f.fps, "fps", 60, "target FPS")
	fl.StringVar(&f.bg, "bg", "30,30,40", "background color (R,G,B or #rrggbb)")
	fl.StringVar(&f.oscListen, "osc-listen", "127.0.0.1:9010", "OSC listen address")
	fl.StringSliceVar(&f.oscPeers, "osc-peer", nil, "OSC peer host:port (repeatable)")
	fl.BoolVar(&f.noOSC, "no-osc", false, "disable the OSC server")
	fl.BoolVar(&f.replica, "replica", false, "follow a primary instead of animating")
	fl.BoolVar(&f.watch, "watch", false, "reload the model and texture when they change on disk")
	fl.BoolVar(&f.stereo, "stereo", false, "start in side-by-side stereo")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fl.StringVar(&f.logFile, "log-file", "", "write JSON logs to this file")
	return cmd, &f
}

// loadConfig reads the config file, if any, then applies the flags that
// were given explicitly.
func loadConfig(cmd *cobra.Command, f flags, args []string) (config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if len(args) == 1 {
		cfg.Model = args[0]
		if !changed("texture") {
			cfg.Texture = ""
		}
	}
	if changed("texture") {
		cfg.Texture = f.texture
	}
	if changed("fps") {
		cfg.FPS = f.fps
	}
	if changed("bg") {
		cfg.Background = f.bg
	}
	if changed("osc-listen") {
		cfg.OSC.Listen = f.oscListen
	}
	if changed("osc-peer") {
		cfg.OSC.Peers = f.oscPeers
	}
	if changed("no-osc") {
		cfg.OSC.Enabled = !f.noOSC
	}
	if changed("replica") {
		cfg.Replica = f.replica
	}
	if changed("watch") {
		cfg.Watch = f.watch
	}
	if changed("stereo") {
		cfg.Stereo = f.stereo
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-file") {
		cfg.Log.File = f.logFile
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg config.Config) error {
	status := logging.NewStatusLine()
	log, closer, err := logging.New(cfg.Log.Level, cfg.Log.File, status)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := app.New(cfg, app.WithLogger(log, status))
	if err != nil {
		return fmt.Errorf("start viewer: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
