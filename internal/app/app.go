// Package app runs the viewer: it wires the model manager, the parameter
// panel, the network parameter server and the file watcher together and
// drives the animate/draw loop in the terminal.
package app

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taigrr/objview/internal/config"
	"github.com/taigrr/objview/internal/gui"
	"github.com/taigrr/objview/internal/logging"
	"github.com/taigrr/objview/internal/oscserver"
	"github.com/taigrr/objview/internal/param"
	"github.com/taigrr/objview/internal/viewer"
	"github.com/taigrr/objview/internal/watch"
	"github.com/taigrr/objview/pkg/math3d"
)

const (
	// autoRotateStep is how far the model turns per frame, in degrees.
	autoRotateStep = 0.5

	torqueStrength = 3.0
	zoomStep       = 0.5
	// Nav position limits along Z. The model rests four units away and a
	// fitted model reaches at most sqrt(3) from its center, so it stays in
	// front of the camera.
	minNavZ = -1.9
	maxNavZ = 16.0
)

// App is one viewer node.
type App struct {
	cfg    config.Config
	log    zerolog.Logger
	status *logging.StatusLine

	Manager    *viewer.Manager
	VR         *param.Bool
	Background *param.Color
	Registry   *param.Registry
	Panel      *gui.Panel

	osc     *oscserver.Server
	watcher *watch.Watcher

	// mu guards everything below; the input and render goroutines share it.
	mu       sync.Mutex
	rotation *RotationState
	view     *ViewState
	hud      *HUD
	nav      math3d.Vec3
	torque   struct{ pitch, yaw, roll float64 }

	mouseDown              bool
	lastMouseX, lastMouseY int
	width, height          int // terminal cells
	resized                bool

	pendingPick       *cell
	pendingScreenshot bool
}

type cell struct{ x, y int }

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger and the status line the HUD shows.
func WithLogger(log zerolog.Logger, status *logging.StatusLine) Option {
	return func(a *App) {
		a.log = log
		a.status = status
	}
}

// WithManager replaces the model manager, mainly for tests.
func WithManager(m *viewer.Manager) Option {
	return func(a *App) { a.Manager = m }
}

// New builds the node described by cfg. Parameters are registered and the
// network server, if enabled, is bound before New returns.
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	bg, _ := config.ParseColor(cfg.Background)

	a := &App{
		cfg:        cfg,
		log:        zerolog.Nop(),
		VR:         param.NewBool("VR", "", cfg.Stereo),
		Background: param.NewColor("background", "", bg),
		Registry:   param.NewRegistry(),
		rotation:   NewRotationState(cfg.FPS),
		view:       NewViewState(),
		hud:        NewHUD(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Manager == nil {
		a.Manager = viewer.New(viewer.WithLogger(a.log))
	}
	a.log = a.log.With().Str("component", "app").Logger()

	a.Panel = gui.NewPanel(gui.Params{
		VR:            a.VR,
		Background:    a.Background,
		UseTexture:    a.Manager.UseTexture,
		AutoRotate:    a.Manager.AutoRotate,
		RotationAngle: a.Manager.RotationAngle,
		Color:         a.Manager.Color,
		ModelFile:     a.Manager.ModelFile,
		ModelTexture:  a.Manager.ModelTexture,
	})

	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	a.create()
	return a, nil
}

// init publishes the parameters and starts the network side.
func (a *App) init() error {
	if err := a.Registry.Register(a.Manager.Params()...); err != nil {
		return err
	}
	if err := a.Registry.Register(a.Manager.Pickable.Pose, a.Background, a.VR); err != nil {
		return err
	}

	if a.cfg.Watch {
		w, err := watch.New(a.log)
		if err != nil {
			return err
		}
		a.watcher = w
		a.Manager.ModelFile.RegisterChangeCallback(a.trackFile("model", a.Manager.LoadModel))
		a.Manager.ModelTexture.RegisterChangeCallback(a.trackFile("texture", a.Manager.LoadTexture))
	}

	if !a.cfg.OSC.Enabled {
		return nil
	}
	srv, err := oscserver.New(a.Registry, a.cfg.OSC.Listen, a.log)
	if err != nil {
		return err
	}
	a.osc = srv
	for _, peer := range a.cfg.OSC.Peers {
		l, err := oscserver.ParseListener(peer)
		if err != nil {
			return err
		}
		if a.cfg.Replica {
			srv.Subscribe(l)
		} else {
			srv.AddListener(l)
		}
	}
	return nil
}

func (a *App) trackFile(slot string, reload func(string)) func(string, any) {
	return func(path string, _ any) {
		if err := a.watcher.Track(slot, path, reload); err != nil {
			a.log.Warn().Err(err).Str("path", path).Msg("cannot watch file")
		}
	}
}

// create sets up callbacks and, on the primary, the default files.
func (a *App) create() {
	a.VR.RegisterChangeCallback(func(on bool, _ any) {
		a.log.Info().Bool("stereo", on).Msg("VR toggled")
	})

	if a.Primary() {
		if a.cfg.Model != "" {
			a.Manager.ModelFile.Set(a.cfg.Model)
		}
		if a.cfg.Texture != "" {
			a.Manager.ModelTexture.Set(a.cfg.Texture)
		}
	}
	a.log.Info().Bool("primary", a.Primary()).Int("params", a.Registry.Len()).Msg("viewer created")
}

// Primary reports whether this node drives animation. Replicas follow the
// values they receive.
func (a *App) Primary() bool { return !a.cfg.Replica }

// Animate advances the simulation by one frame.
func (a *App) Animate(dt float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.animate(dt)
}

func (a *App) animate(dt float64) {
	if a.Primary() {
		if a.Manager.AutoRotate.Get() {
			angle := a.Manager.RotationAngle.Get() + autoRotateStep
			if angle > 360 {
				angle -= 360
			}
			a.Manager.RotationAngle.Set(angle)
		}
		a.Manager.Pickable.Pose.Set(a.nav.Negate())
	}

	// Key release events are unreliable, so held torque decays on its own.
	a.rotation.ApplyImpulse(a.torque.pitch*dt, a.torque.yaw*dt, a.torque.roll*dt)
	a.torque.pitch *= 0.9
	a.torque.yaw *= 0.9
	a.torque.roll *= 0.9
	a.rotation.Update()
}

// zoom moves the nav position along Z.
func (a *App) zoom(dz float64) {
	a.nav.Z = math.Min(maxNavZ, math.Max(minNavZ, a.nav.Z+dz))
}

// Close releases the socket and watcher.
func (a *App) Close() error {
	var errs []error
	if a.osc != nil {
		errs = append(errs, a.osc.Close())
	}
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	return errors.Join(errs...)
}
