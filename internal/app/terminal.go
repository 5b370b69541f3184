package app

import (
	"context"
	"fmt"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/objview/pkg/render"
)

// Run takes over the terminal and runs until ctx is cancelled or the user
// quits. The render loop, the input pump, the parameter server and the file
// watcher each get a goroutine; the first error stops them all.
func (a *App) Run(ctx context.Context) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	a.onResize(width, height)

	ctx, quit := context.WithCancel(ctx)
	defer quit()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.pumpEvents(ctx, term, quit) })
	g.Go(func() error { return a.renderLoop(ctx, term) })
	if a.osc != nil {
		g.Go(func() error { return a.osc.Serve(ctx) })
	}
	if a.watcher != nil {
		g.Go(func() error { return a.watcher.Run(ctx) })
	}

	err = g.Wait()
	a.log.Info().Err(err).Msg("viewer stopped")
	return err
}

func (a *App) pumpEvents(ctx context.Context, term *uv.Terminal, quit context.CancelFunc) error {
	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if a.dispatch(ev) {
				quit()
				return nil
			}
		}
	}
}

// dispatch routes one terminal event and reports whether to quit.
func (a *App) dispatch(ev any) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		a.onResize(ev.Width, ev.Height)
	case uv.KeyPressEvent:
		return a.onKeyPress(ev)
	case uv.KeyReleaseEvent:
		a.onKeyRelease(ev)
	case uv.MouseClickEvent:
		a.onMouseClick(ev.X, ev.Y)
	case uv.MouseReleaseEvent:
		a.onMouseRelease()
	case uv.MouseMotionEvent:
		a.onMouseMotion(ev.X, ev.Y)
	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			a.onWheel(true)
		case uv.MouseWheelDown:
			a.onWheel(false)
		}
	}
	return false
}

func (a *App) renderLoop(ctx context.Context, term *uv.Terminal) error {
	targetDuration := time.Second / time.Duration(a.cfg.FPS)
	lastFrame := time.Now()

	var (
		f  *frame
		tr *render.TerminalRenderer
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		a.mu.Lock()
		a.animate(dt)
		width, height, resized := a.width, a.height, a.resized
		a.resized = false
		st := a.snapshot()
		a.mu.Unlock()

		if f == nil || resized {
			term.Erase()
			term.Resize(width, height)
			tr = render.NewTerminalRenderer(term, width, height)
			fbWidth, fbHeight := tr.FramebufferSize()
			f = newFrame(fbWidth, fbHeight, a.cfg.EyeSeparation)
		}

		stats := a.drawFrame(f, st)

		tr.Render(f.Framebuffer())
		if err := tr.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		a.mu.Lock()
		a.hud.UpdateFPS()
		err := a.hud.Render(term, width, height, a.view, a.hudInfo(stats))
		if err == nil {
			err = a.Panel.Draw(term, 2, 2)
		}
		a.mu.Unlock()
		if err != nil {
			return fmt.Errorf("draw overlay: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(targetDuration - elapsed):
			}
		}
	}
}
