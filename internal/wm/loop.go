package wm

import (
	"context"
	"fmt"
	"time"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/tiling"
)

type call struct {
	fn   func(*WM) error
	done chan error
}

// Run is the dispatcher: it drains pending display events, runs queued
// remote calls, repaints every bar and sleeps the poll interval, until a
// quit command clears the running flag. Cancelling ctx acts like quit.
// A backend error ends Run with that error.
func (w *WM) Run(ctx context.Context) error {
	defer close(w.stopped)

	timer := time.NewTimer(w.cfg.PollInterval)
	defer timer.Stop()

	w.logger.Info("dispatcher started", "poll_interval", w.cfg.PollInterval)
	for w.running {
		if err := w.drainEvents(); err != nil {
			return err
		}
		w.drainCalls()
		w.drawBars()
		if !w.running {
			break
		}

		timer.Reset(w.cfg.PollInterval)
		select {
		case <-ctx.Done():
			w.running = false
		case c := <-w.calls:
			w.runCall(c)
		case <-timer.C:
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}
	w.logger.Info("dispatcher stopped")
	return nil
}

func (w *WM) drainEvents() error {
	for {
		ev, err := w.backend.PollEvent()
		if err != nil {
			return fmt.Errorf("display connection: %w", err)
		}
		if ev == nil {
			return nil
		}
		w.handle(ev)
	}
}

func (w *WM) drainCalls() {
	for {
		select {
		case c := <-w.calls:
			w.runCall(c)
		default:
			return
		}
	}
}

func (w *WM) runCall(c call) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("remote call panic recovered", "error", r)
				err = fmt.Errorf("remote call panicked: %v", r)
			}
		}()
		err = c.fn(w)
	}()
	c.done <- err
}

// Do runs fn on the dispatcher goroutine and waits for it. It is the only
// method safe to call from other goroutines.
func (w *WM) Do(ctx context.Context, fn func(*WM) error) error {
	c := call{fn: fn, done: make(chan error, 1)}
	select {
	case w.calls <- c:
	case <-w.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.done:
		return err
	case <-w.stopped:
		// The loop may have run the call just before exiting.
		select {
		case err := <-c.done:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload applies a new configuration. Bindings are compiled first, so a
// config that does not compile leaves the running one untouched. Monitor
// state such as mfact, nmaster and the selected layouts is kept.
func (w *WM) Reload(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	keys, buttons, table, err := w.compileBindings(cfg)
	if err != nil {
		return err
	}

	w.cfg = cfg
	w.keys, w.buttons, w.keyTable = keys, buttons, table
	w.backend.SetAppearance(appearance(cfg))
	w.grabKeys()

	mask := cfg.TagMask()
	w.barHeight = w.resolveBarHeight(cfg)
	for _, m := range w.mons {
		for i := range m.TagSet {
			if m.TagSet[i] &= mask; m.TagSet[i] == 0 {
				m.TagSet[i] = 1
			}
		}
		w.updateBarPos(m)
		if m.BarWin != 0 {
			w.backend.MoveBar(m.BarWin, w.barRect(m))
		}
	}
	for _, c := range w.clients {
		if c.Tags &= mask; c.Tags == 0 {
			c.Tags = c.Mon.TagSet[c.Mon.SelTags]
		}
		if !c.IsFullscreen {
			c.BW = cfg.BorderWidth
			w.backend.SetBorderWidth(c.Win, c.BW)
		}
		w.grabButtons(c, c == w.Selected())
	}
	w.focus(nil)
	w.arrange(nil)
	w.logger.Info("configuration reloaded", "tags", len(cfg.Tags), "keys", len(keys))
	return nil
}

// Cleanup releases every client back to the display: all tags are shown,
// clients are unmanaged with their original borders restored, and bars are
// destroyed.
func (w *WM) Cleanup() {
	w.View(Arg{UInt: ^uint32(0)})
	w.selmon.Layouts[w.selmon.SelLayout] = tiling.KindFloat
	for _, m := range w.mons {
		for len(m.stack) > 0 {
			w.unmanage(w.clients[m.stack[0]], false)
		}
	}
	w.backend.GrabKeys(nil)
	for _, m := range w.mons {
		if m.BarWin != 0 {
			w.backend.DestroyBar(m.BarWin)
			m.BarWin = 0
		}
	}
	w.backend.FocusRoot()
	w.backend.SetClientList(nil)
	w.backend.Sync()
	w.logger.Info("released all clients")
}
