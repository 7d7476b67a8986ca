// Package ui implements the shell's toolkit interfaces on top of Wails.
package ui

import (
	"context"
	"errors"
	"fmt"

	"fables/internal/logging"
	"fables/internal/shell"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	wruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// bindings are the Wails entry points the surface calls. Tests swap them.
type bindings struct {
	run      func(app *options.App) error
	eventsOn func(ctx context.Context, name string, callback func(optionalData ...interface{})) func()
	execJS   func(ctx context.Context, js string)
	quit     func(ctx context.Context)
}

func wailsBindings() bindings {
	return bindings{
		run:      wails.Run,
		eventsOn: wruntime.EventsOn,
		execJS:   wruntime.WindowExecJS,
		quit:     wruntime.Quit,
	}
}

// Toolkit creates the Wails window and webview.
type Toolkit struct {
	log  *logging.Logger
	wire bindings
}

func NewToolkit(log *logging.Logger) *Toolkit {
	if log == nil {
		log = logging.Discard()
	}
	return &Toolkit{log: log, wire: wailsBindings()}
}

type window struct {
	opts shell.WindowOptions
}

func (w *window) Options() shell.WindowOptions { return w.opts }

// NewWindow validates the window options. Wails creates the native window
// itself once the event loop starts.
func (t *Toolkit) NewWindow(opts shell.WindowOptions) (shell.Window, error) {
	if opts.Title == "" {
		return nil, errors.New("window title is empty")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", opts.Width, opts.Height)
	}
	return &window{opts: opts}, nil
}

// NewSurface binds a webview to w with the resolver and message handler
// registered up front.
func (t *Toolkit) NewSurface(w shell.Window, opts shell.SurfaceOptions) (shell.Surface, error) {
	win, ok := w.(*window)
	if !ok {
		return nil, fmt.Errorf("window %T was not created by this toolkit", w)
	}
	if opts.Resolver == nil {
		return nil, errors.New("no protocol resolver registered")
	}
	return &Surface{
		log:    t.log,
		wire:   t.wire,
		window: win.opts,
		opts:   opts,
	}, nil
}
