package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"fables/internal/bridge"
	"fables/internal/logging"
	"fables/internal/protocol"
	"fables/internal/shell"

	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

// Surface is the Wails webview. Wails always navigates to "/", so the
// entry URL given to Load becomes the document served for "/".
type Surface struct {
	log    *logging.Logger
	wire   bindings
	window shell.WindowOptions
	opts   shell.SurfaceOptions

	authority string
	entry     string

	mu     sync.Mutex
	handle func(shell.Event) shell.ControlFlow
	exited bool
	stop   func()
}

// Load sets the entry document. The URL must use the registered scheme
// and name a path, e.g. app://local/play.htm.
func (s *Surface) Load(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	scheme := s.opts.Scheme
	if scheme == "" {
		scheme = protocol.Scheme
	}
	if u.Scheme != scheme {
		return fmt.Errorf("scheme %q is not registered", u.Scheme)
	}
	entry := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || entry == "" {
		return errors.New("URL must name an authority and a document path")
	}
	s.authority = u.Host
	s.entry = entry
	return nil
}

// Run starts Wails and blocks until the window is gone.
func (s *Surface) Run(handle func(shell.Event) shell.ControlFlow) error {
	if s.entry == "" {
		return errors.New("no document loaded")
	}
	s.mu.Lock()
	s.handle = handle
	s.mu.Unlock()
	return s.wire.run(s.appOptions())
}

func (s *Surface) appOptions() *options.App {
	level := LogLevel(s.log.Level())
	return &options.App{
		Title:  s.window.Title,
		Width:  s.window.Width,
		Height: s.window.Height,
		AssetServer: &assetserver.Options{
			Handler: protocol.NewHandler(s.opts.Resolver, s.log.Named("protocol"), protocol.HandlerOptions{
				Scheme:    s.opts.Scheme,
				Authority: s.authority,
				Index:     s.entry,
				Script:    s.opts.InitScript,
			}),
		},
		Logger:             NewLogger(s.log.Named("wails")),
		LogLevel:           level,
		LogLevelProduction: level,
		BackgroundColour:   &options.RGBA{R: 20, G: 20, B: 20, A: 1},
		OnStartup:          s.onStartup,
		OnDomReady:         s.onDomReady,
		OnBeforeClose:      s.onBeforeClose,
		OnShutdown:         s.onShutdown,
		Debug:              options.Debug{OpenInspectorOnStartup: s.opts.DevTools},
	}
}

func (s *Surface) onStartup(ctx context.Context) {
	if s.opts.Messages != nil {
		stop := s.wire.eventsOn(ctx, bridge.EventName, func(data ...interface{}) {
			for _, d := range data {
				s.deliver(d)
			}
		})
		s.mu.Lock()
		s.stop = stop
		s.mu.Unlock()
	}
	s.dispatch(ctx, shell.Event{Kind: shell.EventInit})
}

// deliver hands one event payload to the message handler as raw text.
func (s *Surface) deliver(data interface{}) {
	switch v := data.(type) {
	case string:
		s.opts.Messages.OnMessage(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			s.log.Tracef("drop %T message: %v", v, err)
			return
		}
		s.opts.Messages.OnMessage(string(b))
	}
}

// onDomReady runs the init script again for documents that did not load it
// from their <head>; the script ignores a second run.
func (s *Surface) onDomReady(ctx context.Context) {
	if s.opts.InitScript != "" {
		s.wire.execJS(ctx, s.opts.InitScript)
	}
	s.dispatch(ctx, shell.Event{Kind: shell.EventDomReady})
}

// onBeforeClose lets the window close only when the loop answers Exit.
func (s *Surface) onBeforeClose(ctx context.Context) (prevent bool) {
	return s.dispatch(ctx, shell.Event{Kind: shell.EventCloseRequested}) != shell.Exit
}

func (s *Surface) onShutdown(ctx context.Context) {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
	s.log.Tracef("surface shut down")
}

// dispatch feeds one event to the loop. After an Exit answer no further
// events reach the loop; an Exit outside a close request asks Wails to quit.
func (s *Surface) dispatch(ctx context.Context, ev shell.Event) shell.ControlFlow {
	s.mu.Lock()
	if s.exited || s.handle == nil {
		s.mu.Unlock()
		return shell.Exit
	}
	flow := s.handle(ev)
	if flow == shell.Exit {
		s.exited = true
	}
	s.mu.Unlock()

	if flow == shell.Exit && ev.Kind != shell.EventCloseRequested {
		s.wire.quit(ctx)
	}
	return flow
}
