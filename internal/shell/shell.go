// Package shell owns the window and its rendering surface and runs the
// lifecycle loop that decides when the process ends.
package shell

import (
	"errors"
	"fmt"
	"sync"

	"fables/internal/logging"
	"fables/internal/protocol"
)

// State is a lifecycle stage of the shell.
type State int

const (
	Created State = iota
	Running
	Closing
	Terminated
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Closing:
		return "closing"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Loop is the event handler driven by the toolkit's event loop.
type Loop struct {
	mu    sync.Mutex
	state State
	title string
	log   *logging.Logger
}

func NewLoop(title string, log *logging.Logger) *Loop {
	if log == nil {
		log = logging.Discard()
	}
	return &Loop{title: title, log: log}
}

// State returns the current lifecycle stage.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Handle advances the state machine for one event. Once a close has been
// requested every further event is ignored and answered with Exit.
func (l *Loop) Handle(ev Event) ControlFlow {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state >= Closing {
		return Exit
	}
	switch ev.Kind {
	case EventInit:
		if l.state == Created {
			l.state = Running
			l.log.Infof("%s started", l.title)
		}
	case EventCloseRequested:
		l.state = Closing
		l.log.Debugf("close requested")
		return Exit
	default:
		l.log.Tracef("event %s", ev.Kind)
	}
	return Wait
}

func (l *Loop) terminate() {
	l.mu.Lock()
	l.state = Terminated
	l.mu.Unlock()
}

// Config describes the window and the entry document.
type Config struct {
	Title    string
	Width    int
	Height   int
	EntryURL string
	DevTools bool
}

// Shell wires the resolver and the message handler into a toolkit surface
// and runs the lifecycle loop.
type Shell struct {
	toolkit  Toolkit
	log      *logging.Logger
	cfg      Config
	resolver protocol.Resolver
	messages MessageHandler
	script   string

	loop    *Loop
	surface Surface
}

func New(tk Toolkit, log *logging.Logger, cfg Config, resolver protocol.Resolver, messages MessageHandler, initScript string) *Shell {
	if log == nil {
		log = logging.Discard()
	}
	return &Shell{
		toolkit:  tk,
		log:      log,
		cfg:      cfg,
		resolver: resolver,
		messages: messages,
		script:   initScript,
		loop:     NewLoop(cfg.Title, log),
	}
}

// State reports the lifecycle stage.
func (s *Shell) State() State {
	return s.loop.State()
}

// Start creates the window and the surface, registers the resolver and
// the message handler, and loads the entry URL. Any failure is a
// *StartupError and the loop must not be run.
func (s *Shell) Start() error {
	s.log.Tracef("start()")

	window, err := s.toolkit.NewWindow(WindowOptions{
		Title:  s.cfg.Title,
		Width:  s.cfg.Width,
		Height: s.cfg.Height,
	})
	if err != nil {
		return &StartupError{Kind: ErrWindowCreation, Err: err}
	}

	surface, err := s.toolkit.NewSurface(window, SurfaceOptions{
		Scheme:     protocol.Scheme,
		Resolver:   s.resolver,
		Messages:   s.messages,
		InitScript: s.script,
		DevTools:   s.cfg.DevTools,
	})
	if err != nil {
		return &StartupError{Kind: ErrToolkit, Detail: "surface creation", Err: err}
	}

	s.log.Infof("loading page: %s", s.cfg.EntryURL)
	if err := surface.Load(s.cfg.EntryURL); err != nil {
		return &StartupError{Kind: ErrURLSetting, Detail: s.cfg.EntryURL, Err: err}
	}
	s.surface = surface
	return nil
}

// Run blocks in the toolkit event loop until the window is closed.
func (s *Shell) Run() error {
	if s.surface == nil {
		return errors.New("shell not started")
	}
	defer s.loop.terminate()
	if err := s.surface.Run(s.loop.Handle); err != nil {
		return fmt.Errorf("%w: event loop: %w", ErrToolkit, err)
	}
	s.log.Debugf("event loop finished")
	return nil
}
