package shell

import "fables/internal/protocol"

// EventKind identifies a toolkit event.
type EventKind int

const (
	// EventInit is delivered once, on the loop's first iteration.
	EventInit EventKind = iota
	// EventDomReady fires after the entry document has loaded.
	EventDomReady
	// EventCloseRequested is the user asking to close the window.
	EventCloseRequested
	// EventOther covers everything the loop does not act on.
	EventOther
)

func (k EventKind) String() string {
	switch k {
	case EventInit:
		return "init"
	case EventDomReady:
		return "dom-ready"
	case EventCloseRequested:
		return "close-requested"
	default:
		return "other"
	}
}

// Event is a lifecycle or window event from the toolkit.
type Event struct {
	Kind EventKind
}

// ControlFlow is the loop's answer to an event.
type ControlFlow int

const (
	// Wait blocks until the next event arrives.
	Wait ControlFlow = iota
	// Exit stops the toolkit loop.
	Exit
)

// MessageHandler receives raw string messages posted by the document.
type MessageHandler interface {
	OnMessage(raw string)
}

// WindowOptions describe the single native window.
type WindowOptions struct {
	Title  string
	Width  int
	Height int
}

// SurfaceOptions are registered with the rendering surface before any
// document is loaded.
type SurfaceOptions struct {
	Scheme     string
	Resolver   protocol.Resolver
	Messages   MessageHandler
	InitScript string
	DevTools   bool
}

// Window is a native window created by a Toolkit.
type Window interface {
	Options() WindowOptions
}

// Surface renders documents inside a Window.
type Surface interface {
	// Load points the surface at a custom-scheme URL.
	Load(url string) error
	// Run blocks in the toolkit event loop, handing every event to handle,
	// until handle answers Exit or the toolkit shuts down.
	Run(handle func(Event) ControlFlow) error
}

// Toolkit is the windowing and rendering collaborator.
type Toolkit interface {
	NewWindow(opts WindowOptions) (Window, error)
	NewSurface(w Window, opts SurfaceOptions) (Surface, error)
}
