package bridge

import (
	_ "embed"

	"fables/internal/logging"
)

// EventName is the channel the document posts bridge messages on.
const EventName = "ipc"

// Target tags records that originate in the document.
const Target = "js"

// InitScript wraps the document's console methods so each call is also
// posted to the host as a JSON console message.
//
//go:embed init.js
var InitScript string

// Bridge receives raw messages from the document. It never replies.
type Bridge struct {
	log *logging.Logger
}

func New(log *logging.Logger) *Bridge {
	if log == nil {
		log = logging.Discard()
	}
	return &Bridge{log: log.Named(Target)}
}

// OnMessage logs console messages at their matching level. Anything that
// does not decode, or is not a console message, is dropped.
func (b *Bridge) OnMessage(raw string) {
	msg, err := Decode(raw)
	if err != nil {
		return
	}
	console, ok := msg.(ConsoleMessage)
	if !ok {
		return
	}
	level := LevelFor(console.Level)
	if !b.log.Enabled(level) {
		return
	}
	b.log.Log(level, console.Text())
}

// LevelFor maps a console method name to a log level.
func LevelFor(method string) logging.Level {
	switch method {
	case "error":
		return logging.Error
	case "warn":
		return logging.Warn
	case "info":
		return logging.Info
	default:
		return logging.Debug
	}
}
