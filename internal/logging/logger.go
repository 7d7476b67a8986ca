package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// TimeFormat is the local timestamp layout at the start of every line.
const TimeFormat = "2006-01-02T15:04:05.000"

// DefaultTarget names records logged by the host process itself.
const DefaultTarget = "fables"

// core is shared by every Logger derived from the same Open/New call.
type core struct {
	mu      sync.Mutex
	out     io.Writer
	closer  io.Closer
	level   Level
	threads *ThreadRegistry
	now     func() time.Time
	styles  map[Level]lipgloss.Style
}

// Logger writes line-oriented records to a single sink:
//
//	2025-01-23T14:30:22.123 [0] INFO [fables] - loading page: app://local/play.htm
//
// A Logger is safe for concurrent use. Named loggers share the sink, the
// threshold and the thread registry of their parent.
type Logger struct {
	core   *core
	target string
}

// Option customises a Logger built by New.
type Option func(*core)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *core) { c.now = now }
}

// WithThreads shares a thread registry between loggers.
func WithThreads(r *ThreadRegistry) Option {
	return func(c *core) { c.threads = r }
}

// WithColor forces level coloring on or off regardless of the sink.
func WithColor(enabled bool) Option {
	return func(c *core) {
		if !enabled {
			c.styles = nil
			return
		}
		c.styles = levelStyles(lipgloss.NewRenderer(c.out))
	}
}

// Open builds the process logger from the command line values. An unknown
// level disables logging. When filePath is set the file is created (or
// truncated); if that fails, or no path is given, records go to stderr.
func Open(level string, filePath string) *Logger {
	threshold, _ := ParseLevel(level)
	if filePath != "" {
		if f, err := os.Create(filePath); err == nil {
			l := New(f, threshold)
			l.core.closer = f
			return l
		}
	}
	return New(os.Stderr, threshold)
}

// New returns a logger writing to w at the given threshold. Level names are
// colored when w is a terminal.
func New(w io.Writer, threshold Level, opts ...Option) *Logger {
	c := &core{
		out:     w,
		level:   threshold,
		threads: NewThreadRegistry(),
		now:     time.Now,
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.styles = levelStyles(lipgloss.NewRenderer(f))
	}
	for _, opt := range opts {
		opt(c)
	}
	return &Logger{core: c, target: DefaultTarget}
}

// Discard returns a logger that never writes.
func Discard() *Logger {
	return New(io.Discard, Off)
}

func levelStyles(r *lipgloss.Renderer) map[Level]lipgloss.Style {
	return map[Level]lipgloss.Style{
		Error: r.NewStyle().Foreground(lipgloss.Color("1")),
		Warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		Info:  r.NewStyle().Foreground(lipgloss.Color("2")),
		Debug: r.NewStyle().Foreground(lipgloss.Color("4")),
		Trace: r.NewStyle().Foreground(lipgloss.Color("5")),
	}
}

// Named returns a logger that tags its records with target.
func (l *Logger) Named(target string) *Logger {
	return &Logger{core: l.core, target: target}
}

// Target is the name records from this logger are tagged with.
func (l *Logger) Target() string { return l.target }

// Level is the configured threshold.
func (l *Logger) Level() Level { return l.core.level }

// Threads exposes the registry used to tag records.
func (l *Logger) Threads() *ThreadRegistry { return l.core.threads }

// Enabled reports whether a record at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l.core.level.allows(level)
}

// Logf formats and writes one record. Nothing is formatted when the level
// is below the threshold.
func (l *Logger) Logf(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.write(level, msg)
}

// Log writes msg verbatim.
func (l *Logger) Log(level Level, msg string) {
	if !l.Enabled(level) {
		return
	}
	l.write(level, msg)
}

func (l *Logger) Errorf(format string, args ...any) { l.Logf(Error, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.Logf(Warn, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.Logf(Info, format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.Logf(Debug, format, args...) }
func (l *Logger) Tracef(format string, args ...any) { l.Logf(Trace, format, args...) }

func (l *Logger) write(level Level, msg string) {
	c := l.core
	id := c.threads.Current()

	name := level.String()
	if style, ok := c.styles[level]; ok {
		name = style.Render(name)
	}

	var b strings.Builder
	b.Grow(len(msg) + len(l.target) + 48)
	b.WriteString(c.now().Format(TimeFormat))
	fmt.Fprintf(&b, " [%d] %s [%s] - ", id, name, l.target)
	b.WriteString(msg)
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, b.String())
}

// Close releases the log file, if the logger owns one.
func (l *Logger) Close() error {
	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	c.out = io.Discard
	return err
}
