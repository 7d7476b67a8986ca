package logging

import "strings"

// Level is a log severity. Lower values are more severe; Off disables output.
type Level int

const (
	Off Level = iota
	Error
	Warn
	Info
	Debug
	Trace
)

var levelNames = [...]string{
	Off:   "OFF",
	Error: "ERROR",
	Warn:  "WARN",
	Info:  "INFO",
	Debug: "DEBUG",
	Trace: "TRACE",
}

func (l Level) String() string {
	if l < Off || l > Trace {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel parses a level name case-insensitively. Unknown names return
// Off and false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return Off, true
	case "error":
		return Error, true
	case "warn":
		return Warn, true
	case "info":
		return Info, true
	case "debug":
		return Debug, true
	case "trace":
		return Trace, true
	}
	return Off, false
}

// allows reports whether a record at level l passes the threshold.
func (threshold Level) allows(l Level) bool {
	return l > Off && l <= Trace && l <= threshold
}
