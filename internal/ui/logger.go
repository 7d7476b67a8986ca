package ui

import (
	"os"

	"fables/internal/logging"

	wlogger "github.com/wailsapp/wails/v2/pkg/logger"
)

// wailsLogger routes Wails' own log output through the shell logger.
type wailsLogger struct {
	log  *logging.Logger
	exit func(code int)
}

// NewLogger adapts log to the Wails logger interface.
func NewLogger(log *logging.Logger) wlogger.Logger {
	return &wailsLogger{log: log, exit: os.Exit}
}

func (l *wailsLogger) Print(message string)   { l.log.Log(logging.Info, message) }
func (l *wailsLogger) Trace(message string)   { l.log.Log(logging.Trace, message) }
func (l *wailsLogger) Debug(message string)   { l.log.Log(logging.Debug, message) }
func (l *wailsLogger) Info(message string)    { l.log.Log(logging.Info, message) }
func (l *wailsLogger) Warning(message string) { l.log.Log(logging.Warn, message) }
func (l *wailsLogger) Error(message string)   { l.log.Log(logging.Error, message) }

func (l *wailsLogger) Fatal(message string) {
	l.log.Log(logging.Error, message)
	l.exit(1)
}

// LogLevel maps a shell threshold to the closest Wails level. Wails has no
// "off"; the shell logger drops those records anyway.
func LogLevel(level logging.Level) wlogger.LogLevel {
	switch level {
	case logging.Trace:
		return wlogger.TRACE
	case logging.Debug:
		return wlogger.DEBUG
	case logging.Info:
		return wlogger.INFO
	case logging.Warn:
		return wlogger.WARNING
	default:
		return wlogger.ERROR
	}
}
