package shell

import (
	"errors"
	"fmt"
)

// Kind sentinels for StartupError; match with errors.Is.
var (
	ErrWindowCreation = errors.New("window creation failed")
	ErrURLSetting     = errors.New("URL setting failed")
	ErrToolkit        = errors.New("toolkit error")
)

// StartupError aborts the shell before the event loop starts.
type StartupError struct {
	// Kind is one of ErrWindowCreation, ErrURLSetting or ErrToolkit.
	Kind   error
	Detail string
	Err    error
}

func (e *StartupError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *StartupError) Is(target error) bool {
	return target == e.Kind
}

func (e *StartupError) Unwrap() error {
	return e.Err
}
