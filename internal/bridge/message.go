// Package bridge forwards console output of the rendered document into the
// host logger.
package bridge

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMalformed is returned by Decode for input that is not JSON.
var ErrMalformed = errors.New("malformed bridge message")

// Message is a decoded bridge message: ConsoleMessage or UnknownMessage.
type Message interface {
	Kind() string
}

// ConsoleMessage is a console.log/error/warn/info call from the document.
type ConsoleMessage struct {
	// Level is the console method name, "log" when absent.
	Level string
	// Args holds each argument rendered as text.
	Args []string
}

func (ConsoleMessage) Kind() string { return "console" }

// Text is the log line for the message: the arguments joined by spaces,
// stripped of surrounding double quotes and prefixed with "JS: ".
func (m ConsoleMessage) Text() string {
	return "JS: " + strings.Trim(strings.Join(m.Args, " "), `"`)
}

// UnknownMessage is any well-formed message the host does not act on.
type UnknownMessage struct {
	Type string
}

func (m UnknownMessage) Kind() string { return m.Type }

// Decode parses raw without assuming its shape. Missing or mistyped
// fields take their defaults.
func Decode(raw string) (Message, error) {
	if !gjson.Valid(raw) {
		return nil, ErrMalformed
	}
	root := gjson.Parse(raw)
	if !root.IsObject() {
		return UnknownMessage{}, nil
	}

	typ := root.Get("type")
	if typ.Type != gjson.String || typ.Str != "console" {
		return UnknownMessage{Type: typ.String()}, nil
	}

	msg := ConsoleMessage{Level: "log"}
	if level := root.Get("level"); level.Type == gjson.String {
		msg.Level = level.Str
	}
	if args := root.Get("args"); args.IsArray() {
		for _, arg := range args.Array() {
			msg.Args = append(msg.Args, renderArg(arg))
		}
	}
	return msg, nil
}

// renderArg prints strings as their text and any other value as JSON, so
// an object logs as {"a":1} where String(arg) in the page would give
// [object Object].
func renderArg(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}
