// Package audio checks that the machine can play the bundle's narration.
package audio

import (
	"fmt"
	"strings"

	"fables/internal/logging"

	"github.com/gen2brain/malgo"
)

// Report lists the playback devices miniaudio can see.
type Report struct {
	Devices []string
	// Default is the name of the default device, empty if none is flagged.
	Default string
}

// Probe enumerates playback devices. The context is released before
// returning; the webview opens its own audio output.
func Probe(log *logging.Logger) (Report, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Tracef("malgo: %s", strings.TrimSpace(message))
	})
	if err != nil {
		return Report{}, fmt.Errorf("init malgo context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return Report{}, fmt.Errorf("enumerate playback devices: %w", err)
	}
	var r Report
	for _, info := range infos {
		name := info.Name()
		r.Devices = append(r.Devices, name)
		if info.IsDefault != 0 {
			r.Default = name
		}
	}
	return r, nil
}

// Check probes the devices and logs the outcome. It never fails the
// caller: a machine without audio still shows the fables.
func Check(log *logging.Logger) {
	r, err := Probe(log)
	logReport(log, r, err)
}

func logReport(log *logging.Logger, r Report, err error) {
	switch {
	case err != nil:
		log.Warnf("audio unavailable: %v", err)
	case len(r.Devices) == 0:
		log.Warnf("no audio playback device found, narration will be silent")
	case r.Default != "":
		log.Infof("audio: %d playback device(s), default %q", len(r.Devices), r.Default)
	default:
		log.Infof("audio: %d playback device(s)", len(r.Devices))
	}
}
