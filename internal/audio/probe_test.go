package audio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"fables/internal/logging"
)

func TestLogReport(t *testing.T) {
	cases := []struct {
		name   string
		report Report
		err    error
		want   string
	}{
		{"error", Report{}, errors.New("no backend"), "WARN [audio] - audio unavailable: no backend"},
		{"none", Report{}, nil, "WARN [audio] - no audio playback device found, narration will be silent"},
		{"default", Report{Devices: []string{"Speakers", "HDMI"}, Default: "Speakers"}, nil, `INFO [audio] - audio: 2 playback device(s), default "Speakers"`},
		{"no default", Report{Devices: []string{"HDMI"}}, nil, "INFO [audio] - audio: 1 playback device(s)"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		log := logging.New(&buf, logging.Info, logging.WithColor(false)).Named("audio")
		logReport(log, tc.report, tc.err)
		if !strings.HasSuffix(strings.TrimSuffix(buf.String(), "\n"), tc.want) {
			t.Fatalf("%s: got %q, want suffix %q", tc.name, buf.String(), tc.want)
		}
	}
}
