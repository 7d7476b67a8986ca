package config

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// Flags are the shell's command line options. Values given explicitly on
// the command line take precedence over the settings file.
type Flags struct {
	LogLevel    string
	LogFile     string
	ConfigPath  string
	Assets      string
	WriteConfig bool
	Help        bool

	set *pflag.FlagSet
}

// ParseFlags parses args (without the program name).
func ParseFlags(name string, args []string, output io.Writer) (*Flags, error) {
	f := &Flags{}
	set := pflag.NewFlagSet(name, pflag.ContinueOnError)
	set.SetOutput(output)
	set.StringVarP(&f.LogLevel, "log-level", "v", "off", "logging level: off, error, warn, info, debug, trace")
	set.StringVarP(&f.LogFile, "log-file", "f", "", "logging file path -- if not specified print logs to console")
	set.StringVarP(&f.ConfigPath, "config", "c", DefaultPath, "settings file (.jsonc, .json, .yaml)")
	set.StringVarP(&f.Assets, "assets", "a", "", "load assets from this .sqlar bundle instead of the embedded one")
	set.BoolVar(&f.WriteConfig, "write-config", false, "write the effective settings to --config and exit")
	set.BoolVarP(&f.Help, "help", "h", false, "show help")
	f.set = set

	if err := set.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			f.Help = true
			return f, nil
		}
		return nil, err
	}
	if rest := set.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return f, nil
}

// Apply overlays explicitly set flags onto s.
func (f *Flags) Apply(s Settings) Settings {
	if f.set.Changed("log-level") {
		s.LogLevel = f.LogLevel
	}
	if f.set.Changed("log-file") {
		s.LogFile = f.LogFile
	}
	if f.set.Changed("assets") {
		s.Assets = f.Assets
	}
	return s
}

// PrintDefaults writes the flag usage to w.
func (f *Flags) PrintDefaults(w io.Writer) {
	f.set.SetOutput(w)
	f.set.PrintDefaults()
}
