package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the shell looks for its settings file.
const DefaultPath = "./config/shell.jsonc"

// Settings holds the shell's configurable values.
type Settings struct {
	Title    string `json:"title" yaml:"title"`
	Width    int    `json:"width" yaml:"width"`
	Height   int    `json:"height" yaml:"height"`
	EntryURL string `json:"entry_url" yaml:"entry_url"`
	// Logging settings
	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file" yaml:"log_file"`
	// Assets is an optional .sqlar bundle replacing the embedded one.
	Assets   string `json:"assets" yaml:"assets"`
	DevTools bool   `json:"devtools" yaml:"devtools"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return Settings{
		Title:    "kids (a)cademy fables",
		Width:    1400,
		Height:   820,
		EntryURL: "app://local/play.htm",
		LogLevel: "off",
	}
}

// withDefaults fills zero fields.
func (s Settings) withDefaults() Settings {
	d := Defaults()
	if s.Title == "" {
		s.Title = d.Title
	}
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if s.EntryURL == "" {
		s.EntryURL = d.EntryURL
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
	return s
}

// Load reads settings from path. A missing file yields Defaults. Files
// ending in .yaml or .yml are YAML; anything else is JSON, with comments
// and trailing commas allowed.
func Load(path string) (Settings, error) {
	if path == "" {
		return Settings{}, errors.New("settings path not set")
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, err
	}

	var cfg Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(b), &cfg); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg.withDefaults(), nil
}

// Save writes settings as indented JSON, creating parent directories as
// needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s.withDefaults(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0644)
}
