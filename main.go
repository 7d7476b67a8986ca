package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	webassets "fables/frontend"
	"fables/internal/assets"
	"fables/internal/audio"
	"fables/internal/bridge"
	"fables/internal/config"
	"fables/internal/logging"
	"fables/internal/protocol"
	"fables/internal/shell"
	"fables/internal/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		// startup errors are reported here only, whatever the log level
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags("fables", args, os.Stderr)
	if err != nil {
		return err
	}
	if flags.Help {
		printHelp(flags)
		return nil
	}

	settings, err := config.Load(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings = flags.Apply(settings)
	if flags.WriteConfig {
		return config.Save(flags.ConfigPath, settings)
	}

	log := logging.Open(settings.LogLevel, settings.LogFile)
	defer log.Close()
	log.Tracef("main()")

	store, err := loadAssets(settings.Assets)
	if err != nil {
		return err
	}
	log.Debugf("%d assets loaded", store.Len())

	go audio.Check(log.Named("audio"))

	app := shell.New(
		ui.NewToolkit(log),
		log,
		shell.Config{
			Title:    settings.Title,
			Width:    settings.Width,
			Height:   settings.Height,
			EntryURL: settings.EntryURL,
			DevTools: settings.DevTools,
		},
		protocol.NewAssetResolver(store, log.Named("protocol")),
		bridge.New(log),
		bridge.InitScript,
	)
	if err := app.Start(); err != nil {
		return err
	}
	return app.Run()
}

// loadAssets reads the .sqlar bundle at path, or the embedded bundle when
// path is empty.
func loadAssets(path string) (*assets.Store, error) {
	if path != "" {
		store, err := assets.LoadArchive(context.Background(), path)
		if err != nil {
			return nil, fmt.Errorf("load asset bundle %s: %w", path, err)
		}
		return store, nil
	}
	dist, err := fs.Sub(webassets.Assets, "dist")
	if err != nil {
		return nil, err
	}
	return assets.FromFS(dist)
}

func printHelp(flags *config.Flags) {
	fmt.Fprintf(os.Stderr, `kids (a)cademy fables

Shows the bundled fables in a native window. Settings are read from
--config (JSON with comments, or YAML); flags given on the command line
override them.

Usage:
  fables [flags]

Flags:
`)
	flags.PrintDefaults(os.Stderr)
}
