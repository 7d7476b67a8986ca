package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"fables/internal/assets"
	"fables/internal/logging"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pack: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("pack", pflag.ContinueOnError)
	out := flagSet.StringP("out", "o", "fables.sqlar", "archive to write")
	level := flagSet.StringP("log-level", "v", "info", "logging level: off, error, warn, info, debug, trace")
	force := flagSet.Bool("force", false, "replace an existing archive")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pack [flags] <asset-dir>\n\nPacks a directory into a SQLite archive the shell loads with --assets.\n\n")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return errors.New("expected exactly one asset directory")
	}
	dir := flagSet.Arg(0)

	threshold, _ := logging.ParseLevel(*level)
	log := logging.New(os.Stderr, threshold).Named("pack")

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if _, err := os.Stat(*out); err == nil {
		if !*force {
			return fmt.Errorf("%s exists, use --force to replace it", *out)
		}
		if err := os.Remove(*out); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	archive, err := assets.CreateArchive(ctx, *out)
	if err != nil {
		return err
	}
	defer archive.Close()

	n, err := archive.AddFS(ctx, os.DirFS(dir))
	if err != nil {
		return fmt.Errorf("pack %s: %w", dir, err)
	}
	log.Debugf("wrote %d files, verifying", n)

	// Read everything back so a broken archive fails here, not at launch.
	store, err := archive.Store(ctx)
	if err != nil {
		return fmt.Errorf("verify %s: %w", *out, err)
	}
	if store.Len() != n {
		return fmt.Errorf("verify %s: wrote %d files, read back %d", *out, n, store.Len())
	}
	log.Infof("packed %d files from %s into %s", n, dir, *out)
	return nil
}
