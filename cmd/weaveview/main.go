// Package main is the entry point for the weaveview document viewer, a
// terminal exercise bed for the textweave layout engine: it loads a file,
// lays it out with soft wrapping, and re-renders incrementally as the
// file changes on disk.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/dshills/textweave/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", defaultConfigPath(), "path to config file")
		debugLog    = flag.String("debug-log", "", "write debug logs to this file")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("weaveview %s (%s)\n", version, commit)
		return 0
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: weaveview [flags] <file>")
		flag.PrintDefaults()
		return 2
	}
	path := flag.Arg(0)

	log := zerolog.Nop()
	if *debugLog != "" {
		f, err := os.OpenFile(*debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening debug log: %v\n", err)
			return 1
		}
		defer f.Close()
		log = zerolog.New(f).With().Timestamp().Logger()
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", path, err)
		return 1
	}

	viewer, err := newViewer(path, string(content), settings, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing viewer: %v\n", err)
		return 1
	}
	defer viewer.shutdown()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating file watcher: %v\n", err)
		return 1
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("file watch unavailable")
	} else {
		go viewer.watchLoop(watcher)
	}

	if err := viewer.eventLoop(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "weaveview.toml"
	}
	return home + "/.config/weaveview/weaveview.toml"
}
