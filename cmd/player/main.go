package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/avriley/tonearm/internal/audio"
	"github.com/avriley/tonearm/internal/config"
	"github.com/avriley/tonearm/internal/events"
	"github.com/avriley/tonearm/internal/library"
	"github.com/avriley/tonearm/internal/playlist"
	"github.com/avriley/tonearm/internal/shell"
)

var (
	configPath = flag.String("config", "", "Path to configuration file")
	musicDir   = flag.String("dir", "", "Music directory (overrides config)")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("[MAIN] Debug mode enabled")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[MAIN] Failed to load config: %v", err)
	}
	if *debug {
		cfg.Debug = true
	}
	if *musicDir != "" {
		cfg.Library.MusicDir = *musicDir
	}

	if cfg.Debug {
		log.Printf("[MAIN] Music directory: %s", cfg.Library.MusicDir)
		log.Printf("[MAIN] Database path: %s", cfg.Library.DatabasePath)
		log.Printf("[MAIN] Sample rate: %d", cfg.Audio.SampleRate)
	}

	tracks, err := library.Scan(cfg.Library.MusicDir, cfg.Debug)
	if err != nil {
		log.Fatalf("[MAIN] Failed to scan %s: %v", cfg.Library.MusicDir, err)
	}

	store, err := library.NewStore(cfg)
	if err != nil {
		log.Printf("[MAIN] Library cache unavailable: %v", err)
		store = nil
	} else {
		defer store.Close()
		if err := store.SaveTracks(tracks); err != nil {
			log.Printf("[MAIN] Failed to save scan: %v", err)
		}
		if err := store.LoadDurations(tracks); err != nil {
			log.Printf("[MAIN] Failed to load cached durations: %v", err)
		}
	}

	engine, err := audio.NewEngine(cfg)
	if err != nil {
		// No output device means the player cannot exist. Never retried.
		log.Fatalf("[MAIN] %v", err)
	}
	defer engine.Close()

	bus := events.NewBus()
	if cfg.Library.Watch {
		watcher, err := library.NewWatcher(cfg.Library.MusicDir, bus, cfg.Debug)
		if err != nil {
			log.Printf("[MAIN] Library watcher disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	nav := playlist.NewNavigator(tracks)
	sh := shell.New(cfg, engine, nav, store, bus)

	setupGracefulShutdown(engine)

	if err := sh.Run(); err != nil {
		log.Fatalf("[MAIN] Shell error: %v", err)
	}
}

func setupGracefulShutdown(engine *audio.Engine) {
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		sig := <-c
		log.Printf("[MAIN] Received signal: %v, shutting down", sig)
		engine.Close()
		os.Exit(0)
	}()
}
