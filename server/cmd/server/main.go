package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/server/core"
	"github.com/automoto/duelcore/shared/fighterdata"
)

func main() {
	configFile := flag.String("config", "", "YAML config file (optional)")
	port := flag.Uint("port", 0, "Server port (overrides config)")
	tickRate := flag.Int("tickrate", 0, "Server tick rate (overrides config)")
	fighters := flag.String("fighters", "", "Fighter data directory (overrides config)")
	stagePath := flag.String("stage", "", "Stage TMX file (overrides config)")
	journalDir := flag.String("journal", "", "Directory for match input journals (overrides config)")
	hotReload := flag.Bool("reload", false, "Reload fighter data when descriptors change")
	flag.Parse()

	if *configFile != "" {
		if err := config.LoadServerFile(*configFile); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *port != 0 {
		config.Server.Port = *port
	}
	if *tickRate > 0 {
		config.Server.TickRate = *tickRate
	}
	if *fighters != "" {
		config.Server.FightersDir = *fighters
	}
	if *stagePath != "" {
		config.Server.Stage = *stagePath
	}
	if *journalDir != "" {
		config.Server.JournalDir = *journalDir
	}
	if *hotReload {
		config.Server.HotReload = true
	}

	roster, err := fighterdata.LoadRoster(os.DirFS(config.Server.FightersDir), config.Server.Roster)
	if err != nil {
		log.Fatalf("Failed to load roster: %v", err)
	}
	// Parse every fighter up front so bad data fails at startup.
	for _, id := range roster.IDs() {
		if _, err := roster.Fighter(id); err != nil {
			log.Fatalf("Failed to load fighter %d: %v", id, err)
		}
	}

	stage, err := core.LoadStage(config.Server.Stage)
	if err != nil {
		log.Fatalf("Failed to load stage: %v", err)
	}

	var watcher *fighterdata.Watcher
	if config.Server.HotReload {
		watcher, err = fighterdata.NewWatcher(filepath.Clean(config.Server.FightersDir))
		if err != nil {
			log.Fatalf("Failed to watch fighter data: %v", err)
		}
		defer watcher.Close()
	}

	transport := core.NewWsTransport()
	server := core.NewServer(core.Options{
		Transport:  transport,
		Roster:     roster,
		Stage:      stage,
		Watcher:    watcher,
		JournalDir: config.Server.JournalDir,
		TickRate:   config.Server.TickRate,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := transport.Stop(ctx); err != nil {
			log.Printf("Transport shutdown: %v", err)
		}
		server.Stop()
	}()

	go func() {
		if err := transport.Start(int(config.Server.Port)); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("Starting duel server on port %d (tick rate: %d/s, %d fighters)",
		config.Server.Port, config.Server.TickRate, len(roster.IDs()))
	server.Run()
}
