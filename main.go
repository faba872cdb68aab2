package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/duelcore/ai"
	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/network"
	"github.com/automoto/duelcore/profile"
	"github.com/automoto/duelcore/shared/fighterdata"
)

const frameRate = 60

func main() {
	addr := flag.String("addr", "", "Server address (host:port or ws:// URL)")
	name := flag.String("name", "", "Username")
	fighter := flag.Int("fighter", -1, "Fighter id from the roster")
	difficulty := flag.String("difficulty", "", "Bot difficulty: easy, normal, hard")
	script := flag.String("script", "", "Tengo script driving the bot (default: built-in)")
	fighters := flag.String("fighters", "", "Fighter data directory (overrides config)")
	stagePath := flag.String("stage", "", "Stage TMX file for local matches")
	local := flag.Bool("local", false, "Run a bot-vs-bot match without a server")
	rounds := flag.Int("rounds", 1, "Matches to play before exiting")
	flag.Parse()

	store, err := profile.Open("duelcore")
	if err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
	}
	prof := profile.Default()
	if store != nil {
		if saved, err := store.Load(); err == nil {
			prof = saved
		} else {
			log.Printf("Warning: Could not load profile: %v", err)
		}
	}

	if *addr != "" {
		prof.Server = *addr
	}
	if *name != "" {
		prof.Username = *name
	}
	if *fighter >= 0 {
		prof.FighterID = uint32(*fighter)
	}
	if *difficulty != "" {
		prof.Difficulty = *difficulty
	}
	if *script != "" {
		prof.Script = *script
	}
	if *fighters != "" {
		config.Server.FightersDir = *fighters
	}

	roster, err := fighterdata.LoadRoster(os.DirFS(config.Server.FightersDir), config.Server.Roster)
	if err != nil {
		log.Fatalf("Failed to load roster: %v", err)
	}
	if !roster.Has(prof.FighterID) {
		log.Fatalf("Fighter %d is not on the roster %v", prof.FighterID, roster.IDs())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *local {
		if err := runLocal(ctx, roster, prof, *stagePath, *rounds); err != nil {
			log.Fatal(err)
		}
		return
	}

	if store != nil {
		if err := store.Save(prof); err != nil {
			log.Printf("Warning: Could not save profile: %v", err)
		}
	}
	if err := runNetworked(ctx, roster, prof, store, *rounds); err != nil {
		log.Fatal(err)
	}
}

func newDevice(prof profile.Profile) (*ai.ScriptDevice, error) {
	diff := config.ParseBotDifficulty(prof.Difficulty)
	if prof.Script != "" {
		return ai.LoadScriptDevice(prof.Script, diff)
	}
	return ai.NewScriptDevice(nil, diff)
}

// runNetworked joins a server and lets the bot play rounds matches.
func runNetworked(ctx context.Context, roster *fighterdata.Roster, prof profile.Profile, store *profile.Manager, rounds int) error {
	dev, err := newDevice(prof)
	if err != nil {
		return err
	}

	conn := network.NewConn()
	if err := conn.Connect(ctx, prof.Server); err != nil {
		return fmt.Errorf("connect to %s: %w", prof.Server, err)
	}
	defer conn.Disconnect()

	session := network.NewSession(conn, roster, dev)
	attempt := 0
	played := 0
	bound := false

	dt := 1.0 / frameRate
	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[client] interrupted")
			return nil
		case <-ticker.C:
		}

		if st := conn.State(); st != network.StateConnected {
			return fmt.Errorf("connection %s: %v", st, conn.LastError())
		}

		for _, m := range conn.Drain() {
			session.Handle(m)
		}

		switch session.State() {
		case network.SessionNeedName:
			username := prof.Username
			if attempt > 0 {
				username = fmt.Sprintf("%s%d", prof.Username, attempt+1)
			}
			attempt++
			if err := session.SetUsername(username); err != nil {
				return err
			}
		case network.SessionLobby:
			if err := session.Ready(prof.FighterID); err != nil {
				return err
			}
			log.Printf("[client] %s ready with fighter %d", session.Username(), prof.FighterID)
		case network.SessionPlaying:
			if !bound {
				m := session.Match()
				c := session.Color()
				dev.Bind(m.Player(c), m.Player(c.Other()))
				bound = true
			}
		case network.SessionOver:
			if bound {
				bound = false
				played++
				won := session.Victor() == session.Username()
				if store != nil {
					if p, err := store.RecordResult(won); err == nil {
						log.Printf("[client] record %d-%d", p.Wins, p.Losses)
					}
				}
				if played >= rounds {
					return nil
				}
				if err := session.Ready(prof.FighterID); err != nil {
					return err
				}
			}
		}

		if bound {
			if err := dev.Think(dt); err != nil {
				return err
			}
		}
		if err := session.Update(dt); err != nil {
			return err
		}
	}
}
