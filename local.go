package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/profile"
	"github.com/automoto/duelcore/server/core"
	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/match"
	"github.com/automoto/duelcore/shared/netconfig"
	"github.com/automoto/duelcore/shared/player"
)

// matchTimeout ends a local match that nobody is winning.
const matchTimeout = 3 * time.Minute

// runLocal pits two scripted bots against each other on an authoritative
// match with no server. The profile's fighter plays red against the next
// fighter on the roster.
func runLocal(ctx context.Context, roster *fighterdata.Roster, prof profile.Profile, stagePath string, rounds int) error {
	stage, err := core.LoadStage(stagePath)
	if err != nil {
		return err
	}

	ids := roster.IDs()
	blueID := ids[0]
	for i, id := range ids {
		if id == prof.FighterID {
			blueID = ids[(i+1)%len(ids)]
		}
	}
	red, err := roster.Fighter(prof.FighterID)
	if err != nil {
		return err
	}
	blue, err := roster.Fighter(blueID)
	if err != nil {
		return err
	}

	for round := 1; round <= rounds; round++ {
		m, err := match.New(match.Options{
			Red:           red,
			Blue:          blue,
			RedMode:       netconfig.ModeAI,
			BlueMode:      netconfig.ModeAI,
			Viewport:      player.Viewport{Width: config.Match.ViewportWidth, Height: config.Match.ViewportHeight},
			Stage:         stage,
			Authoritative: true,
		})
		if err != nil {
			return err
		}

		var devs [2]interface{ Think(float64) error }
		for c := netconfig.Red; c <= netconfig.Blue; c++ {
			dev, err := newDevice(prof)
			if err != nil {
				return err
			}
			dev.Bind(m.Player(c), m.Player(c.Other()))
			m.Player(c).SetDevice(dev)
			devs[c] = dev
		}

		winner, ok, err := playLocal(ctx, m, devs)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			log.Println("[match] interrupted")
			return nil
		}
		if !ok {
			log.Printf("[match] round %d: time over (%d%% vs %d%%)", round,
				m.Player(netconfig.Red).HealthPercent(), m.Player(netconfig.Blue).HealthPercent())
			continue
		}
		log.Printf("[match] round %d: %s (%s) wins", round, winner, m.Player(winner).Fighter().Name)
	}
	return nil
}

func playLocal(ctx context.Context, m *match.Match, devs [2]interface{ Think(float64) error }) (netconfig.Color, bool, error) {
	dt := 1.0 / float64(config.Server.TickRate)
	limit := int(matchTimeout.Seconds() * float64(config.Server.TickRate))

	for tick := 0; tick < limit; tick++ {
		if ctx.Err() != nil {
			return 0, false, nil
		}
		for _, dev := range devs {
			if err := dev.Think(dt); err != nil {
				return 0, false, fmt.Errorf("bot: %w", err)
			}
		}
		for _, hit := range m.Tick(dt) {
			log.Printf("[match] %s hits %s: %s, hp %d", hit.Attacker, hit.Defender, hit.Result, hit.HP)
		}
		if winner, ok := m.Winner(); ok {
			return winner, true, nil
		}
	}
	return 0, false, nil
}
