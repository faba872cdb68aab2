package core

import (
	"fmt"
	"log"
	"math"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/shared/journal"
	"github.com/automoto/duelcore/shared/match"
	"github.com/automoto/duelcore/shared/messages"
	"github.com/automoto/duelcore/shared/netconfig"
	"github.com/automoto/duelcore/shared/player"
)

// game is the running match and the per-player network bookkeeping around
// it.
type game struct {
	match         *match.Match
	clients       [2]ClientID
	usernames     [2]string
	lastProcessed [2]uint32

	tick        uint64
	snapshotSeq uint32
	sinceResync float64 // seconds

	journal *journal.Writer
}

func (g *game) colorOf(id ClientID) (netconfig.Color, bool) {
	for c := netconfig.Red; c <= netconfig.Blue; c++ {
		if g.clients[c] == id {
			return c, true
		}
	}
	return 0, false
}

func (s *Server) tryStartMatch() {
	if s.game != nil {
		return
	}
	red, blue, ok := s.takeReady()
	if !ok {
		return
	}
	if err := s.startMatch(red, blue); err != nil {
		log.Printf("[match] cannot start: %v", err)
		s.unready(red, blue)
	}
}

// startMatch builds a match for two ready clients. Fighter data problems
// fail the start; the clients go back to the lobby.
func (s *Server) startMatch(redID, blueID ClientID) error {
	red, blue := s.registry.Get(redID), s.registry.Get(blueID)
	if red == nil || blue == nil {
		return fmt.Errorf("client left before the match started")
	}
	redFighter, err := s.roster.Fighter(red.Fighter)
	if err != nil {
		return fmt.Errorf("red fighter: %w", err)
	}
	blueFighter, err := s.roster.Fighter(blue.Fighter)
	if err != nil {
		return fmt.Errorf("blue fighter: %w", err)
	}

	m, err := match.New(match.Options{
		Red:           redFighter,
		Blue:          blueFighter,
		RedMode:       netconfig.ModeNet,
		BlueMode:      netconfig.ModeNet,
		Viewport:      player.Viewport{Width: config.Match.ViewportWidth, Height: config.Match.ViewportHeight},
		Stage:         s.stage,
		Authoritative: true,
	})
	if err != nil {
		return err
	}

	g := &game{
		match:     m,
		clients:   [2]ClientID{redID, blueID},
		usernames: [2]string{red.Username, blue.Username},
	}
	if s.journalDir != "" {
		w, _, err := journal.Create(s.journalDir, journal.Header{
			Started:      s.now().UnixMilli(),
			RedUsername:  red.Username,
			BlueUsername: blue.Username,
			RedFighter:   red.Fighter,
			BlueFighter:  blue.Fighter,
			Stage:        s.stage,
		})
		if err != nil {
			log.Printf("[journal] %v", err)
		} else {
			g.journal = w
		}
	}
	s.game = g

	log.Printf("[match] %s (%s) vs %s (%s)", red.Username, redFighter.Name, blue.Username, blueFighter.Name)
	s.broadcast(messages.ServerStartingGame{
		RedUsername:  red.Username,
		BlueUsername: blue.Username,
		RedFighter:   red.Fighter,
		BlueFighter:  blue.Fighter,
	}, 0)
	s.send(redID, messages.PlayingRed{})
	s.send(blueID, messages.PlayingBlue{})
	return nil
}

// validInput rejects implausible client inputs.
func validInput(in messages.ClientInput) error {
	switch {
	case math.IsNaN(in.Dt) || math.IsInf(in.Dt, 0):
		return fmt.Errorf("dt is not finite")
	case in.Dt < 0:
		return fmt.Errorf("negative dt %g", in.Dt)
	case in.Dt > config.Server.MaxInputDt:
		return fmt.Errorf("dt %g over %g", in.Dt, config.Server.MaxInputDt)
	case in.Button >= netconfig.NumButtons && in.Button != netconfig.ButtonNone:
		return fmt.Errorf("unknown button %d", in.Button)
	}
	return nil
}

// onClientInput applies one input from a fighter, in arrival order.
func (s *Server) onClientInput(id ClientID, in messages.ClientInput) {
	g := s.game
	if g == nil {
		return
	}
	color, ok := g.colorOf(id)
	if !ok {
		return
	}
	if in.Sequence <= g.lastProcessed[color] {
		return
	}
	if err := validInput(in); err != nil {
		log.Printf("[server] dropping input %d from %s: %v", in.Sequence, g.usernames[color], err)
		return
	}

	g.match.ApplyInput(color, in.Button, in.Pressed, in.Dt)
	g.lastProcessed[color] = in.Sequence

	if g.journal != nil {
		if err := g.journal.Input(g.tick, color, in.Sequence, in.Button, in.Pressed, in.Dt); err != nil {
			log.Printf("[journal] %v", err)
		}
	}
}

// stepGame advances the match and emits hits, the snapshot and, when due,
// the reliable resync.
func (s *Server) stepGame(dt float64) {
	g := s.game
	hits := g.match.Tick(dt)
	if g.journal != nil {
		if err := g.journal.Tick(g.tick, dt); err != nil {
			log.Printf("[journal] %v", err)
		}
	}
	g.tick++

	for _, h := range hits {
		var m messages.Message
		if h.Result == player.HitBlocked {
			m = messages.TakeHitBlock(h.Defender, h.Stun)
		} else {
			m = messages.TakeHit(h.Defender, h.HP, h.Stun)
		}
		s.broadcast(m, 0)
	}
	if winner, ok := g.match.Winner(); ok {
		s.endMatch(winner)
		return
	}

	g.snapshotSeq++
	s.broadcast(messages.UpdatePlayers{
		Sequence: g.snapshotSeq,
		Red:      g.snapshot(netconfig.Red),
		Blue:     g.snapshot(netconfig.Blue),
	}, 0)

	g.sinceResync += dt
	if g.sinceResync >= config.Server.ResyncInterval.Seconds() {
		g.sinceResync = 0
		for c := netconfig.Red; c <= netconfig.Blue; c++ {
			s.send(g.clients[c], messages.LastProcessedInputSequence{Sequence: g.lastProcessed[c]})
		}
		s.broadcast(messages.PanCamera{PanX: int32(g.match.Stage.Pan())}, 0)
	}
}

func (g *game) snapshot(c netconfig.Color) messages.PlayerUpdate {
	p := g.match.Player(c)
	return messages.PlayerUpdate{
		LastProcessedInput: g.lastProcessed[c],
		X:                  int32(p.X()),
		Y:                  int32(p.Y()),
		XVel:               int32(p.XVel()),
		State:              uint32(p.State()),
	}
}

// endMatch announces the victor and returns everyone to the lobby.
func (s *Server) endMatch(victor netconfig.Color) {
	g := s.game
	s.game = nil

	name := g.usernames[victor]
	log.Printf("[match] over, %s wins", name)
	s.broadcast(messages.MatchOver{Victor: name}, 0)
	s.unready(g.clients[:]...)

	if g.journal != nil {
		if err := g.journal.Close(); err != nil {
			log.Printf("[journal] %v", err)
		}
	}
}
