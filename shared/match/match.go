// Package match holds the two players of a fight and the rules that act
// between them: hit resolution, push-apart, stage scrolling and facing.
package match

import (
	"fmt"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/leveldata"
	"github.com/automoto/duelcore/shared/netconfig"
	"github.com/automoto/duelcore/shared/player"
)

// Options configures a new match.
type Options struct {
	Red, Blue         *fighterdata.Fighter
	RedMode, BlueMode netconfig.Mode
	Viewport          player.Viewport
	Stage             *leveldata.Stage // optional; nil uses config.Match.StageWidth

	// Authoritative matches resolve hits, scroll the stage and push players
	// apart. Client mirrors leave that to the server.
	Authoritative bool
}

// HitEvent reports one resolved contact.
type HitEvent struct {
	Attacker netconfig.Color
	Defender netconfig.Color
	Result   player.HitResult
	HP       int
	Stun     int
}

// Match is the context shared by everything that simulates one fight.
type Match struct {
	Players       [2]*player.Player // indexed by netconfig.Color
	Stage         Stage
	Authoritative bool

	spawns [2]int
}

// New builds a match with both players at their spawn points.
func New(opts Options) (*Match, error) {
	if opts.Red == nil || opts.Blue == nil {
		return nil, fmt.Errorf("match: both fighters are required")
	}
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = player.Viewport{Width: config.Match.ViewportWidth, Height: config.Match.ViewportHeight}
	}

	stageWidth := config.Match.StageWidth
	if opts.Stage != nil {
		stageWidth = opts.Stage.Width
	}

	m := &Match{
		Stage:         Stage{Width: stageWidth, ViewportWidth: opts.Viewport.Width},
		Authoritative: opts.Authoritative,
	}
	m.spawns[netconfig.Red] = config.Match.StartingOffset
	m.spawns[netconfig.Blue] = opts.Viewport.Width - opts.Blue.Width - config.Match.StartingOffset
	if opts.Stage != nil {
		for c := netconfig.Red; c <= netconfig.Blue; c++ {
			if sp, ok := opts.Stage.Spawn(int(c)); ok {
				m.spawns[c] = int(sp.X)
			}
		}
	}

	m.Players[netconfig.Red] = player.New(opts.Red, opts.RedMode, netconfig.SideLeft, m.spawns[netconfig.Red], opts.Viewport)
	m.Players[netconfig.Blue] = player.New(opts.Blue, opts.BlueMode, netconfig.SideRight, m.spawns[netconfig.Blue], opts.Viewport)
	m.UpdateSides()
	return m, nil
}

// Player returns the player in slot c.
func (m *Match) Player(c netconfig.Color) *player.Player {
	return m.Players[c]
}

// Reset puts both players back at their spawns and recenters the stage.
func (m *Match) Reset() {
	for c, p := range m.Players {
		p.Reset(m.spawns[c])
	}
	m.Stage.SetPan(0)
	m.UpdateSides()
}

// ApplyInput feeds one client input to the player in slot c.
func (m *Match) ApplyInput(c netconfig.Color, b netconfig.Button, pressed bool, dt float64) {
	m.Players[c].ApplyInputEvent(b, pressed, dt)
}

// Tick advances the match by dt seconds and returns the hits that landed.
func (m *Match) Tick(dt float64) []HitEvent {
	for _, p := range m.Players {
		p.Update(dt)
	}

	var events []HitEvent
	if m.Authoritative {
		events = m.ResolveHits()
		m.ShiftStage(dt)
		m.PushApart()
	}
	m.UpdateSides()
	return events
}

// Winner reports the surviving player once someone is out of health.
func (m *Match) Winner() (netconfig.Color, bool) {
	switch {
	case m.Players[netconfig.Blue].HP() == 0:
		return netconfig.Red, true
	case m.Players[netconfig.Red].HP() == 0:
		return netconfig.Blue, true
	}
	return 0, false
}

// UpdateSides faces the players at each other. The player further left is
// on the left side; equal positions keep the current sides.
func (m *Match) UpdateSides() {
	red, blue := m.Players[netconfig.Red], m.Players[netconfig.Blue]
	switch {
	case red.X() > blue.X():
		red.SetSide(netconfig.SideRight)
		blue.SetSide(netconfig.SideLeft)
	case blue.X() > red.X():
		red.SetSide(netconfig.SideLeft)
		blue.SetSide(netconfig.SideRight)
	}
	red.RefreshHitboxes()
	blue.RefreshHitboxes()
}
