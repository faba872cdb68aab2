package match

import (
	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/shared/gamemath"
	"github.com/automoto/duelcore/shared/netconfig"
)

// Stage is the scrolling background. Pan is how far the viewport has
// scrolled from the left edge of the stage.
type Stage struct {
	Width         int
	ViewportWidth int
	pan           int
}

// RightEdge is the largest pan.
func (s *Stage) RightEdge() int {
	return max(s.Width-s.ViewportWidth, 0)
}

// Pan returns the current scroll.
func (s *Stage) Pan() int {
	return s.pan
}

// SetPan sets the scroll, clamped to the stage.
func (s *Stage) SetPan(v int) {
	s.pan = gamemath.Clamp(v, 0, s.RightEdge())
}

// Shift scrolls by d and returns how much the stage actually moved.
func (s *Stage) Shift(d int) int {
	before := s.pan
	s.SetPan(s.pan + d)
	return s.pan - before
}

// ShiftStage scrolls the background when a player keeps pushing into the
// viewport edge behind them. The opponent is moved the opposite way so
// both stay put relative to the stage.
func (m *Match) ShiftStage(dt float64) {
	for c := netconfig.Red; c <= netconfig.Blue; c++ {
		p, other := m.Players[c], m.Players[c.Other()]
		vel := p.XVelocity()

		pinned := false
		switch p.Side() {
		case netconfig.SideLeft:
			pinned = p.X() <= 0 && vel < 0 && other.X() < other.MaxXPos()
		case netconfig.SideRight:
			pinned = p.X() >= p.MaxXPos() && vel > 0 && other.X() > 0
		}
		if !pinned {
			continue
		}

		shift := m.Stage.Shift(gamemath.Scale(vel, dt*config.Match.ShiftMultiplier))
		if shift == 0 {
			continue
		}
		other.SetPosition(other.X()-shift*2, other.Y())
		other.ClampToStage()
		other.RefreshHitboxes()
	}
}
