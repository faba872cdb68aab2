package match

import (
	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/netconfig"
	"github.com/automoto/duelcore/shared/player"
)

// contact reports whether any active damage box of att overlaps a normal
// box of def.
func contact(att, def *player.Player) bool {
	if !att.HitboxesActive() {
		return false
	}
	for _, i := range fighterdata.DamageHitboxes {
		for _, j := range fighterdata.NormalHitboxes {
			if att.Hitbox(i).Intersects(def.Hitbox(j)) {
				return true
			}
		}
	}
	return false
}

// ResolveHits tests both attack directions, then applies every contact.
// Contacts are gathered before any is applied so simultaneous attacks trade.
// Each activation lands at most once: the attacker's flag is cleared on
// contact.
func (m *Match) ResolveHits() []HitEvent {
	var hits [2]bool
	for c := netconfig.Red; c <= netconfig.Blue; c++ {
		hits[c] = contact(m.Players[c], m.Players[c.Other()])
	}

	var events []HitEvent
	for c := netconfig.Red; c <= netconfig.Blue; c++ {
		if !hits[c] {
			continue
		}
		att, def := m.Players[c], m.Players[c.Other()]
		move := att.CurrentMove()
		att.SetHitboxesActive(false)
		result := def.TakeHit(move)
		events = append(events, HitEvent{
			Attacker: c,
			Defender: c.Other(),
			Result:   result,
			HP:       def.HP(),
			Stun:     def.Stun(),
		})
	}
	return events
}

// overlap returns how far the normal boxes of the left and right players
// overlap horizontally, or 0.
func overlap(left, right *player.Player) int {
	depth := 0
	for _, i := range fighterdata.NormalHitboxes {
		for _, j := range fighterdata.NormalHitboxes {
			a, b := left.Hitbox(i), right.Hitbox(j)
			if !a.Intersects(b) {
				continue
			}
			depth = max(depth, a.Rect.X+a.Rect.W-b.Rect.X)
		}
	}
	return depth
}

// PushApart separates overlapping bodies. Two grounded or two airborne
// players share the displacement; when only one is airborne the grounded
// player takes all of it.
func (m *Match) PushApart() {
	left, right := m.Players[netconfig.Red], m.Players[netconfig.Blue]
	if left.Side() == netconfig.SideRight {
		left, right = right, left
	}

	depth := overlap(left, right)
	if depth <= 0 {
		return
	}

	var dl, dr int
	switch {
	case left.Airborne() == right.Airborne():
		dl = depth / 2
		dr = depth - dl
	case left.Airborne():
		dr = depth
	default:
		dl = depth
	}

	left.SetPosition(left.X()-dl, left.Y())
	right.SetPosition(right.X()+dr, right.Y())
	left.ClampToStage()
	right.ClampToStage()
	left.RefreshHitboxes()
	right.RefreshHitboxes()
}
