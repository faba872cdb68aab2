package network

import (
	"github.com/automoto/duelcore/shared/input"
	"github.com/automoto/duelcore/shared/messages"
	"github.com/automoto/duelcore/shared/netconfig"
	"github.com/automoto/duelcore/shared/player"
)

// PendingInput is an input the server has not acknowledged yet, with the
// button mask that was held after it was applied.
type PendingInput struct {
	Sequence uint32
	Button   netconfig.Button
	Pressed  bool
	Dt       float64
	Held     input.Buttons
}

// Predictor applies local inputs to the player immediately and reconciles
// with authoritative snapshots by replaying whatever is still pending.
type Predictor struct {
	player  *player.Player
	pending []PendingInput
	nextSeq uint32
	jumpSeq uint32 // sequence of the input that started the latest jump
}

func NewPredictor(p *player.Player) *Predictor {
	return &Predictor{player: p}
}

// Apply predicts one input and returns the message to send for it.
func (pr *Predictor) Apply(b netconfig.Button, pressed bool, dt float64) messages.ClientInput {
	pr.nextSeq++
	seq := pr.nextSeq

	wasJumping := pr.player.State() == netconfig.Jumping
	pr.player.ApplyInputEvent(b, pressed, dt)
	if !wasJumping && pr.player.State() == netconfig.Jumping {
		pr.jumpSeq = seq
	}

	pr.pending = append(pr.pending, PendingInput{
		Sequence: seq,
		Button:   b,
		Pressed:  pressed,
		Dt:       dt,
		Held:     pr.player.Input().Mask(),
	})
	return messages.ClientInput{Sequence: seq, Button: b, Pressed: pressed, Dt: dt}
}

// Pending returns the unacknowledged inputs in sequence order.
func (pr *Predictor) Pending() []PendingInput {
	return pr.pending
}

// NextSequence is the sequence the next Apply will use.
func (pr *Predictor) NextSequence() uint32 {
	return pr.nextSeq + 1
}

// Ack drops every pending input with a sequence at or below n.
func (pr *Predictor) Ack(n uint32) {
	i := 0
	for i < len(pr.pending) && pr.pending[i].Sequence <= n {
		i++
	}
	pr.pending = append(pr.pending[:0], pr.pending[i:]...)
}

// Reconcile folds an authoritative snapshot of the local player into the
// prediction. Corrections are skipped while attacking or jumping so the
// animation is not interrupted, and for snapshots that predate the current
// jump; the next snapshot outside those windows corrects any drift.
//
// A snapshot in JUMPING or ATTACK_LP is never adopted. The server ends moves
// on its own ticks, so such a snapshot usually trails a client that has
// already landed or recovered, and forcing it would restart the move.
func (pr *Predictor) Reconcile(u messages.PlayerUpdate) {
	pr.Ack(u.LastProcessedInput)

	p := pr.player
	switch p.State() {
	case netconfig.AttackLP, netconfig.Jumping:
		return
	}
	switch netconfig.StateID(u.State) {
	case netconfig.AttackLP, netconfig.Jumping:
		return
	}
	if u.LastProcessedInput < pr.jumpSeq {
		return
	}

	p.ApplySnapshot(int(u.X), int(u.Y), int(u.XVel), netconfig.StateID(u.State))
	for _, in := range pr.pending {
		p.ReplayInput(in.Held, in.Dt)
	}
	p.ClampToStage()
	p.RefreshHitboxes()
}
