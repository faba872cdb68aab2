// Package input tracks per-player button state and the edge flags used to
// stop held buttons from retriggering actions.
package input

import "github.com/automoto/duelcore/shared/netconfig"

// Device is a source of raw button state, such as a keyboard, a gamepad or
// a script.
type Device interface {
	Button(b netconfig.Button) bool
	// ReleasedSinceLastQuery reports whether b went up since the previous
	// call for b, and clears that record.
	ReleasedSinceLastQuery(b netconfig.Button) bool
}

// Buttons is a bitmask of held buttons.
type Buttons uint16

// Has reports whether b is set in the mask.
func (m Buttons) Has(b netconfig.Button) bool {
	return b < netconfig.NumButtons && m&(1<<b) != 0
}

// With returns the mask with b set or cleared.
func (m Buttons) With(b netconfig.Button, pressed bool) Buttons {
	if b >= netconfig.NumButtons {
		return m
	}
	if pressed {
		return m | 1<<b
	}
	return m &^ (1 << b)
}

// Change is a single button transition.
type Change struct {
	Button  netconfig.Button
	Pressed bool
}

// Input is the button state of one player.
//
// A button's reactivated flag is set on release and cleared when a press is
// consumed. A release followed by a press within one tick therefore always
// leaves a usable edge, because the release is applied first.
type Input struct {
	held        Buttons
	reactivated [netconfig.NumButtons]bool
}

// New returns an Input with nothing held and every edge armed.
func New() *Input {
	in := &Input{}
	in.Reset()
	return in
}

// Reset releases every button and re-arms every edge.
func (in *Input) Reset() {
	in.held = 0
	for i := range in.reactivated {
		in.reactivated[i] = true
	}
}

// SetButton records a press or release. ButtonNone and unknown buttons are
// ignored.
func (in *Input) SetButton(b netconfig.Button, pressed bool) {
	if b >= netconfig.NumButtons {
		return
	}
	if !pressed {
		in.reactivated[b] = true
	}
	in.held = in.held.With(b, pressed)
}

// Held reports whether b is currently down.
func (in *Input) Held(b netconfig.Button) bool {
	return in.held.Has(b)
}

// Reactivated reports whether b has been released since its last consumed press.
func (in *Input) Reactivated(b netconfig.Button) bool {
	return b < netconfig.NumButtons && in.reactivated[b]
}

// ConsumePress reports whether b is down with an armed edge, and disarms the
// edge when it is.
func (in *Input) ConsumePress(b netconfig.Button) bool {
	if !in.Held(b) || !in.Reactivated(b) {
		return false
	}
	in.reactivated[b] = false
	return true
}

// Mask returns the held buttons.
func (in *Input) Mask() Buttons {
	return in.held
}

// SetMask overwrites the held buttons without touching edge flags.
func (in *Input) SetMask(m Buttons) {
	in.held = m
}

// Poll compares dev with the current state and returns the transitions
// needed to catch up, in the order they should be applied. It does not
// modify in. A press and release that both happened between polls is
// reported as a press followed by a release.
func (in *Input) Poll(dev Device) []Change {
	var changes []Change
	for b := netconfig.Button(0); b < netconfig.NumButtons; b++ {
		held := in.Held(b)
		released := dev.ReleasedSinceLastQuery(b)
		now := dev.Button(b)

		if released {
			if !held {
				changes = append(changes, Change{Button: b, Pressed: true})
			}
			changes = append(changes, Change{Button: b, Pressed: false})
			held = false
		}
		if now != held {
			changes = append(changes, Change{Button: b, Pressed: now})
		}
	}
	return changes
}

// Latch is a Device driven by explicit Press and Release calls.
type Latch struct {
	down     Buttons
	released Buttons
}

// Press marks b down.
func (l *Latch) Press(b netconfig.Button) {
	l.down = l.down.With(b, true)
}

// Release marks b up and records the release.
func (l *Latch) Release(b netconfig.Button) {
	if l.down.Has(b) {
		l.released = l.released.With(b, true)
	}
	l.down = l.down.With(b, false)
}

// Set presses or releases b.
func (l *Latch) Set(b netconfig.Button, pressed bool) {
	if pressed {
		l.Press(b)
	} else {
		l.Release(b)
	}
}

func (l *Latch) Button(b netconfig.Button) bool {
	return l.down.Has(b)
}

func (l *Latch) ReleasedSinceLastQuery(b netconfig.Button) bool {
	r := l.released.Has(b)
	l.released = l.released.With(b, false)
	return r
}
