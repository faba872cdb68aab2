// Package netconfig defines lightweight types shared between client and server
// for network serialization. It must have zero dependencies on rendering or
// transport code so the dedicated server binary stays headless.
package netconfig

// StateID identifies a fighter's combat state. The same value indexes the
// fighter's move arena, so every state has exactly one move.
type StateID int

const (
	StateNone StateID = -1

	Idle StateID = iota - 1
	WalkingForward
	WalkingBack
	Jumping
	Crouching
	Crouched
	Uncrouching
	AttackLP
	StunnedJump
	StunnedHit
	StunnedBlock

	NumStates // Must be last - used for array sizing
)

// StateNames maps StateID to the move key used in fighter descriptors.
var StateNames = map[StateID]string{
	Idle:           "IDLE",
	WalkingForward: "WALKING_FORWARD",
	WalkingBack:    "WALKING_BACK",
	Jumping:        "JUMPING",
	Crouching:      "CROUCHING",
	Crouched:       "CROUCHED",
	Uncrouching:    "UNCROUCHING",
	AttackLP:       "ATTACK_LP",
	StunnedJump:    "STUNNED_JUMP",
	StunnedHit:     "STUNNED_HIT",
	StunnedBlock:   "STUNNED_BLOCK",
}

func (s StateID) String() string {
	if name, ok := StateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s indexes a real state.
func (s StateID) Valid() bool {
	return s >= Idle && s < NumStates
}

// ParseStateID looks up a state by its descriptor key.
func ParseStateID(name string) (StateID, bool) {
	for id, n := range StateNames {
		if n == name {
			return id, true
		}
	}
	return StateNone, false
}

// Button identifies a logical input button.
type Button uint8

const (
	ButtonUp Button = iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonLP
	ButtonStart
	ButtonSelect
	NumButtons // Must be last - used for array sizing

	// ButtonNone marks an input that carries only elapsed time.
	ButtonNone Button = 0xFF
)

var buttonNames = [NumButtons]string{"up", "down", "left", "right", "lp", "start", "select"}

func (b Button) String() string {
	if b < NumButtons {
		return buttonNames[b]
	}
	if b == ButtonNone {
		return "none"
	}
	return "unknown"
}

// ParseButton looks up a button by its lowercase name.
func ParseButton(name string) (Button, bool) {
	for i, n := range buttonNames {
		if n == name {
			return Button(i), true
		}
	}
	return ButtonNone, false
}

// Side is the half of the stage a fighter occupies, which is also the
// direction it faces away from.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Mode is who drives a player's input.
type Mode int

const (
	ModeLocal Mode = iota // local input device
	ModeAI                // scripted device
	ModeNet               // remote client, driven by network input
)

// Color is a player's slot in a match.
type Color int

const (
	Red Color = iota
	Blue
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "blue"
}

// Other returns the opposing slot.
func (c Color) Other() Color {
	return 1 - c
}
