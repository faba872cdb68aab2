// Package fighterdata holds the static per-fighter move definitions and
// loads them from YAML descriptors. It has no dependencies on simulation
// code; players only read from it.
package fighterdata

import "github.com/automoto/duelcore/shared/netconfig"

// Hitbox slots within a frame.
const (
	HitboxLower = iota
	HitboxBody
	HitboxUpper
	HitboxHead
	HitboxThrow
	HitboxDamage1
	HitboxDamage2
	HitboxCounter1
	HitboxCounter2
	NumHitboxes
)

// NormalHitboxes are the boxes that can be hit and that push players apart.
var NormalHitboxes = [...]int{HitboxLower, HitboxBody, HitboxUpper, HitboxHead}

// DamageHitboxes are the boxes that deal damage.
var DamageHitboxes = [...]int{HitboxDamage1, HitboxDamage2}

// HitboxKeys maps descriptor keys to hitbox slots.
var HitboxKeys = map[string]int{
	"lower":    HitboxLower,
	"body":     HitboxBody,
	"upper":    HitboxUpper,
	"head":     HitboxHead,
	"throw":    HitboxThrow,
	"damage1":  HitboxDamage1,
	"damage2":  HitboxDamage2,
	"counter1": HitboxCounter1,
	"counter2": HitboxCounter2,
}

// Rect is an integer rectangle. For hitboxes X and Y are offsets from the
// sprite center.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Frame is one animation frame.
type Frame struct {
	Src      Rect // sprite-sheet rect
	RW, RH   int  // draw size delta relative to the first frame
	Gap      int  // ms this frame is shown
	Hitboxes [NumHitboxes]Rect
}

// Move is one animation plus its combat data.
type Move struct {
	ID       netconfig.StateID
	Name     string
	FrameGap int // default ms per frame

	Startup, Active, Recovery int

	Damage    int
	Hitstun   int // ms
	Blockstun int // ms
	Knockback int
	Recoil    int

	Repeat      bool
	RepeatFrame int
	Reverse     bool
	Transition  netconfig.StateID // StateNone when the move has no follow-up

	XVel, YVel int

	Frames []Frame
}

// HasTransition reports whether the move forces a state when it ends.
func (m *Move) HasTransition() bool {
	return m.Transition != netconfig.StateNone
}

// Physics holds a fighter's movement constants.
type Physics struct {
	XAccel       int     // px/s added per input step
	XMax         int     // px/s
	JumpStrength float64 // px at the top of the arc
	JumpSpeed    float64 // rad/s of jump phase
}

// Fighter is the full static definition of one character.
type Fighter struct {
	Name        string
	SpriteSheet string
	Width       int
	Height      int
	MaxHP       int
	Physics     Physics

	// Moves is indexed by StateID.
	Moves [netconfig.NumStates]Move
}

// Move returns the move for id.
func (f *Fighter) Move(id netconfig.StateID) *Move {
	return &f.Moves[id]
}
