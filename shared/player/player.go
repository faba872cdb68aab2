// Package player simulates a single fighter: input handling, movement,
// move playback and hitbox placement. The same code runs on the server and
// on clients so local prediction matches the authority.
package player

import (
	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/fsm"
	"github.com/automoto/duelcore/shared/gamemath"
	"github.com/automoto/duelcore/shared/input"
	"github.com/automoto/duelcore/shared/netconfig"
)

// HitResult is the outcome of TakeHit.
type HitResult int

const (
	HitLanded HitResult = iota
	HitBlocked
)

func (r HitResult) String() string {
	if r == HitBlocked {
		return "blocked"
	}
	return "hit"
}

// Viewport is the visible play area in pixels.
type Viewport struct {
	Width, Height int
}

// Player is one fighter in a match. It exclusively owns its input state,
// its state machine and its hitboxes; moves are read from the fighter's
// arena by index.
type Player struct {
	fighter *fighterdata.Fighter
	input   *input.Input
	device  input.Device
	fsm     *fsm.Machine[netconfig.StateID]
	mode    netconfig.Mode
	side    netconfig.Side

	hp   int
	stun int // ms

	x, y       int
	floor      int
	maxXPos    int
	w, h       int // current draw size
	translateX int

	xVel     int     // px/s
	xJumpVel int     // px/s while airborne
	jump     float64 // arc phase, radians

	currentMove  netconfig.StateID
	currentFrame int
	moveTimer    float64 // ms in the current frame

	hitboxes       [fighterdata.NumHitboxes]Hitbox
	hitboxesActive bool

	debugState netconfig.StateID
}

// New creates a player standing on the floor at x.
func New(f *fighterdata.Fighter, mode netconfig.Mode, side netconfig.Side, x int, view Viewport) *Player {
	p := &Player{
		fighter:    f,
		input:      input.New(),
		fsm:        newMachine(),
		mode:       mode,
		side:       side,
		floor:      view.Height - f.Height - config.Match.FloorMargin,
		maxXPos:    view.Width - f.Width,
		debugState: netconfig.StateNone,
	}
	p.Reset(x)
	return p
}

// newMachine builds the fighter state graph. States without edges are left
// only through move transitions or forced corrections.
func newMachine() *fsm.Machine[netconfig.StateID] {
	m := fsm.New(netconfig.Idle)
	m.AddState(netconfig.Idle).
		AddTransition(netconfig.WalkingForward).
		AddTransition(netconfig.WalkingBack).
		AddTransition(netconfig.Jumping).
		AddTransition(netconfig.Crouching).
		AddTransition(netconfig.AttackLP)
	m.AddState(netconfig.WalkingForward).
		AddTransition(netconfig.Idle).
		AddTransition(netconfig.WalkingBack).
		AddTransition(netconfig.Jumping).
		AddTransition(netconfig.Crouching).
		AddTransition(netconfig.AttackLP)
	m.AddState(netconfig.WalkingBack).
		AddTransition(netconfig.Idle).
		AddTransition(netconfig.WalkingForward).
		AddTransition(netconfig.Jumping).
		AddTransition(netconfig.Crouching).
		AddTransition(netconfig.AttackLP)
	m.AddState(netconfig.Crouching).
		AddTransition(netconfig.Idle).
		AddTransition(netconfig.Crouched).
		AddTransition(netconfig.Jumping)
	m.AddState(netconfig.Crouched).
		AddTransition(netconfig.Uncrouching).
		AddTransition(netconfig.Jumping)
	m.AddState(netconfig.Uncrouching).
		AddTransition(netconfig.Jumping)
	for _, s := range []netconfig.StateID{
		netconfig.Jumping, netconfig.AttackLP,
		netconfig.StunnedJump, netconfig.StunnedHit, netconfig.StunnedBlock,
	} {
		m.AddState(s)
	}
	return m
}

// Reset puts the player back to full health, idle, on the floor at x.
func (p *Player) Reset(x int) {
	p.input.Reset()
	p.fsm.ForceState(netconfig.Idle)
	p.hp = p.fighter.MaxHP
	p.stun = 0
	p.x, p.y = x, p.floor
	p.translateX = 0
	p.xVel, p.xJumpVel, p.jump = 0, 0, 0
	p.enterMove(netconfig.Idle)
	p.refreshGeometry()
}

// SetDevice attaches the button source polled by Update in local and AI modes.
func (p *Player) SetDevice(dev input.Device) {
	p.device = dev
}

// Update runs one simulation step. Players without a device only animate
// here; their movement arrives through ApplyInputEvent.
func (p *Player) Update(dt float64) {
	if p.device != nil {
		for _, c := range p.input.Poll(p.device) {
			p.input.SetButton(c.Button, c.Pressed)
		}
		p.ProcessInput(dt)
		p.ApplyInput(dt)
	}
	p.UpdateMove(dt)
	p.ClampToViewport()
	if p.debugState != netconfig.StateNone {
		p.fsm.ForceState(p.debugState)
	}
}

// ApplyInputEvent applies one button change and integrates dt seconds of
// movement. This is the unit of work the server replays for every client
// input, and the client predicts with.
func (p *Player) ApplyInputEvent(b netconfig.Button, pressed bool, dt float64) {
	p.input.SetButton(b, pressed)
	p.ProcessInput(dt)
	p.ApplyInput(dt)
	p.ClampToViewport()
}

// forward is the x direction the player faces.
func (p *Player) forward() int {
	if p.side == netconfig.SideLeft {
		return 1
	}
	return -1
}

func heldDirection(left, right bool) int {
	switch {
	case left && !right:
		return -1
	case right && !left:
		return 1
	}
	return 0
}

// ProcessInput turns the current button state into state transitions and
// velocity changes.
func (p *Player) ProcessInput(dt float64) {
	in := p.input
	phys := p.fighter.Physics
	left, right := in.Held(netconfig.ButtonLeft), in.Held(netconfig.ButtonRight)

	// --- Jump ---
	if in.Held(netconfig.ButtonUp) && p.fsm.Current() != netconfig.Jumping {
		if p.fsm.AttemptTransition(netconfig.Jumping) == netconfig.Jumping {
			p.jump = 0
			p.xJumpVel = gamemath.Scale(heldDirection(left, right)*phys.XMax, config.Match.JumpXVelFactor)
		}
	}

	// --- Crouch ---
	switch p.fsm.Current() {
	case netconfig.Idle, netconfig.WalkingForward, netconfig.WalkingBack:
		if in.Held(netconfig.ButtonDown) {
			p.fsm.AttemptTransition(netconfig.Crouching)
		}
	case netconfig.Crouching:
		if !in.Held(netconfig.ButtonDown) {
			p.fsm.AttemptTransition(netconfig.Idle)
		}
	case netconfig.Crouched:
		if !in.Held(netconfig.ButtonDown) {
			p.fsm.AttemptTransition(netconfig.Uncrouching)
		}
	}

	// --- Attack ---
	if in.ConsumePress(netconfig.ButtonLP) {
		if p.fsm.AttemptTransition(netconfig.AttackLP) == netconfig.AttackLP {
			p.hitboxesActive = true
		}
	}

	// --- Horizontal ---
	switch p.fsm.Current() {
	case netconfig.Idle, netconfig.WalkingForward, netconfig.WalkingBack:
		dir := heldDirection(left, right)
		p.xVel = gamemath.StepToward(p.xVel, phys.XAccel, phys.XMax, dir)
		switch dir {
		case 0:
			p.fsm.AttemptTransition(netconfig.Idle)
		case p.forward():
			p.fsm.AttemptTransition(netconfig.WalkingForward)
		default:
			p.fsm.AttemptTransition(netconfig.WalkingBack)
		}
		if p.fsm.Current() == netconfig.WalkingBack {
			p.xVel = gamemath.Scale(p.xVel, config.Match.WalkBackFactor)
		}
	case netconfig.Jumping:
		p.jump += phys.JumpSpeed * dt
		if gamemath.ArcComplete(p.jump) {
			p.fsm.ForceState(netconfig.StunnedJump)
			p.jump = 0
		}
	default:
		p.xVel = 0
	}
}

// ApplyInput integrates position over dt seconds.
func (p *Player) ApplyInput(dt float64) {
	vel := p.xVel
	if p.fsm.Current() == netconfig.Jumping {
		vel = p.xJumpVel
	}
	p.translateX = int(float64(vel) * dt)
	p.x += p.translateX
	p.y = p.floor - gamemath.JumpHeight(p.jump, p.fighter.Physics.JumpStrength)
}

// ClampToViewport undoes the last translation when it carried the player
// out of the viewport, then pins the position to the edge.
func (p *Player) ClampToViewport() {
	if p.x < 0 || p.x > p.maxXPos {
		p.x -= p.translateX
		p.x = gamemath.Clamp(p.x, 0, p.maxXPos)
	}
	p.translateX = 0
}

// ClampToStage pins the position inside the stage and above the floor.
func (p *Player) ClampToStage() {
	p.x = gamemath.Clamp(p.x, 0, p.maxXPos)
	p.y = min(p.y, p.floor)
}

// ReplayInput re-runs the movement part of an input step with the state
// pinned. held is the button mask that was in effect after the input.
func (p *Player) ReplayInput(held input.Buttons, dt float64) {
	p.input.SetMask(held)
	phys := p.fighter.Physics

	switch p.fsm.Current() {
	case netconfig.Idle, netconfig.WalkingForward, netconfig.WalkingBack:
		dir := heldDirection(held.Has(netconfig.ButtonLeft), held.Has(netconfig.ButtonRight))
		p.xVel = gamemath.StepToward(p.xVel, phys.XAccel, phys.XMax, dir)
		if dir != 0 && dir != p.forward() {
			p.xVel = gamemath.Scale(p.xVel, config.Match.WalkBackFactor)
		}
		p.x += int(float64(p.xVel) * dt)
	case netconfig.Jumping:
		p.x += int(float64(p.xJumpVel) * dt)
	default:
		p.xVel = 0
	}
}

// UpdateMove advances the current move's animation by dt seconds and
// recomputes hitboxes.
func (p *Player) UpdateMove(dt float64) {
	if state := p.fsm.Current(); state != p.currentMove {
		p.enterMove(state)
	}
	move := p.fighter.Move(p.currentMove)
	p.moveTimer += dt * 1000

	switch p.currentMove {
	case netconfig.StunnedHit, netconfig.StunnedBlock:
		if p.moveTimer > float64(p.stun) {
			p.stun = 0
			next := netconfig.Idle
			if move.HasTransition() {
				next = move.Transition
			}
			p.fsm.ForceState(next)
			p.enterMove(next)
		}
	default:
		if p.moveTimer > float64(move.Frames[p.currentFrame].Gap) {
			p.moveTimer = 0
			p.advanceFrame(move)
		}
	}
	p.refreshGeometry()
}

func (p *Player) advanceFrame(move *fighterdata.Move) {
	if p.currentFrame+1 < len(move.Frames) {
		p.currentFrame++
		return
	}
	switch {
	case move.Repeat:
		p.currentFrame = move.RepeatFrame
	case move.HasTransition():
		p.fsm.ForceState(move.Transition)
		p.enterMove(move.Transition)
	}
	// otherwise hold the last frame
}

func (p *Player) enterMove(id netconfig.StateID) {
	if id != netconfig.AttackLP {
		p.hitboxesActive = false
	}
	if id != netconfig.Jumping {
		p.jump = 0
	}
	p.currentMove = id
	p.currentFrame = 0
	p.moveTimer = 0
}

func (p *Player) refreshGeometry() {
	frame := &p.fighter.Move(p.currentMove).Frames[p.currentFrame]
	p.w = p.fighter.Width + max(frame.RW, 0)
	p.h = p.fighter.Height + max(frame.RH, 0)

	cx := p.x + p.fighter.Width/2
	cy := p.y + p.fighter.Height/2
	mirrored := p.side == netconfig.SideRight
	for i := range p.hitboxes {
		p.hitboxes[i].set(placeHitbox(frame.Hitboxes[i], cx, cy, mirrored))
	}
}

// RefreshHitboxes recomputes hitbox rects after an external position or
// side change.
func (p *Player) RefreshHitboxes() {
	p.refreshGeometry()
}

// TakeHit applies an opponent's move. A player walking backward blocks.
func (p *Player) TakeHit(move *fighterdata.Move) HitResult {
	p.xVel = 0
	if p.fsm.Current() == netconfig.WalkingBack {
		p.fsm.ForceState(netconfig.StunnedBlock)
		p.enterMove(netconfig.StunnedBlock)
		p.stun = move.Blockstun
		return HitBlocked
	}
	p.fsm.ForceState(netconfig.StunnedHit)
	p.enterMove(netconfig.StunnedHit)
	p.stun = move.Hitstun
	p.SetHP(p.hp - move.Damage)
	return HitLanded
}

// ApplyHit mirrors a hit reported by the authority.
func (p *Player) ApplyHit(hp, stun int) {
	p.xVel = 0
	p.fsm.ForceState(netconfig.StunnedHit)
	p.enterMove(netconfig.StunnedHit)
	p.stun = stun
	p.SetHP(hp)
}

// ApplyBlock mirrors a block reported by the authority.
func (p *Player) ApplyBlock(stun int) {
	p.xVel = 0
	p.fsm.ForceState(netconfig.StunnedBlock)
	p.enterMove(netconfig.StunnedBlock)
	p.stun = stun
}

// ApplySnapshot overwrites position, velocity and state with authoritative
// values.
func (p *Player) ApplySnapshot(x, y, xVel int, state netconfig.StateID) {
	p.x, p.y, p.xVel = x, y, xVel
	if state.Valid() {
		p.fsm.ForceState(state)
	}
}

// SetHP sets health, clamped to [0, MaxHP].
func (p *Player) SetHP(hp int) {
	p.hp = gamemath.Clamp(hp, 0, p.fighter.MaxHP)
}

// HealthPercent is the health bar fill, 0 to 100.
func (p *Player) HealthPercent() int {
	return p.hp * 100 / p.fighter.MaxHP
}

// Accessors

func (p *Player) Fighter() *fighterdata.Fighter  { return p.fighter }
func (p *Player) Input() *input.Input            { return p.input }
func (p *Player) Mode() netconfig.Mode           { return p.mode }
func (p *Player) Side() netconfig.Side           { return p.side }
func (p *Player) State() netconfig.StateID       { return p.fsm.Current() }
func (p *Player) HP() int                        { return p.hp }
func (p *Player) Stun() int                      { return p.stun }
func (p *Player) X() int                         { return p.x }
func (p *Player) Y() int                         { return p.y }
func (p *Player) XVel() int                      { return p.xVel }
func (p *Player) JumpPhase() float64             { return p.jump }
func (p *Player) Floor() int                     { return p.floor }
func (p *Player) MaxXPos() int                   { return p.maxXPos }
func (p *Player) Width() int                     { return p.fighter.Width }
func (p *Player) CurrentFrame() int              { return p.currentFrame }
func (p *Player) HitboxesActive() bool           { return p.hitboxesActive }
func (p *Player) Hitbox(slot int) *Hitbox        { return &p.hitboxes[slot] }
func (p *Player) CurrentMove() *fighterdata.Move { return p.fighter.Move(p.currentMove) }

// XVelocity is the horizontal speed that is actually moving the player.
func (p *Player) XVelocity() int {
	if p.fsm.Current() == netconfig.Jumping {
		return p.xJumpVel
	}
	return p.xVel
}

// Airborne reports whether the player is mid-jump.
func (p *Player) Airborne() bool {
	return p.fsm.Current() == netconfig.Jumping
}

func (p *Player) SetHitboxesActive(v bool) { p.hitboxesActive = v }
func (p *Player) SetSide(s netconfig.Side)  { p.side = s }

// SetPosition moves the player without touching velocity.
func (p *Player) SetPosition(x, y int) {
	p.x, p.y = x, y
}

// ForceState overrides the state machine.
func (p *Player) ForceState(id netconfig.StateID) {
	p.fsm.ForceState(id)
}

// SetDebugState pins the state after every Update. StateNone clears it.
func (p *Player) SetDebugState(id netconfig.StateID) {
	p.debugState = id
}
