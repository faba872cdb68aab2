package fighterdata

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/shared/netconfig"
	"gopkg.in/yaml.v3"
)

// ErrMissingMove is returned when a descriptor lacks one of the required moves.
var ErrMissingMove = errors.New("missing move")

// ErrInvalidMove is returned when a move definition breaks a data invariant.
var ErrInvalidMove = errors.New("invalid move")

// FighterSpec is the YAML form of a fighter descriptor.
type FighterSpec struct {
	Name        string              `yaml:"name"`
	SpriteSheet string              `yaml:"sprite_sheet"`
	Width       int                 `yaml:"width"`
	Height      int                 `yaml:"height"`
	MaxHP       int                 `yaml:"max_hp"`
	Physics     PhysicsSpec         `yaml:"physics"`
	Moves       map[string]MoveSpec `yaml:"moves"`
}

type PhysicsSpec struct {
	XAccel       int     `yaml:"x_accel"`
	XMax         int     `yaml:"x_max"`
	JumpStrength float64 `yaml:"jump_strength"`
	JumpSpeed    float64 `yaml:"jump_speed"`
}

type MoveSpec struct {
	FrameGap    int         `yaml:"frame_gap"`
	FrameData   [3]int      `yaml:"frame_data"` // startup, active, recovery
	Damage      int         `yaml:"damage"`
	Hitstun     int         `yaml:"hitstun"`
	Blockstun   int         `yaml:"blockstun"`
	Knockback   int         `yaml:"knockback"`
	Recoil      int         `yaml:"recoil"`
	Repeat      bool        `yaml:"repeat"`
	RepeatFrame int         `yaml:"repeat_frame"`
	Reverse     bool        `yaml:"reverse"`
	Transition  string      `yaml:"transition"`
	XVel        int         `yaml:"x_vel"`
	YVel        int         `yaml:"y_vel"`
	Frames      []FrameSpec `yaml:"frames"`
}

// FrameSpec fields left out (or set to -1) inherit from the previous frame.
type FrameSpec struct {
	X        *int              `yaml:"x"`
	Y        *int              `yaml:"y"`
	W        *int              `yaml:"w"`
	H        *int              `yaml:"h"`
	RW       int               `yaml:"rw"`
	RH       int               `yaml:"rh"`
	Gap      *int              `yaml:"gap"`
	Hitboxes map[string][4]int `yaml:"hitboxes"`
}

// Loader resolves a fighter descriptor to its definition.
type Loader interface {
	LoadFighter(descriptor string) (*Fighter, error)
}

// FSLoader reads descriptors from a file system.
type FSLoader struct {
	FS fs.FS
}

// LoadFighter reads and parses the descriptor at name.
func (l FSLoader) LoadFighter(name string) (*Fighter, error) {
	return LoadFighter(l.FS, name)
}

// LoadFighter reads and parses a descriptor from fsys.
func LoadFighter(fsys fs.FS, name string) (*Fighter, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("fighterdata: load %s: %w", name, err)
	}
	f, err := ParseFighter(data)
	if err != nil {
		return nil, fmt.Errorf("fighterdata: %s: %w", path.Base(name), err)
	}
	return f, nil
}

// LoadMoves returns the moves of the descriptor at name in StateID order.
func LoadMoves(fsys fs.FS, name string) ([]Move, error) {
	f, err := LoadFighter(fsys, name)
	if err != nil {
		return nil, err
	}
	return f.Moves[:], nil
}

// ParseFighter builds a Fighter from YAML. Every state must have a move.
func ParseFighter(data []byte) (*Fighter, error) {
	var spec FighterSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	f := &Fighter{
		Name:        spec.Name,
		SpriteSheet: spec.SpriteSheet,
		Width:       spec.Width,
		Height:      spec.Height,
		MaxHP:       spec.MaxHP,
		Physics: Physics{
			XAccel:       spec.Physics.XAccel,
			XMax:         spec.Physics.XMax,
			JumpStrength: spec.Physics.JumpStrength,
			JumpSpeed:    spec.Physics.JumpSpeed,
		},
	}
	if f.MaxHP <= 0 {
		f.MaxHP = config.Match.DefaultMaxHP
	}

	for id := netconfig.Idle; id < netconfig.NumStates; id++ {
		ms, ok := spec.Moves[id.String()]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingMove, id)
		}
		move, err := buildMove(id, ms)
		if err != nil {
			return nil, err
		}
		f.Moves[id] = move
	}
	for key := range spec.Moves {
		if _, ok := netconfig.ParseStateID(key); !ok {
			return nil, fmt.Errorf("%w: unknown move %q", ErrInvalidMove, key)
		}
	}

	if f.Width <= 0 || f.Height <= 0 {
		first := f.Moves[netconfig.Idle].Frames[0].Src
		f.Width, f.Height = first.W, first.H
	}
	return f, nil
}

func buildMove(id netconfig.StateID, ms MoveSpec) (Move, error) {
	m := Move{
		ID:          id,
		Name:        id.String(),
		FrameGap:    ms.FrameGap,
		Startup:     ms.FrameData[0],
		Active:      ms.FrameData[1],
		Recovery:    ms.FrameData[2],
		Damage:      ms.Damage,
		Hitstun:     ms.Hitstun,
		Blockstun:   ms.Blockstun,
		Knockback:   ms.Knockback,
		Recoil:      ms.Recoil,
		Repeat:      ms.Repeat,
		RepeatFrame: ms.RepeatFrame,
		Reverse:     ms.Reverse,
		Transition:  netconfig.StateNone,
		XVel:        ms.XVel,
		YVel:        ms.YVel,
	}

	if m.FrameGap <= 0 {
		return m, fmt.Errorf("%w: %s: frame_gap must be positive", ErrInvalidMove, id)
	}
	if len(ms.Frames) == 0 {
		return m, fmt.Errorf("%w: %s: no frames", ErrInvalidMove, id)
	}
	if m.Repeat && (m.RepeatFrame < 0 || m.RepeatFrame >= len(ms.Frames)) {
		return m, fmt.Errorf("%w: %s: repeat_frame %d out of range", ErrInvalidMove, id, m.RepeatFrame)
	}
	if ms.Transition != "" && ms.Transition != "none" {
		target, ok := netconfig.ParseStateID(ms.Transition)
		if !ok {
			return m, fmt.Errorf("%w: %s: unknown transition %q", ErrInvalidMove, id, ms.Transition)
		}
		m.Transition = target
	}

	m.Frames = make([]Frame, len(ms.Frames))
	var prev Rect
	for i, fspec := range ms.Frames {
		src := Rect{
			X: inherit(fspec.X, prev.X),
			Y: inherit(fspec.Y, prev.Y),
			W: inherit(fspec.W, prev.W),
			H: inherit(fspec.H, prev.H),
		}
		frame := Frame{Src: src, Gap: inherit(fspec.Gap, m.FrameGap)}

		if i == 0 {
			frame.RW = max(fspec.RW, 0)
			frame.RH = max(fspec.RH, 0)
		} else {
			first := m.Frames[0].Src
			frame.RW = src.W - first.W
			frame.RH = src.H - first.H
		}

		for key, v := range fspec.Hitboxes {
			slot, ok := HitboxKeys[key]
			if !ok {
				return m, fmt.Errorf("%w: %s frame %d: unknown hitbox %q", ErrInvalidMove, id, i, key)
			}
			frame.Hitboxes[slot] = Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}
		}

		m.Frames[i] = frame
		prev = src
	}
	return m, nil
}

// inherit returns fallback when v is unset or -1.
func inherit(v *int, fallback int) int {
	if v == nil || *v == -1 {
		return fallback
	}
	return *v
}
