// Package ai drives a fighter from a tengo script. A ScriptDevice is an
// input.Device, so an AI player is polled exactly like a keyboard.
package ai

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/shared/input"
	"github.com/automoto/duelcore/shared/netconfig"
	"github.com/automoto/duelcore/shared/player"
)

//go:embed scripts/default.tengo
var DefaultScript []byte

// script inputs, set before every run
var scriptInputs = map[string]any{
	"distance":          0,
	"facing":            1,
	"self_state":        "",
	"opp_state":         "",
	"self_hp":           1.0,
	"opp_hp":            1.0,
	"lp_held":           false,
	"roll":              0.0,
	"attack_range":      0,
	"chase_range":       0,
	"retreat_threshold": 0.0,
	"jump_chance":       0.0,
	"block_chance":      0.0,
}

// ScriptDevice presses buttons chosen by a script. Decisions are re-made
// every ReactionDelay seconds; in between the last decision is held.
type ScriptDevice struct {
	compiled *tengo.Compiled
	tuning   config.BotDifficultyConfig
	rng      *rand.Rand

	self, opponent *player.Player

	latch   input.Latch
	elapsed float64
}

// NewScriptDevice compiles src. A nil src uses the embedded default.
func NewScriptDevice(src []byte, difficulty config.BotDifficulty) (*ScriptDevice, error) {
	if src == nil {
		src = DefaultScript
	}
	script := tengo.NewScript(src)
	for name, v := range scriptInputs {
		if err := script.Add(name, v); err != nil {
			return nil, fmt.Errorf("ai: add %s: %w", name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("ai: compile: %w", err)
	}
	tuning, ok := config.Bot.Difficulties[difficulty]
	if !ok {
		tuning = config.Bot.Difficulties[config.BotDifficultyNormal]
	}
	return &ScriptDevice{
		compiled: compiled,
		tuning:   tuning,
		rng:      rand.New(rand.NewSource(config.Bot.Seed)),
	}, nil
}

// LoadScriptDevice reads a script from disk.
func LoadScriptDevice(path string, difficulty config.BotDifficulty) (*ScriptDevice, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ai: read script: %w", err)
	}
	return NewScriptDevice(src, difficulty)
}

// Bind tells the device which player it controls and who it is fighting.
func (d *ScriptDevice) Bind(self, opponent *player.Player) {
	d.self, d.opponent = self, opponent
	d.elapsed = d.tuning.ReactionDelay
}

// Think advances the reaction timer and, when due, runs the script.
func (d *ScriptDevice) Think(dt float64) error {
	if d.self == nil || d.opponent == nil {
		return nil
	}
	d.elapsed += dt
	if d.elapsed < d.tuning.ReactionDelay {
		return nil
	}
	d.elapsed = 0
	return d.decide()
}

func (d *ScriptDevice) decide() error {
	self, opp := d.self, d.opponent
	facing := 1
	if opp.X() < self.X() {
		facing = -1
	}
	distance := opp.X() - self.X()
	if distance < 0 {
		distance = -distance
	}

	vars := map[string]any{
		"distance":          distance,
		"facing":            facing,
		"self_state":        self.State().String(),
		"opp_state":         opp.State().String(),
		"self_hp":           float64(self.HP()) / float64(self.Fighter().MaxHP),
		"opp_hp":            float64(opp.HP()) / float64(opp.Fighter().MaxHP),
		"lp_held":           d.latch.Button(netconfig.ButtonLP),
		"roll":              d.rng.Float64(),
		"attack_range":      d.tuning.AttackRange,
		"chase_range":       d.tuning.ChaseRange,
		"retreat_threshold": d.tuning.RetreatThreshold,
		"jump_chance":       d.tuning.JumpChance,
		"block_chance":      d.tuning.BlockChance,
	}
	for name, v := range vars {
		if err := d.compiled.Set(name, v); err != nil {
			return fmt.Errorf("ai: set %s: %w", name, err)
		}
	}
	if err := d.compiled.Run(); err != nil {
		return fmt.Errorf("ai: run: %w", err)
	}

	move := d.compiled.Get("move").Int()
	d.latch.Set(netconfig.ButtonLeft, move < 0)
	d.latch.Set(netconfig.ButtonRight, move > 0)
	d.latch.Set(netconfig.ButtonUp, d.compiled.Get("up").Bool())
	d.latch.Set(netconfig.ButtonDown, d.compiled.Get("down").Bool())
	d.latch.Set(netconfig.ButtonLP, d.compiled.Get("lp").Bool())
	return nil
}

func (d *ScriptDevice) Button(b netconfig.Button) bool {
	return d.latch.Button(b)
}

func (d *ScriptDevice) ReleasedSinceLastQuery(b netconfig.Button) bool {
	return d.latch.ReleasedSinceLastQuery(b)
}
