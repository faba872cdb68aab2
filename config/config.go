package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig contains the dedicated server settings
type ServerConfig struct {
	Port           uint          `yaml:"port"`
	TickRate       int           `yaml:"tick_rate"`       // simulation + snapshot ticks per second
	ResyncInterval time.Duration `yaml:"resync_interval"` // reliable ack + camera pan cadence
	MaxInputDt     float64       `yaml:"max_input_dt"`    // seconds; larger client dt is dropped
	InboundQueue   int           `yaml:"inbound_queue"`   // transport -> tick queue depth
	OutboundQueue  int           `yaml:"outbound_queue"`  // per-connection send queue depth
	PingInterval   time.Duration `yaml:"ping_interval"`
	PingTimeout    time.Duration `yaml:"ping_timeout"`
	FightersDir    string        `yaml:"fighters_dir"`
	Roster         string        `yaml:"roster"` // relative to FightersDir
	Stage          string        `yaml:"stage"`  // TMX path, empty for the default stage
	JournalDir     string        `yaml:"journal_dir"`
	HotReload      bool          `yaml:"hot_reload"`
}

// MatchConfig contains the shared simulation constants. Client and server
// must agree on these or prediction will drift.
type MatchConfig struct {
	ViewportWidth   int
	ViewportHeight  int
	StageWidth      int     // scrollable background width
	StartingOffset  int     // spawn distance from the viewport edge
	FloorMargin     int     // gap between sprite bottom and viewport bottom
	ShiftMultiplier float64 // stage scroll per unit of pushing velocity
	JumpXVelFactor  float64 // jump x-velocity as a multiple of XMax
	WalkBackFactor  float64 // velocity kept while walking backward
	DefaultMaxHP    int
}

// ClientConfig contains the network client settings
type ClientConfig struct {
	InboundQueue      int
	DialTimeout       time.Duration
	CameraPanDuration float32 // seconds
}

// Global configuration instances
var Server ServerConfig
var Match MatchConfig
var Client ClientConfig

func init() {
	Server = ServerConfig{
		Port:           7373,
		TickRate:       120,
		ResyncInterval: 3 * time.Second,
		MaxInputDt:     0.25,
		InboundQueue:   1024,
		OutboundQueue:  256,
		PingInterval:   2 * time.Second,
		PingTimeout:    5 * time.Second,
		FightersDir:    "data/fighters",
		Roster:         "roster.yaml",
	}

	Match = MatchConfig{
		ViewportWidth:   640,
		ViewportHeight:  480,
		StageWidth:      1280,
		StartingOffset:  40,
		FloorMargin:     26,
		ShiftMultiplier: 0.5,
		JumpXVelFactor:  1.75,
		WalkBackFactor:  0.90,
		DefaultMaxHP:    1200,
	}

	Client = ClientConfig{
		InboundQueue:      256,
		DialTimeout:       5 * time.Second,
		CameraPanDuration: 0.15,
	}
}

// LoadServerFile overlays the YAML file at path onto Server. Fields missing
// from the file keep their current values.
func LoadServerFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read server config: %w", err)
	}
	cfg := Server
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse server config %s: %w", path, err)
	}
	if cfg.TickRate <= 0 {
		return fmt.Errorf("parse server config %s: tick_rate must be positive", path)
	}
	Server = cfg
	return nil
}
