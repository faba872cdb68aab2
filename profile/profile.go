// Package profile persists the client's player profile between runs.
package profile

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/quasilyte/gdata"
)

const profileKey = "profile"

// Profile is what the client remembers about its player.
type Profile struct {
	Username   string `json:"username"`
	FighterID  uint32 `json:"fighterId"`
	Server     string `json:"server"`
	Difficulty string `json:"difficulty"`
	Script     string `json:"script,omitempty"` // AI script path, empty for the built-in one
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
}

// Default is used when nothing has been saved yet.
func Default() Profile {
	return Profile{
		Username:   "player",
		Server:     "localhost:7373",
		Difficulty: "normal",
	}
}

// Store is the item storage a Manager saves into.
type Store interface {
	LoadItem(key string) ([]byte, error)
	SaveItem(key string, data []byte) error
}

// Manager loads and saves the profile.
type Manager struct {
	store Store
}

// Open uses gdata storage for appName.
func Open(appName string) (*Manager, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("profile: open storage: %w", err)
	}
	return &Manager{store: m}, nil
}

// NewManager wraps an existing store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Load returns the saved profile, or Default if there is none.
func (m *Manager) Load() (Profile, error) {
	data, err := m.store.LoadItem(profileKey)
	if err != nil {
		return Default(), fmt.Errorf("profile: load: %w", err)
	}
	if len(data) == 0 {
		return Default(), nil
	}

	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("Warning: Could not parse saved profile: %v", err)
		return Default(), fmt.Errorf("profile: parse: %w", err)
	}
	return p, nil
}

// Save writes p.
func (m *Manager) Save(p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile: serialize: %w", err)
	}
	if err := m.store.SaveItem(profileKey, data); err != nil {
		return fmt.Errorf("profile: save: %w", err)
	}
	return nil
}

// RecordResult updates the win/loss tally after a match.
func (m *Manager) RecordResult(won bool) (Profile, error) {
	p, err := m.Load()
	if err != nil {
		return p, err
	}
	if won {
		p.Wins++
	} else {
		p.Losses++
	}
	return p, m.Save(p)
}
