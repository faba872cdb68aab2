package main

import (
	"context"
	"os"
	"testing"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/profile"
	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/match"
	"github.com/automoto/duelcore/shared/netconfig"
	"github.com/automoto/duelcore/shared/player"
)

func testRoster(t *testing.T) *fighterdata.Roster {
	t.Helper()
	roster, err := fighterdata.LoadRoster(os.DirFS(config.Server.FightersDir), config.Server.Roster)
	if err != nil {
		t.Fatal(err)
	}
	return roster
}

func TestRunLocal(t *testing.T) {
	prof := profile.Default()
	prof.Difficulty = "hard"
	if err := runLocal(context.Background(), testRoster(t), prof, "data/stages/dojo.tmx", 1); err != nil {
		t.Fatalf("runLocal: %v", err)
	}
}

func TestRunLocalBadScript(t *testing.T) {
	prof := profile.Default()
	prof.Script = "does/not/exist.tengo"
	if err := runLocal(context.Background(), testRoster(t), prof, "", 1); err == nil {
		t.Fatal("expected an error for a missing script")
	}
}

func TestPlayLocalStopsOnCancel(t *testing.T) {
	roster := testRoster(t)
	red, err := roster.Fighter(0)
	if err != nil {
		t.Fatal(err)
	}
	m, err := match.New(match.Options{
		Red:           red,
		Blue:          red,
		RedMode:       netconfig.ModeAI,
		BlueMode:      netconfig.ModeAI,
		Viewport:      player.Viewport{Width: config.Match.ViewportWidth, Height: config.Match.ViewportHeight},
		Authoritative: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := playLocal(ctx, m, [2]interface{ Think(float64) error }{})
	if err != nil || ok {
		t.Errorf("playLocal = %v, %v; want no winner and no error", ok, err)
	}
}
