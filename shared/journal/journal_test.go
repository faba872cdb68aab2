package journal

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/hashicorp/go-msgpack/v2/codec"

	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/leveldata"
	"github.com/automoto/duelcore/shared/match"
	"github.com/automoto/duelcore/shared/netconfig"
)

func loadFighter(t *testing.T, name string) *fighterdata.Fighter {
	t.Helper()
	f, err := fighterdata.LoadFighter(os.DirFS("../../data/fighters"), name+".yaml")
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return f
}

func TestWriterReader(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Header{RedUsername: "ken", BlueUsername: "ryu", BlueFighter: 1, Started: 1700000000000})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Input(1, netconfig.Blue, 3, netconfig.ButtonLP, true, 0.016); err != nil {
		t.Fatalf("Input: %v", err)
	}
	if err := w.Tick(1, 1.0/120); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.Header.Version != Version || r.Header.BlueUsername != "ryu" || r.Header.BlueFighter != 1 {
		t.Errorf("header = %+v", r.Header)
	}

	recs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := []Record{
		{Kind: KindInput, Tick: 1, Color: netconfig.Blue, Sequence: 3, Button: netconfig.ButtonLP, Pressed: true, Dt: 0.016},
		{Kind: KindTick, Tick: 1, Dt: 1.0 / 120},
	}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, recs[i], want[i])
		}
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next after end = %v, want io.EOF", err)
	}
}

func TestReaderRejectsVersion(t *testing.T) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, handle())
	if err := enc.Encode(Header{Version: Version + 1}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := NewReader(&buf); !errors.Is(err, ErrVersion) {
		t.Errorf("NewReader error = %v, want ErrVersion", err)
	}
}

type step struct {
	color   netconfig.Color
	button  netconfig.Button
	pressed bool
}

// script walks red into blue and throws a punch, with blue walking back
// part of the time.
func script() [][]step {
	var ticks [][]step
	add := func(n int, steps ...step) {
		ticks = append(ticks, steps)
		for i := 1; i < n; i++ {
			ticks = append(ticks, []step{{netconfig.Red, netconfig.ButtonNone, false}, {netconfig.Blue, netconfig.ButtonNone, false}})
		}
	}
	add(200, step{netconfig.Red, netconfig.ButtonRight, true}, step{netconfig.Blue, netconfig.ButtonLeft, true})
	add(20, step{netconfig.Blue, netconfig.ButtonLeft, false}, step{netconfig.Blue, netconfig.ButtonRight, true})
	add(5, step{netconfig.Red, netconfig.ButtonLP, true})
	add(60, step{netconfig.Red, netconfig.ButtonLP, false})
	add(5, step{netconfig.Red, netconfig.ButtonUp, true})
	add(150, step{netconfig.Red, netconfig.ButtonUp, false})
	return ticks
}

func TestReplayIsDeterministic(t *testing.T) {
	tests := []struct {
		name  string
		stage *leveldata.Stage
	}{
		{"default stage", nil},
		{"custom stage", &leveldata.Stage{
			Name:        "wide",
			Width:       1600,
			Height:      480,
			SpawnPoints: []leveldata.SpawnPoint{{X: 200, Index: 0}, {X: 380, Index: 1}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			red, blue := loadFighter(t, "ken"), loadFighter(t, "ryu")
			live, err := match.New(match.Options{
				Red: red, Blue: blue,
				RedMode: netconfig.ModeNet, BlueMode: netconfig.ModeNet,
				Stage:         tt.stage,
				Authoritative: true,
			})
			if err != nil {
				t.Fatalf("match.New: %v", err)
			}

			var buf bytes.Buffer
			w, err := NewWriter(&buf, Header{Stage: tt.stage})
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}

			const dt = 1.0 / 120
			var liveHits []match.HitEvent
			var seq [2]uint32
			for tick, steps := range script() {
				for _, s := range steps {
					seq[s.color]++
					live.ApplyInput(s.color, s.button, s.pressed, dt)
					if err := w.Input(uint64(tick), s.color, seq[s.color], s.button, s.pressed, dt); err != nil {
						t.Fatalf("Input: %v", err)
					}
				}
				liveHits = append(liveHits, live.Tick(dt)...)
				if err := w.Tick(uint64(tick), dt); err != nil {
					t.Fatalf("Tick: %v", err)
				}
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			r, err := NewReader(&buf)
			if err != nil {
				t.Fatalf("NewReader: %v", err)
			}
			if (r.Header.Stage == nil) != (tt.stage == nil) {
				t.Fatalf("header stage = %+v, want %+v", r.Header.Stage, tt.stage)
			}
			recs, err := r.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}

			replayed, hits, err := Replay(red, blue, r.Header.Stage, recs)
			if err != nil {
				t.Fatalf("Replay: %v", err)
			}
			if replayed.Stage.Width != live.Stage.Width || replayed.Stage.Pan() != live.Stage.Pan() {
				t.Errorf("stage width/pan: live %d/%d, replay %d/%d",
					live.Stage.Width, live.Stage.Pan(), replayed.Stage.Width, replayed.Stage.Pan())
			}
			if len(hits) != len(liveHits) {
				t.Errorf("replay hits = %d, live hits = %d", len(hits), len(liveHits))
			}
			for c := netconfig.Red; c <= netconfig.Blue; c++ {
				a, b := live.Player(c), replayed.Player(c)
				if a.X() != b.X() || a.Y() != b.Y() || a.HP() != b.HP() || a.State() != b.State() {
					t.Errorf("%v: live (%d,%d hp %d %v), replay (%d,%d hp %d %v)",
						c, a.X(), a.Y(), a.HP(), a.State(), b.X(), b.Y(), b.HP(), b.State())
				}
			}
		})
	}
}

func TestReplayRejectsBadRecords(t *testing.T) {
	red, blue := loadFighter(t, "ken"), loadFighter(t, "ryu")
	tests := []struct {
		name string
		recs []Record
	}{
		{"unknown kind", []Record{{Kind: 9}}},
		{"bad color", []Record{{Kind: KindInput, Color: 5, Button: netconfig.ButtonNone}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Replay(red, blue, nil, tt.recs); err == nil {
				t.Error("expected error")
			}
		})
	}
}
