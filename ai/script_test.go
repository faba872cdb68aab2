package ai

import (
	"os"
	"testing"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/netconfig"
	"github.com/automoto/duelcore/shared/player"
)

func newPlayers(t *testing.T, selfX, oppX int) (*player.Player, *player.Player) {
	t.Helper()
	f, err := fighterdata.LoadFighter(os.DirFS("../data/fighters"), "ken.yaml")
	if err != nil {
		t.Fatal(err)
	}
	view := player.Viewport{Width: 640, Height: 480}
	return player.New(f, netconfig.ModeAI, netconfig.SideLeft, selfX, view),
		player.New(f, netconfig.ModeNet, netconfig.SideRight, oppX, view)
}

func newDevice(t *testing.T, src []byte) *ScriptDevice {
	t.Helper()
	d, err := NewScriptDevice(src, config.BotDifficultyNormal)
	if err != nil {
		t.Fatalf("NewScriptDevice: %v", err)
	}
	return d
}

func TestDefaultScriptDecisions(t *testing.T) {
	tests := []struct {
		name      string
		selfX     int
		oppX      int
		hp        int
		wantLeft  bool
		wantRight bool
		wantLP    bool
	}{
		{"approach right", 40, 500, 1200, false, true, false},
		{"approach left", 500, 40, 1200, true, false, false},
		{"punch in range", 100, 200, 1200, false, false, true},
		{"retreat when hurt", 100, 300, 100, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			self, opp := newPlayers(t, tt.selfX, tt.oppX)
			self.SetHP(tt.hp)
			d := newDevice(t, nil)
			d.Bind(self, opp)
			if err := d.Think(0); err != nil {
				t.Fatalf("Think: %v", err)
			}
			if d.Button(netconfig.ButtonLeft) != tt.wantLeft ||
				d.Button(netconfig.ButtonRight) != tt.wantRight ||
				d.Button(netconfig.ButtonLP) != tt.wantLP {
				t.Errorf("left=%v right=%v lp=%v", d.Button(netconfig.ButtonLeft), d.Button(netconfig.ButtonRight), d.Button(netconfig.ButtonLP))
			}
		})
	}
}

func TestPunchIsReleasedBetweenDecisions(t *testing.T) {
	self, opp := newPlayers(t, 100, 200)
	d := newDevice(t, nil)
	d.Bind(self, opp)

	d.Think(0)
	if !d.Button(netconfig.ButtonLP) {
		t.Fatal("first decision should punch")
	}
	d.Think(0.01)
	if !d.Button(netconfig.ButtonLP) {
		t.Error("decision changed before the reaction delay")
	}
	d.Think(config.Bot.Difficulties[config.BotDifficultyNormal].ReactionDelay)
	if d.Button(netconfig.ButtonLP) {
		t.Error("punch should be released so the next press is a new edge")
	}
	if !d.ReleasedSinceLastQuery(netconfig.ButtonLP) {
		t.Error("release not reported")
	}
	if d.ReleasedSinceLastQuery(netconfig.ButtonLP) {
		t.Error("release reported twice")
	}
}

func TestScriptDrivesPlayer(t *testing.T) {
	self, opp := newPlayers(t, 40, 500)
	d := newDevice(t, nil)
	d.Bind(self, opp)
	self.SetDevice(d)

	for i := 0; i < 30; i++ {
		if err := d.Think(1.0 / 60); err != nil {
			t.Fatal(err)
		}
		self.Update(1.0 / 60)
	}
	if self.X() <= 40 || self.State() != netconfig.WalkingForward {
		t.Errorf("AI player at %d in %v, want walking toward opponent", self.X(), self.State())
	}
}

func TestCustomScript(t *testing.T) {
	src := []byte(`
move := 0
up := true
down := false
lp := false
`)
	self, opp := newPlayers(t, 40, 500)
	d := newDevice(t, src)
	d.Bind(self, opp)
	d.Think(0)
	if !d.Button(netconfig.ButtonUp) || d.Button(netconfig.ButtonRight) {
		t.Error("custom script outputs ignored")
	}
}

func TestScriptErrors(t *testing.T) {
	if _, err := NewScriptDevice([]byte(`move := `), config.BotDifficultyNormal); err == nil {
		t.Error("expected compile error")
	}

	d := newDevice(t, []byte(`
move := 0
up := false
down := false
lp := false
x := 1 / (distance - distance)
`))
	self, opp := newPlayers(t, 40, 500)
	d.Bind(self, opp)
	if err := d.Think(0); err == nil {
		t.Error("expected runtime error")
	}
}

func TestUnboundDeviceIsIdle(t *testing.T) {
	d := newDevice(t, nil)
	if err := d.Think(1); err != nil {
		t.Fatal(err)
	}
	for b := netconfig.Button(0); b < netconfig.NumButtons; b++ {
		if d.Button(b) {
			t.Errorf("%v pressed with no players bound", b)
		}
	}
}
