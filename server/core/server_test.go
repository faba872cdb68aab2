package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/journal"
	"github.com/automoto/duelcore/shared/leveldata"
	"github.com/automoto/duelcore/shared/messages"
	"github.com/automoto/duelcore/shared/netconfig"
)

const testDt = 1.0 / 120

type fakeTransport struct {
	events chan Event
	sent   map[ClientID][]messages.Message
	kicked []ClientID
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		events: make(chan Event, 256),
		sent:   make(map[ClientID][]messages.Message),
	}
}

func (f *fakeTransport) Events() <-chan Event { return f.events }

func (f *fakeTransport) Send(id ClientID, m messages.Message) error {
	f.sent[id] = append(f.sent[id], m)
	return nil
}

func (f *fakeTransport) Kick(id ClientID) { f.kicked = append(f.kicked, id) }

// take returns and clears what id has received.
func (f *fakeTransport) take(id ClientID) []messages.Message {
	out := f.sent[id]
	delete(f.sent, id)
	return out
}

// reliable filters out snapshots.
func reliable(ms []messages.Message) []messages.Message {
	var out []messages.Message
	for _, m := range ms {
		if messages.Reliable(m) {
			out = append(out, m)
		}
	}
	return out
}

type harness struct {
	t  *testing.T
	s  *Server
	tr *fakeTransport
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	roster, err := fighterdata.LoadRoster(os.DirFS("../../data/fighters"), "roster.yaml")
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	tr := newFakeTransport()
	s := NewServer(Options{Transport: tr, Roster: roster, TickRate: 120})
	return &harness{t: t, s: s, tr: tr}
}

func (h *harness) connect(id ClientID) {
	h.tr.events <- Event{Kind: EventConnected, Client: id}
}

func (h *harness) msg(id ClientID, m messages.Message) {
	h.tr.events <- Event{Kind: EventMessage, Client: id, Msg: m}
}

func (h *harness) tick() {
	h.s.Tick(testDt)
}

// join connects and names a client.
func (h *harness) join(id ClientID, name string) {
	h.connect(id)
	h.msg(id, messages.SetUsername{Username: name})
	h.tick()
}

// startMatch joins ken (red) and ryu (blue) and readies both.
func (h *harness) startMatch() {
	h.t.Helper()
	h.join(1, "ken")
	h.join(2, "ryu")
	h.msg(1, messages.Ready{FighterID: 0})
	h.msg(2, messages.Ready{FighterID: 1})
	h.tick()
	if !h.s.InMatch() {
		h.t.Fatalf("match did not start")
	}
	h.tr.take(1)
	h.tr.take(2)
}

func TestSetUsername(t *testing.T) {
	h := newHarness(t)
	h.join(1, "ken")

	got := h.tr.take(1)
	if len(got) != 2 {
		t.Fatalf("ken received %v", got)
	}
	list, ok := got[0].(messages.PlayerList)
	if !ok || len(list.Usernames) != 1 || list.Usernames[0] != "ken" {
		t.Errorf("first message = %#v, want PlayerList[ken]", got[0])
	}
	if _, ok := got[1].(messages.SystemMessage); !ok {
		t.Errorf("second message = %#v, want SystemMessage", got[1])
	}

	h.join(2, "ken")
	if got := h.tr.take(2); len(got) != 1 || got[0] != (messages.UsernameInUse{}) {
		t.Errorf("duplicate name got %v, want UsernameInUse", got)
	}

	h.msg(2, messages.SetUsername{Username: "ryu"})
	h.tick()
	if got := h.tr.take(1); len(got) != 1 || got[0] != (messages.SetUsername{Username: "ryu"}) {
		t.Errorf("ken got %v, want join notice for ryu", got)
	}
	if list := h.tr.take(2)[0].(messages.PlayerList); len(list.Usernames) != 2 {
		t.Errorf("ryu got player list %v", list.Usernames)
	}
}

func TestUsernameRules(t *testing.T) {
	tests := []struct {
		name     string
		username string
		accepted bool
	}{
		{"empty", "", false},
		{"too long", "abcdefghijklmnopqrstuvwxyzabcdefg", false},
		{"ok", "chun", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.join(1, tt.username)
			got := h.tr.take(1)
			_, rejected := got[0].(messages.UsernameInUse)
			if rejected == tt.accepted {
				t.Errorf("got %v, accepted = %v", got, tt.accepted)
			}
		})
	}
}

func TestReadyStartsMatch(t *testing.T) {
	h := newHarness(t)
	h.join(1, "ken")
	h.join(2, "ryu")
	h.join(3, "spectator")
	h.tr.take(1)
	h.tr.take(2)
	h.tr.take(3)

	h.msg(1, messages.Ready{FighterID: 0})
	h.msg(1, messages.Ready{FighterID: 1}) // duplicate, ignored
	h.msg(3, messages.Ready{FighterID: 99})
	h.tick()
	if h.s.InMatch() {
		t.Fatal("match started with one ready player")
	}
	if got := h.tr.take(3); len(got) != 1 || got[0] != (messages.Ready{Username: "ken", FighterID: 0}) {
		t.Errorf("spectator got %v, want one READY for ken", got)
	}

	h.msg(2, messages.Ready{FighterID: 1})
	h.tick()
	if !h.s.InMatch() {
		t.Fatal("match did not start")
	}

	start := messages.ServerStartingGame{RedUsername: "ken", BlueUsername: "ryu", RedFighter: 0, BlueFighter: 1}
	red := reliable(h.tr.take(1))
	if len(red) < 3 || red[1] != start || red[2] != (messages.PlayingRed{}) {
		t.Errorf("red got %v", red)
	}
	blue := reliable(h.tr.take(2))
	if len(blue) < 3 || blue[1] != start || blue[2] != (messages.PlayingBlue{}) {
		t.Errorf("blue got %v", blue)
	}
	spec := reliable(h.tr.take(3))
	if len(spec) != 2 || spec[1] != start {
		t.Errorf("spectator got %v", spec)
	}
}

func TestClientInputValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   messages.ClientInput
		applied bool
	}{
		{"valid", messages.ClientInput{Sequence: 1, Button: netconfig.ButtonRight, Pressed: true, Dt: 0.1}, true},
		{"heartbeat", messages.ClientInput{Sequence: 1, Button: netconfig.ButtonNone, Dt: 0.1}, true},
		{"dt too large", messages.ClientInput{Sequence: 1, Button: netconfig.ButtonRight, Pressed: true, Dt: 1}, false},
		{"negative dt", messages.ClientInput{Sequence: 1, Button: netconfig.ButtonRight, Pressed: true, Dt: -0.1}, false},
		{"bad button", messages.ClientInput{Sequence: 1, Button: 42, Pressed: true, Dt: 0.1}, false},
		{"zero sequence", messages.ClientInput{Sequence: 0, Button: netconfig.ButtonRight, Pressed: true, Dt: 0.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.startMatch()
			h.msg(1, tt.input)
			h.tick()

			snap := lastSnapshot(t, h.tr.take(1))
			want := uint32(0)
			if tt.applied {
				want = tt.input.Sequence
			}
			if snap.Red.LastProcessedInput != want {
				t.Errorf("last processed = %d, want %d", snap.Red.LastProcessedInput, want)
			}
		})
	}
}

func lastSnapshot(t *testing.T, ms []messages.Message) messages.UpdatePlayers {
	t.Helper()
	for i := len(ms) - 1; i >= 0; i-- {
		if u, ok := ms[i].(messages.UpdatePlayers); ok {
			return u
		}
	}
	t.Fatalf("no snapshot in %v", ms)
	return messages.UpdatePlayers{}
}

func TestInputsMovePlayer(t *testing.T) {
	h := newHarness(t)
	h.startMatch()
	start := h.s.game.match.Player(netconfig.Red).X()

	h.msg(1, messages.ClientInput{Sequence: 1, Button: netconfig.ButtonRight, Pressed: true, Dt: 0.05})
	h.msg(1, messages.ClientInput{Sequence: 2, Button: netconfig.ButtonNone, Dt: 0.05})
	h.msg(1, messages.ClientInput{Sequence: 2, Button: netconfig.ButtonNone, Dt: 0.05}) // stale
	h.msg(2, messages.ClientInput{Sequence: 1, Button: netconfig.ButtonLeft, Pressed: true, Dt: 0.05})
	h.tick()

	snap := lastSnapshot(t, h.tr.take(2))
	if snap.Red.LastProcessedInput != 2 || snap.Blue.LastProcessedInput != 1 {
		t.Errorf("last processed = %d/%d, want 2/1", snap.Red.LastProcessedInput, snap.Blue.LastProcessedInput)
	}
	if int(snap.Red.X) <= start {
		t.Errorf("red x = %d, want > %d", snap.Red.X, start)
	}
	if netconfig.StateID(snap.Red.State) != netconfig.WalkingForward {
		t.Errorf("red state = %v, want WALKING_FORWARD", netconfig.StateID(snap.Red.State))
	}
	if int(snap.Red.X) != h.s.game.match.Player(netconfig.Red).X() {
		t.Errorf("snapshot x = %d, player x = %d", snap.Red.X, h.s.game.match.Player(netconfig.Red).X())
	}
}

func TestSpectatorInputIgnored(t *testing.T) {
	h := newHarness(t)
	h.startMatch()
	h.join(3, "spectator")
	h.msg(3, messages.ClientInput{Sequence: 1, Button: netconfig.ButtonRight, Pressed: true, Dt: 0.05})
	h.tick()

	snap := lastSnapshot(t, h.tr.take(1))
	if snap.Red.LastProcessedInput != 0 || snap.Blue.LastProcessedInput != 0 {
		t.Errorf("spectator input was applied: %+v", snap)
	}
}

func TestSnapshotSequence(t *testing.T) {
	h := newHarness(t)
	h.startMatch()
	h.tick()
	h.tick()
	var seqs []uint32
	for _, m := range h.tr.take(1) {
		if u, ok := m.(messages.UpdatePlayers); ok {
			seqs = append(seqs, u.Sequence)
		}
	}
	if len(seqs) != 2 || seqs[1] != seqs[0]+1 {
		t.Errorf("snapshot sequences = %v", seqs)
	}
}

func TestResync(t *testing.T) {
	h := newHarness(t)
	h.startMatch()
	h.msg(2, messages.ClientInput{Sequence: 4, Button: netconfig.ButtonNone, Dt: 0.01})

	ticks := int(config.Server.ResyncInterval.Seconds()/testDt) + 1
	for i := 0; i < ticks; i++ {
		h.tick()
	}

	var acks []uint32
	pans := 0
	for _, m := range reliable(h.tr.take(2)) {
		switch v := m.(type) {
		case messages.LastProcessedInputSequence:
			acks = append(acks, v.Sequence)
		case messages.PanCamera:
			pans++
		}
	}
	if len(acks) != 1 || acks[0] != 4 {
		t.Errorf("acks = %v, want [4]", acks)
	}
	if pans != 1 {
		t.Errorf("pans = %d, want 1", pans)
	}
}

// hitSetup overlaps the fighters and puts red on its active punch frame.
func hitSetup(h *harness) {
	m := h.s.game.match
	red, blue := m.Player(netconfig.Red), m.Player(netconfig.Blue)
	red.SetPosition(100, red.Floor())
	blue.SetPosition(150, blue.Floor())
	m.UpdateSides()
	red.ForceState(netconfig.AttackLP)
	red.SetHitboxesActive(true)
	red.UpdateMove(0)
	red.UpdateMove(0.051)
}

func TestHitEventsAreBroadcast(t *testing.T) {
	h := newHarness(t)
	h.startMatch()
	h.join(3, "spectator")
	for _, id := range []ClientID{1, 2, 3} {
		h.tr.take(id)
	}
	hitSetup(h)
	h.tick()

	for _, id := range []ClientID{1, 2, 3} {
		got := reliable(h.tr.take(id))
		if len(got) != 1 || got[0] != (messages.BlueTakeHit{HP: 1100, Stun: 300}) {
			t.Errorf("client %d got %v, want BlueTakeHit{1100 300}", id, got)
		}
	}

	h.tick()
	if got := reliable(h.tr.take(2)); len(got) != 0 {
		t.Errorf("second tick sent %v, want no repeat hit", got)
	}
}

func TestBlockEvent(t *testing.T) {
	h := newHarness(t)
	h.startMatch()
	hitSetup(h)
	h.s.game.match.Player(netconfig.Blue).ForceState(netconfig.WalkingBack)
	h.tick()

	got := reliable(h.tr.take(1))
	if len(got) != 1 || got[0] != (messages.BlueTakeHitBlock{Stun: 150}) {
		t.Errorf("got %v, want BlueTakeHitBlock{150}", got)
	}
}

func TestKnockoutEndsMatch(t *testing.T) {
	h := newHarness(t)
	h.startMatch()
	hitSetup(h)
	h.s.game.match.Player(netconfig.Blue).SetHP(60)
	h.tick()

	got := reliable(h.tr.take(2))
	if len(got) != 2 || got[0] != (messages.BlueTakeHit{HP: 0, Stun: 300}) || got[1] != (messages.MatchOver{Victor: "ken"}) {
		t.Fatalf("blue got %v", got)
	}
	if h.s.InMatch() {
		t.Error("match still running after knockout")
	}

	// Both can queue again.
	h.msg(1, messages.Ready{FighterID: 1})
	h.msg(2, messages.Ready{FighterID: 0})
	h.tick()
	if !h.s.InMatch() {
		t.Error("rematch did not start")
	}
}

func TestConnectionLostDuringMatch(t *testing.T) {
	h := newHarness(t)
	h.startMatch()
	h.join(3, "spectator")
	h.msg(3, messages.Ready{FighterID: 0})
	h.tick()
	h.tr.take(2)
	h.tr.take(3)

	h.tr.events <- Event{Kind: EventConnectionLost, Client: 1}
	h.tick()

	got := reliable(h.tr.take(2))
	want := []messages.Message{
		messages.ClientLostConnection{Username: "ken"},
		messages.MatchOver{Victor: "ryu"},
	}
	if len(got) != len(want) {
		t.Fatalf("blue got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %#v, want %#v", i, got[i], want[i])
		}
	}

	if h.s.InMatch() {
		t.Error("match still running")
	}
	if h.s.registry.Get(1) != nil || h.s.registry.ByUsername("ken") != nil {
		t.Error("red still registered")
	}
	for _, q := range h.s.queue {
		if q == 1 {
			t.Error("red still queued")
		}
	}
}

func TestDisconnectLeavesQueue(t *testing.T) {
	h := newHarness(t)
	h.join(1, "ken")
	h.join(2, "ryu")
	h.msg(1, messages.Ready{FighterID: 0})
	h.tick()
	h.tr.take(2)

	h.tr.events <- Event{Kind: EventDisconnected, Client: 1}
	h.tick()

	if got := h.tr.take(2); len(got) != 1 || got[0] != (messages.ClientDisconnected{Username: "ken"}) {
		t.Errorf("ryu got %v", got)
	}
	if len(h.s.queue) != 0 {
		t.Errorf("queue = %v, want empty", h.s.queue)
	}
	if h.s.PlayerCount() != 1 {
		t.Errorf("player count = %d, want 1", h.s.PlayerCount())
	}
}

func TestChatRelay(t *testing.T) {
	h := newHarness(t)
	h.join(1, "ken")
	h.join(2, "ryu")
	h.tr.take(1)
	h.tr.take(2)

	h.msg(1, messages.Chat{Text: "hadouken"})
	h.tick()

	if got := h.tr.take(2); len(got) != 1 || got[0] != (messages.Chat{Text: "ken: hadouken"}) {
		t.Errorf("ryu got %v", got)
	}
	if got := h.tr.take(1); len(got) != 0 {
		t.Errorf("sender got its own chat: %v", got)
	}
}

func TestUnnamedClientIgnored(t *testing.T) {
	h := newHarness(t)
	h.connect(1)
	h.msg(1, messages.Ready{FighterID: 0})
	h.msg(1, messages.Chat{Text: "hi"})
	h.tick()
	if len(h.s.queue) != 0 {
		t.Error("unnamed client was queued")
	}
}

func TestJournalWritten(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	h.s.journalDir = dir
	h.s.stage = &leveldata.Stage{
		Name:        "wide",
		Width:       1600,
		Height:      480,
		SpawnPoints: []leveldata.SpawnPoint{{X: 200, Index: 0}, {X: 380, Index: 1}},
	}
	h.startMatch()
	h.msg(1, messages.ClientInput{Sequence: 1, Button: netconfig.ButtonRight, Pressed: true, Dt: 0.05})
	h.tick()
	h.tr.events <- Event{Kind: EventDisconnected, Client: 2}
	h.tick()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("journal files = %d, want 1", len(entries))
	}

	f, err := os.Open(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	r, err := journal.NewReader(f)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	st := r.Header.Stage
	if st == nil || st.Width != 1600 || len(st.SpawnPoints) != 2 {
		t.Fatalf("journal stage = %+v, want the match stage", st)
	}
}
