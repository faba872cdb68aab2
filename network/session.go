package network

import (
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/input"
	"github.com/automoto/duelcore/shared/match"
	"github.com/automoto/duelcore/shared/messages"
	"github.com/automoto/duelcore/shared/netconfig"
	"github.com/automoto/duelcore/shared/player"
)

// Sender is the outbound half of a connection.
type Sender interface {
	Send(m messages.Message) error
}

// FighterSource resolves wire fighter ids.
type FighterSource interface {
	Fighter(id uint32) (*fighterdata.Fighter, error)
}

// SessionState is where the client is in the lobby/match flow.
type SessionState int

const (
	SessionNeedName SessionState = iota // no accepted username yet
	SessionNaming                       // SET_USERNAME sent
	SessionLobby
	SessionReady
	SessionSpectating
	SessionPlaying
	SessionOver
)

func (s SessionState) String() string {
	switch s {
	case SessionNeedName:
		return "need-name"
	case SessionNaming:
		return "naming"
	case SessionLobby:
		return "lobby"
	case SessionReady:
		return "ready"
	case SessionSpectating:
		return "spectating"
	case SessionPlaying:
		return "playing"
	case SessionOver:
		return "over"
	}
	return "unknown"
}

// Session mirrors the server's view of the lobby and the current match for
// one client. It is driven from the game loop: Handle every drained
// message, then Update once per frame.
type Session struct {
	out      Sender
	fighters FighterSource
	device   input.Device

	state    SessionState
	username string
	players  []string

	match     *match.Match
	usernames [2]string
	color     netconfig.Color
	predictor *Predictor
	camera    CameraPan

	lastSnapshot uint32
	victor       string
}

// NewSession creates a session. dev supplies the local player's buttons
// once a match starts.
func NewSession(out Sender, fighters FighterSource, dev input.Device) *Session {
	return &Session{out: out, fighters: fighters, device: dev}
}

// SetUsername asks the server for a name.
func (s *Session) SetUsername(name string) error {
	s.username = name
	s.state = SessionNaming
	return s.out.Send(messages.SetUsername{Username: name})
}

// Ready queues for the next match with fighter id.
func (s *Session) Ready(fighter uint32) error {
	if s.state != SessionLobby && s.state != SessionOver {
		return fmt.Errorf("network: cannot ready while %s", s.state)
	}
	s.state = SessionReady
	return s.out.Send(messages.Ready{FighterID: fighter})
}

// Chat sends a lobby message.
func (s *Session) Chat(text string) error {
	return s.out.Send(messages.Chat{Text: text})
}

// Handle applies one server message.
func (s *Session) Handle(m messages.Message) {
	switch msg := m.(type) {
	case messages.UsernameInUse:
		log.Printf("[client] username %q is taken", s.username)
		s.state = SessionNeedName
	case messages.PlayerList:
		s.players = slices.Clone(msg.Usernames)
		s.state = SessionLobby
	case messages.SetUsername:
		s.players = append(s.players, msg.Username)
		log.Printf("[lobby] %s joined", msg.Username)
	case messages.Ready:
		log.Printf("[lobby] %s is ready (fighter %d)", msg.Username, msg.FighterID)
	case messages.ServerStartingGame:
		s.startMatch(msg)
	case messages.PlayingRed:
		s.takeSeat(netconfig.Red)
	case messages.PlayingBlue:
		s.takeSeat(netconfig.Blue)
	case messages.UpdatePlayers:
		if s.freshSnapshot(msg.Sequence) {
			s.applyUpdate(netconfig.Red, msg.Red)
			s.applyUpdate(netconfig.Blue, msg.Blue)
		}
	case messages.UpdateRedPlayer:
		if s.freshSnapshot(msg.Sequence) {
			s.applyUpdate(netconfig.Red, msg.Update)
		}
	case messages.UpdateBluePlayer:
		if s.freshSnapshot(msg.Sequence) {
			s.applyUpdate(netconfig.Blue, msg.Update)
		}
	case messages.LastProcessedInputSequence:
		if s.predictor != nil {
			s.predictor.Ack(msg.Sequence)
		}
	case messages.PanCamera:
		if s.match != nil {
			s.camera.Target(msg.PanX)
		}
	case messages.RedTakeHit:
		s.applyHit(netconfig.Red, int(msg.HP), int(msg.Stun))
	case messages.BlueTakeHit:
		s.applyHit(netconfig.Blue, int(msg.HP), int(msg.Stun))
	case messages.RedTakeHitBlock:
		s.applyBlock(netconfig.Red, int(msg.Stun))
	case messages.BlueTakeHitBlock:
		s.applyBlock(netconfig.Blue, int(msg.Stun))
	case messages.MatchOver:
		log.Printf("[match] over, %s wins", msg.Victor)
		s.victor = msg.Victor
		s.state = SessionOver
		s.predictor = nil
	case messages.Chat:
		log.Printf("[chat] %s", msg.Text)
	case messages.SystemMessage:
		log.Printf("[client] server time %s", time.UnixMilli(msg.Timestamp).UTC().Format(time.RFC3339))
	case messages.ClientDisconnected:
		s.dropPlayer(msg.Username)
		log.Printf("[lobby] %s left", msg.Username)
	case messages.ClientLostConnection:
		s.dropPlayer(msg.Username)
		log.Printf("[lobby] %s lost connection", msg.Username)
	}
}

func (s *Session) startMatch(msg messages.ServerStartingGame) {
	red, err := s.fighters.Fighter(msg.RedFighter)
	if err != nil {
		log.Printf("[match] %v", err)
		return
	}
	blue, err := s.fighters.Fighter(msg.BlueFighter)
	if err != nil {
		log.Printf("[match] %v", err)
		return
	}
	m, err := match.New(match.Options{
		Red:      red,
		Blue:     blue,
		RedMode:  netconfig.ModeNet,
		BlueMode: netconfig.ModeNet,
		Viewport: player.Viewport{Width: config.Match.ViewportWidth, Height: config.Match.ViewportHeight},
	})
	if err != nil {
		log.Printf("[match] %v", err)
		return
	}
	log.Printf("[match] %s vs %s", msg.RedUsername, msg.BlueUsername)

	s.match = m
	s.usernames = [2]string{msg.RedUsername, msg.BlueUsername}
	s.predictor = nil
	s.lastSnapshot = 0
	s.victor = ""
	s.camera.Reset(0)
	s.state = SessionSpectating
}

func (s *Session) takeSeat(c netconfig.Color) {
	if s.match == nil {
		return
	}
	s.color = c
	s.predictor = NewPredictor(s.match.Player(c))
	s.state = SessionPlaying
}

// freshSnapshot drops snapshots that arrive out of order or twice.
func (s *Session) freshSnapshot(seq uint32) bool {
	if s.match == nil || seq <= s.lastSnapshot {
		return false
	}
	s.lastSnapshot = seq
	return true
}

func (s *Session) applyUpdate(c netconfig.Color, u messages.PlayerUpdate) {
	if s.predictor != nil && c == s.color {
		s.predictor.Reconcile(u)
		return
	}
	p := s.match.Player(c)
	p.ApplySnapshot(int(u.X), int(u.Y), int(u.XVel), netconfig.StateID(u.State))
	p.RefreshHitboxes()
}

func (s *Session) applyHit(c netconfig.Color, hp, stun int) {
	if s.match != nil {
		s.match.Player(c).ApplyHit(hp, stun)
	}
}

func (s *Session) applyBlock(c netconfig.Color, stun int) {
	if s.match != nil {
		s.match.Player(c).ApplyBlock(stun)
	}
}

func (s *Session) dropPlayer(name string) {
	s.players = slices.DeleteFunc(s.players, func(p string) bool { return p == name })
}

// Update runs one client frame: sample and predict local input, send it,
// animate the mirror and ease the camera.
func (s *Session) Update(dt float64) error {
	if s.match == nil || s.state == SessionOver {
		return nil
	}
	if err := s.sendInputs(dt); err != nil {
		return err
	}
	s.match.Tick(dt)
	s.match.Stage.SetPan(s.camera.Update(dt))
	return nil
}

// sendInputs predicts and sends this frame's button changes. A frame with
// no change still sends a heartbeat so the server advances the jump arc;
// when several buttons change only the last input carries the frame time.
func (s *Session) sendInputs(dt float64) error {
	if s.predictor == nil || s.device == nil {
		return nil
	}
	local := s.match.Player(s.color)
	changes := local.Input().Poll(s.device)
	if len(changes) == 0 {
		changes = []input.Change{{Button: netconfig.ButtonNone}}
	}
	for i, c := range changes {
		step := 0.0
		if i == len(changes)-1 {
			step = dt
		}
		msg := s.predictor.Apply(c.Button, c.Pressed, step)
		if err := s.out.Send(msg); err != nil {
			return fmt.Errorf("send input: %w", err)
		}
	}
	return nil
}

func (s *Session) State() SessionState    { return s.state }
func (s *Session) Username() string       { return s.username }
func (s *Session) Players() []string      { return s.players }
func (s *Session) Match() *match.Match    { return s.match }
func (s *Session) Color() netconfig.Color { return s.color }
func (s *Session) Predictor() *Predictor  { return s.predictor }
func (s *Session) Victor() string         { return s.victor }
func (s *Session) Usernames() [2]string   { return s.usernames }
func (s *Session) LastSnapshot() uint32   { return s.lastSnapshot }
