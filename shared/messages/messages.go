// Package messages defines every application message exchanged between
// client and server. Each wire message is its own type; handlers dispatch
// with a type switch.
package messages

import "github.com/automoto/duelcore/shared/netconfig"

// Type is the one-byte id that prefixes every encoded message.
type Type uint8

const (
	TypeSetUsername Type = iota + 1
	TypeUsernameInUse
	TypePlayerList
	TypeReady
	TypeServerStartingGame
	TypePlayingRed
	TypePlayingBlue
	TypeClientInput
	TypeUpdatePlayers
	TypeUpdateRedPlayer
	TypeUpdateBluePlayer
	TypeLastProcessedInputSequence
	TypePanCamera
	TypeRedTakeHit
	TypeBlueTakeHit
	TypeRedTakeHitBlock
	TypeBlueTakeHitBlock
	TypeMatchOver
	TypeChat
	TypeSystemMessage
	TypeClientDisconnected
	TypeClientLostConnection
)

// Message is implemented by every message type.
type Message interface {
	Type() Type
}

// Lobby

// SetUsername is sent by a client to claim a name, and by the server to
// announce a newly joined client to everyone else.
type SetUsername struct {
	Username string
}

// UsernameInUse rejects a SetUsername.
type UsernameInUse struct{}

// PlayerList is sent to a client once its name is accepted.
type PlayerList struct {
	Usernames []string
}

// Ready opts a client into the next match. Clients leave Username empty;
// the server fills it in when broadcasting.
type Ready struct {
	Username  string
	FighterID uint32
}

type ServerStartingGame struct {
	RedUsername  string
	BlueUsername string
	RedFighter   uint32
	BlueFighter  uint32
}

type PlayingRed struct{}
type PlayingBlue struct{}

// Gameplay

// ClientInput is one button change (or ButtonNone for a time-only step)
// plus the client's elapsed time for it.
type ClientInput struct {
	Sequence uint32
	Button   netconfig.Button
	Pressed  bool
	Dt       float64
}

// PlayerUpdate is the authoritative state of one player.
type PlayerUpdate struct {
	LastProcessedInput uint32
	X, Y               int32
	XVel               int32
	State              uint32
}

// UpdatePlayers carries both players. Sequence orders snapshots so stale
// ones can be dropped.
type UpdatePlayers struct {
	Sequence uint32
	Red      PlayerUpdate
	Blue     PlayerUpdate
}

type UpdateRedPlayer struct {
	Sequence uint32
	Update   PlayerUpdate
}

type UpdateBluePlayer struct {
	Sequence uint32
	Update   PlayerUpdate
}

type LastProcessedInputSequence struct {
	Sequence uint32
}

type PanCamera struct {
	PanX int32
}

type RedTakeHit struct {
	HP, Stun uint32
}

type BlueTakeHit struct {
	HP, Stun uint32
}

type RedTakeHitBlock struct {
	Stun uint32
}

type BlueTakeHitBlock struct {
	Stun uint32
}

type MatchOver struct {
	Victor string
}

// Utility

type Chat struct {
	Text string
}

// SystemMessage carries a server timestamp in Unix milliseconds.
type SystemMessage struct {
	Timestamp int64
}

type ClientDisconnected struct {
	Username string
}

type ClientLostConnection struct {
	Username string
}

func (SetUsername) Type() Type                { return TypeSetUsername }
func (UsernameInUse) Type() Type              { return TypeUsernameInUse }
func (PlayerList) Type() Type                 { return TypePlayerList }
func (Ready) Type() Type                      { return TypeReady }
func (ServerStartingGame) Type() Type         { return TypeServerStartingGame }
func (PlayingRed) Type() Type                 { return TypePlayingRed }
func (PlayingBlue) Type() Type                { return TypePlayingBlue }
func (ClientInput) Type() Type                { return TypeClientInput }
func (UpdatePlayers) Type() Type              { return TypeUpdatePlayers }
func (UpdateRedPlayer) Type() Type            { return TypeUpdateRedPlayer }
func (UpdateBluePlayer) Type() Type           { return TypeUpdateBluePlayer }
func (LastProcessedInputSequence) Type() Type { return TypeLastProcessedInputSequence }
func (PanCamera) Type() Type                  { return TypePanCamera }
func (RedTakeHit) Type() Type                 { return TypeRedTakeHit }
func (BlueTakeHit) Type() Type                { return TypeBlueTakeHit }
func (RedTakeHitBlock) Type() Type            { return TypeRedTakeHitBlock }
func (BlueTakeHitBlock) Type() Type           { return TypeBlueTakeHitBlock }
func (MatchOver) Type() Type                  { return TypeMatchOver }
func (Chat) Type() Type                       { return TypeChat }
func (SystemMessage) Type() Type              { return TypeSystemMessage }
func (ClientDisconnected) Type() Type         { return TypeClientDisconnected }
func (ClientLostConnection) Type() Type       { return TypeClientLostConnection }

// Reliable reports whether m must be delivered. Snapshots are the only
// messages that may be dropped.
func Reliable(m Message) bool {
	switch m.(type) {
	case UpdatePlayers, UpdateRedPlayer, UpdateBluePlayer:
		return false
	}
	return true
}

// TakeHit builds the hit notice for the player in slot c.
func TakeHit(c netconfig.Color, hp, stun int) Message {
	if c == netconfig.Red {
		return RedTakeHit{HP: uint32(hp), Stun: uint32(stun)}
	}
	return BlueTakeHit{HP: uint32(hp), Stun: uint32(stun)}
}

// TakeHitBlock builds the block notice for the player in slot c.
func TakeHitBlock(c netconfig.Color, stun int) Message {
	if c == netconfig.Red {
		return RedTakeHitBlock{Stun: uint32(stun)}
	}
	return BlueTakeHitBlock{Stun: uint32(stun)}
}
