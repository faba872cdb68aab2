// Package protocol encodes messages to and from their binary wire form: a
// one-byte type id followed by big-endian fields. Strings are a uint16
// length and UTF-8 bytes.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/automoto/duelcore/shared/messages"
	"github.com/automoto/duelcore/shared/netconfig"
)

var (
	ErrUnknownMessage = errors.New("protocol: unknown message type")
	ErrShortBuffer    = errors.New("protocol: short buffer")
	ErrStringTooLong  = errors.New("protocol: string too long")
	ErrTrailingBytes  = errors.New("protocol: trailing bytes")
)

// writer appends fields to a buffer.
type writer struct {
	buf []byte
	err error
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }
func (w *writer) i32(v int32)  { w.u32(uint32(v)) }
func (w *writer) i64(v int64)  { w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v)) }
func (w *writer) f64(v float64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *writer) boolean(v bool) {
	if v {
		w.u8(1)
		return
	}
	w.u8(0)
}

func (w *writer) str(s string) {
	if len(s) > math.MaxUint16 {
		w.err = ErrStringTooLong
		return
	}
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) update(u messages.PlayerUpdate) {
	w.u32(u.LastProcessedInput)
	w.i32(u.X)
	w.i32(u.Y)
	w.i32(u.XVel)
	w.u32(u.State)
}

// reader consumes fields from a buffer. The first failure sticks and every
// later read returns a zero value.
type reader struct {
	buf []byte
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buf) < n {
		r.err = ErrShortBuffer
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

func (r *reader) u8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (r *reader) i32() int32 { return int32(r.u32()) }

func (r *reader) u64() uint64 {
	if b := r.take(8); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

func (r *reader) i64() int64    { return int64(r.u64()) }
func (r *reader) f64() float64  { return math.Float64frombits(r.u64()) }
func (r *reader) boolean() bool { return r.u8() != 0 }
func (r *reader) str() string   { return string(r.take(int(r.u16()))) }

func (r *reader) update() messages.PlayerUpdate {
	return messages.PlayerUpdate{
		LastProcessedInput: r.u32(),
		X:                  r.i32(),
		Y:                  r.i32(),
		XVel:               r.i32(),
		State:              r.u32(),
	}
}

// Encode serializes m.
func Encode(m messages.Message) ([]byte, error) {
	w := &writer{buf: make([]byte, 0, 32)}
	w.u8(uint8(m.Type()))

	switch v := m.(type) {
	case messages.SetUsername:
		w.str(v.Username)
	case messages.UsernameInUse, messages.PlayingRed, messages.PlayingBlue:
	case messages.PlayerList:
		if len(v.Usernames) > math.MaxUint16 {
			return nil, fmt.Errorf("encode player list: %d names", len(v.Usernames))
		}
		w.u16(uint16(len(v.Usernames)))
		for _, name := range v.Usernames {
			w.str(name)
		}
	case messages.Ready:
		w.str(v.Username)
		w.u32(v.FighterID)
	case messages.ServerStartingGame:
		w.str(v.RedUsername)
		w.str(v.BlueUsername)
		w.u32(v.RedFighter)
		w.u32(v.BlueFighter)
	case messages.ClientInput:
		w.u32(v.Sequence)
		w.u8(uint8(v.Button))
		w.boolean(v.Pressed)
		w.f64(v.Dt)
	case messages.UpdatePlayers:
		w.u32(v.Sequence)
		w.update(v.Red)
		w.update(v.Blue)
	case messages.UpdateRedPlayer:
		w.u32(v.Sequence)
		w.update(v.Update)
	case messages.UpdateBluePlayer:
		w.u32(v.Sequence)
		w.update(v.Update)
	case messages.LastProcessedInputSequence:
		w.u32(v.Sequence)
	case messages.PanCamera:
		w.i32(v.PanX)
	case messages.RedTakeHit:
		w.u32(v.HP)
		w.u32(v.Stun)
	case messages.BlueTakeHit:
		w.u32(v.HP)
		w.u32(v.Stun)
	case messages.RedTakeHitBlock:
		w.u32(v.Stun)
	case messages.BlueTakeHitBlock:
		w.u32(v.Stun)
	case messages.MatchOver:
		w.str(v.Victor)
	case messages.Chat:
		w.str(v.Text)
	case messages.SystemMessage:
		w.i64(v.Timestamp)
	case messages.ClientDisconnected:
		w.str(v.Username)
	case messages.ClientLostConnection:
		w.str(v.Username)
	default:
		return nil, fmt.Errorf("encode %T: %w", m, ErrUnknownMessage)
	}

	if w.err != nil {
		return nil, fmt.Errorf("encode %T: %w", m, w.err)
	}
	return w.buf, nil
}

// Decode parses one message. The whole buffer must be consumed.
func Decode(data []byte) (messages.Message, error) {
	r := &reader{buf: data}
	t := messages.Type(r.u8())
	if r.err != nil {
		return nil, fmt.Errorf("decode: %w", r.err)
	}

	var m messages.Message
	switch t {
	case messages.TypeSetUsername:
		m = messages.SetUsername{Username: r.str()}
	case messages.TypeUsernameInUse:
		m = messages.UsernameInUse{}
	case messages.TypePlayerList:
		n := int(r.u16())
		names := make([]string, 0, min(n, len(r.buf)/2))
		for i := 0; i < n && r.err == nil; i++ {
			names = append(names, r.str())
		}
		m = messages.PlayerList{Usernames: names}
	case messages.TypeReady:
		m = messages.Ready{Username: r.str(), FighterID: r.u32()}
	case messages.TypeServerStartingGame:
		m = messages.ServerStartingGame{
			RedUsername:  r.str(),
			BlueUsername: r.str(),
			RedFighter:   r.u32(),
			BlueFighter:  r.u32(),
		}
	case messages.TypePlayingRed:
		m = messages.PlayingRed{}
	case messages.TypePlayingBlue:
		m = messages.PlayingBlue{}
	case messages.TypeClientInput:
		m = messages.ClientInput{
			Sequence: r.u32(),
			Button:   netconfig.Button(r.u8()),
			Pressed:  r.boolean(),
			Dt:       r.f64(),
		}
	case messages.TypeUpdatePlayers:
		m = messages.UpdatePlayers{Sequence: r.u32(), Red: r.update(), Blue: r.update()}
	case messages.TypeUpdateRedPlayer:
		m = messages.UpdateRedPlayer{Sequence: r.u32(), Update: r.update()}
	case messages.TypeUpdateBluePlayer:
		m = messages.UpdateBluePlayer{Sequence: r.u32(), Update: r.update()}
	case messages.TypeLastProcessedInputSequence:
		m = messages.LastProcessedInputSequence{Sequence: r.u32()}
	case messages.TypePanCamera:
		m = messages.PanCamera{PanX: r.i32()}
	case messages.TypeRedTakeHit:
		m = messages.RedTakeHit{HP: r.u32(), Stun: r.u32()}
	case messages.TypeBlueTakeHit:
		m = messages.BlueTakeHit{HP: r.u32(), Stun: r.u32()}
	case messages.TypeRedTakeHitBlock:
		m = messages.RedTakeHitBlock{Stun: r.u32()}
	case messages.TypeBlueTakeHitBlock:
		m = messages.BlueTakeHitBlock{Stun: r.u32()}
	case messages.TypeMatchOver:
		m = messages.MatchOver{Victor: r.str()}
	case messages.TypeChat:
		m = messages.Chat{Text: r.str()}
	case messages.TypeSystemMessage:
		m = messages.SystemMessage{Timestamp: r.i64()}
	case messages.TypeClientDisconnected:
		m = messages.ClientDisconnected{Username: r.str()}
	case messages.TypeClientLostConnection:
		m = messages.ClientLostConnection{Username: r.str()}
	default:
		return nil, fmt.Errorf("decode type %d: %w", t, ErrUnknownMessage)
	}

	if r.err != nil {
		return nil, fmt.Errorf("decode type %d: %w", t, r.err)
	}
	if len(r.buf) != 0 {
		return nil, fmt.Errorf("decode type %d: %w", t, ErrTrailingBytes)
	}
	return m, nil
}
