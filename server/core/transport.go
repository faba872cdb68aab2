package core

import (
	"errors"

	"github.com/automoto/duelcore/shared/messages"
)

// ErrQueueFull is returned when a connection's outbound queue cannot take a
// reliable message.
var ErrQueueFull = errors.New("core: outbound queue full")

// ErrUnknownClient is returned when sending to a connection that is gone.
var ErrUnknownClient = errors.New("core: unknown client")

// ClientID identifies one transport connection for its lifetime.
type ClientID uint64

// EventKind classifies transport events.
type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventConnectionLost
	EventMessage
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventConnectionLost:
		return "connection-lost"
	case EventMessage:
		return "message"
	}
	return "unknown"
}

// Event is one thing the transport observed. Msg is set for EventMessage.
type Event struct {
	Kind   EventKind
	Client ClientID
	Msg    messages.Message
}

// Transport moves decoded messages between the server tick and its
// connections. Events are queued by the transport and drained by the tick;
// no callback ever runs inside a tick.
type Transport interface {
	// Events is the bounded inbound queue.
	Events() <-chan Event
	// Send queues m for one client. Unreliable messages are dropped when
	// the connection is backed up.
	Send(id ClientID, m messages.Message) error
	// Kick closes a connection. Its disconnect event still arrives.
	Kick(id ClientID)
}
