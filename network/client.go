// Package network is the client side of a duel: the websocket connection,
// the lobby/match session and local prediction.
package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/coder/websocket"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/shared/messages"
	"github.com/automoto/duelcore/shared/protocol"
)

var ErrNotConnected = errors.New("network: not connected")

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateLost
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateLost:
		return "lost"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Conn is a websocket connection to the server. Inbound messages are
// decoded on a background goroutine into a bounded queue that the game
// loop drains once per frame.
type Conn struct {
	mu sync.RWMutex

	state     ClientState
	lastError error
	conn      *websocket.Conn
	cancel    context.CancelFunc

	inbound chan messages.Message
}

func NewConn() *Conn {
	return &Conn{
		state:   StateDisconnected,
		inbound: make(chan messages.Message, config.Client.InboundQueue),
	}
}

// Connect dials address ("host:port" or a ws:// URL) and starts reading.
func (c *Conn) Connect(ctx context.Context, address string) error {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	url := address
	if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
		url = "ws://" + address
	}

	dctx, cancel := context.WithTimeout(ctx, config.Client.DialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dctx, url, nil)
	if err != nil {
		err = fmt.Errorf("connection failed: %w", err)
		c.setError(err)
		return err
	}
	log.Printf("[client] connected to %s", url)

	rctx, rcancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.conn = conn
	c.cancel = rcancel
	c.state = StateConnected
	c.mu.Unlock()

	go c.readLoop(rctx, conn)
	return nil
}

func (c *Conn) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			c.mu.Lock()
			if c.state == StateConnected {
				if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
					c.state = StateLost
					c.lastError = err
					log.Printf("[client] connection lost: %v", err)
				} else {
					c.state = StateDisconnected
					log.Println("[client] disconnected")
				}
			}
			c.conn = nil
			c.mu.Unlock()
			return
		}

		m, err := protocol.Decode(data)
		if err != nil {
			log.Printf("[client] %v", err)
			continue
		}
		select {
		case c.inbound <- m:
		default:
			log.Printf("[client] inbound queue full, dropping %T", m)
		}
	}
}

// Drain returns every message received since the last call. Non-blocking.
func (c *Conn) Drain() []messages.Message {
	return drainChan(c.inbound)
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

// Send encodes and writes m.
func (c *Conn) Send(m messages.Message) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := protocol.Encode(m)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Conn) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	cancel := c.cancel
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
	if cancel != nil {
		cancel()
	}
}

func (c *Conn) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Conn) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Conn) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}
