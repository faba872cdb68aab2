package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/automoto/duelcore/config"
	"github.com/automoto/duelcore/shared/messages"
	"github.com/automoto/duelcore/shared/protocol"
)

// maxFrame bounds inbound websocket frames. The largest client message is
// a short string.
const maxFrame = 4096

// WsTransport serves clients over binary websocket frames.
type WsTransport struct {
	events chan Event

	mu     sync.RWMutex
	conns  map[ClientID]*wsConn
	nextID atomic.Uint64

	server *http.Server
}

type wsConn struct {
	id     ClientID
	conn   *websocket.Conn
	out    chan []byte
	cancel context.CancelFunc
	lost   atomic.Bool
	once   sync.Once
}

// NewWsTransport creates a transport. Call Handler or Start to accept
// connections.
func NewWsTransport() *WsTransport {
	return &WsTransport{
		events: make(chan Event, config.Server.InboundQueue),
		conns:  make(map[ClientID]*wsConn),
	}
}

// Start listens on port until Stop is called.
func (t *WsTransport) Start(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/", t.Handler())
	t.server = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	log.Printf("[transport] listening on :%d", port)
	if err := t.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Stop closes the listener and every connection.
func (t *WsTransport) Stop(ctx context.Context) error {
	t.mu.RLock()
	for _, c := range t.conns {
		c.cancel()
	}
	t.mu.RUnlock()
	if t.server == nil {
		return nil
	}
	return t.server.Shutdown(ctx)
}

func (t *WsTransport) Events() <-chan Event {
	return t.events
}

// Handler upgrades requests to websocket connections.
func (t *WsTransport) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			log.Printf("[transport] accept: %v", err)
			return
		}
		conn.SetReadLimit(maxFrame)
		t.serve(conn)
	})
}

func (t *WsTransport) serve(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &wsConn{
		id:     ClientID(t.nextID.Add(1)),
		conn:   conn,
		out:    make(chan []byte, config.Server.OutboundQueue),
		cancel: cancel,
	}

	t.mu.Lock()
	t.conns[c.id] = c
	t.mu.Unlock()

	t.events <- Event{Kind: EventConnected, Client: c.id}

	go t.writeLoop(ctx, c)
	go t.pingLoop(ctx, c)
	t.readLoop(ctx, c)
}

func (t *WsTransport) readLoop(ctx context.Context, c *wsConn) {
	defer t.drop(c)
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				c.lost.Store(true)
			}
			return
		}
		if typ != websocket.MessageBinary {
			continue
		}
		m, err := protocol.Decode(data)
		if err != nil {
			log.Printf("[transport] client %d: %v", c.id, err)
			continue
		}
		select {
		case t.events <- Event{Kind: EventMessage, Client: c.id, Msg: m}:
		default:
			log.Printf("[transport] client %d: inbound queue full, dropping %T", c.id, m)
		}
	}
}

func (t *WsTransport) writeLoop(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-c.out:
			if err := c.conn.Write(ctx, websocket.MessageBinary, payload); err != nil {
				c.lost.Store(true)
				c.cancel()
				return
			}
		}
	}
}

// pingLoop detects peers that stopped answering.
func (t *WsTransport) pingLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(config.Server.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, config.Server.PingTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil && ctx.Err() == nil {
				log.Printf("[transport] client %d: ping: %v", c.id, err)
				c.lost.Store(true)
				c.cancel()
				return
			}
		}
	}
}

// drop unregisters c and reports how it went away. It runs once per
// connection.
func (t *WsTransport) drop(c *wsConn) {
	c.once.Do(func() {
		c.cancel()
		_ = c.conn.CloseNow()

		t.mu.Lock()
		delete(t.conns, c.id)
		t.mu.Unlock()

		kind := EventDisconnected
		if c.lost.Load() {
			kind = EventConnectionLost
		}
		t.events <- Event{Kind: kind, Client: c.id}
	})
}

func (t *WsTransport) Send(id ClientID, m messages.Message) error {
	t.mu.RLock()
	c, ok := t.conns[id]
	t.mu.RUnlock()
	if !ok {
		return ErrUnknownClient
	}

	payload, err := protocol.Encode(m)
	if err != nil {
		return err
	}

	select {
	case c.out <- payload:
		return nil
	default:
	}
	if !messages.Reliable(m) {
		return nil
	}
	// A reliable message that cannot be queued would break ordering, so
	// the connection is treated as lost.
	log.Printf("[transport] client %d: outbound queue full", id)
	c.lost.Store(true)
	c.cancel()
	return ErrQueueFull
}

func (t *WsTransport) Kick(id ClientID) {
	t.mu.RLock()
	c, ok := t.conns[id]
	t.mu.RUnlock()
	if !ok {
		return
	}
	c.cancel()
}
