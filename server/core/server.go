// Package core is the authoritative match server: client registry, lobby,
// ready queue and the fixed-rate tick that owns the only canonical copy of
// both players.
package core

import (
	"log"
	"path/filepath"
	"time"

	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/leveldata"
	"github.com/automoto/duelcore/shared/messages"
)

// Options configures a Server.
type Options struct {
	Transport  Transport
	Roster     *fighterdata.Roster
	Stage      *leveldata.Stage     // optional
	Watcher    *fighterdata.Watcher // optional; hot-reloads fighter data
	JournalDir string               // empty disables input journals
	TickRate   int
}

// Server runs the lobby and at most one match at a time. All state is
// owned by the tick goroutine.
type Server struct {
	transport  Transport
	registry   *Registry
	roster     *fighterdata.Roster
	stage      *leveldata.Stage
	watcher    *fighterdata.Watcher
	journalDir string

	queue []ClientID // ready clients, FIFO
	game  *game
	loop  *GameLoop

	now func() time.Time
}

// NewServer creates a server. It does not start ticking until Run.
func NewServer(opts Options) *Server {
	s := &Server{
		transport:  opts.Transport,
		registry:   NewRegistry(),
		roster:     opts.Roster,
		stage:      opts.Stage,
		watcher:    opts.Watcher,
		journalDir: opts.JournalDir,
		now:        time.Now,
	}
	s.loop = NewGameLoop(s, opts.TickRate)
	return s
}

// Run ticks until Stop is called, then closes any open journal.
func (s *Server) Run() {
	s.loop.Run()
	if s.game != nil && s.game.journal != nil {
		if err := s.game.journal.Close(); err != nil {
			log.Printf("[journal] %v", err)
		}
	}
}

// Stop ends the tick loop and waits for Run to finish ticking.
func (s *Server) Stop() {
	s.loop.Stop()
}

// Tick is one server step: drain the inbound queue, pick up reloaded
// fighter data, advance the match and emit its traffic, then start the
// next match if two clients are waiting.
func (s *Server) Tick(dt float64) {
	s.drainEvents()
	s.reloadFighters()
	if s.game != nil {
		s.stepGame(dt)
	}
	s.tryStartMatch()
}

func (s *Server) drainEvents() {
	events := s.transport.Events()
	for {
		select {
		case ev := <-events:
			s.handleEvent(ev)
		default:
			return
		}
	}
}

func (s *Server) handleEvent(ev Event) {
	switch ev.Kind {
	case EventConnected:
		s.registry.Add(ev.Client)
		log.Printf("[server] client %d connected", ev.Client)
	case EventDisconnected, EventConnectionLost:
		s.onLeave(ev.Client, ev.Kind == EventConnectionLost)
	case EventMessage:
		s.handleMessage(ev.Client, ev.Msg)
	}
}

func (s *Server) handleMessage(id ClientID, m messages.Message) {
	if s.registry.Get(id) == nil {
		return
	}
	switch msg := m.(type) {
	case messages.SetUsername:
		s.onSetUsername(id, msg)
	case messages.Ready:
		s.onReady(id, msg)
	case messages.ClientInput:
		s.onClientInput(id, msg)
	case messages.Chat:
		s.onChat(id, msg)
	default:
		log.Printf("[server] client %d sent unexpected %T", id, m)
	}
}

func (s *Server) reloadFighters() {
	if s.watcher == nil || s.roster == nil {
		return
	}
	for _, path := range s.watcher.Drain() {
		if s.roster.Invalidate(filepath.Base(path)) {
			log.Printf("[fighterdata] reloaded %s, used from the next match", filepath.Base(path))
		}
	}
	for {
		select {
		case err := <-s.watcher.Errors:
			log.Printf("[fighterdata] watch: %v", err)
		default:
			return
		}
	}
}

// send delivers m to one client. Failures are the transport's business: a
// connection that cannot take a reliable message is reported as lost.
func (s *Server) send(id ClientID, m messages.Message) {
	if err := s.transport.Send(id, m); err != nil && messages.Reliable(m) {
		log.Printf("[server] send %T to client %d: %v", m, id, err)
	}
}

// broadcast sends m to every named client except skip. Pass 0 to reach
// everyone.
func (s *Server) broadcast(m messages.Message, skip ClientID) {
	for _, c := range s.registry.Named() {
		if c.ID != skip {
			s.send(c.ID, m)
		}
	}
}

// PlayerCount returns the number of connected clients.
func (s *Server) PlayerCount() int {
	return s.registry.Len()
}

// InMatch reports whether a match is running.
func (s *Server) InMatch() bool {
	return s.game != nil
}
