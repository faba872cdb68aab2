package core

import (
	"log"
	"slices"

	"github.com/automoto/duelcore/shared/messages"
)

const maxUsername = 32

func (s *Server) onSetUsername(id ClientID, msg messages.SetUsername) {
	c := s.registry.Get(id)
	if c.Username != "" {
		return
	}
	name := msg.Username
	if name == "" || len(name) > maxUsername || s.registry.ByUsername(name) != nil {
		s.send(id, messages.UsernameInUse{})
		return
	}
	c.Username = name
	log.Printf("[lobby] client %d is %q", id, name)

	s.send(id, messages.PlayerList{Usernames: s.registry.Usernames()})
	s.send(id, messages.SystemMessage{Timestamp: s.now().UnixMilli()})
	s.broadcast(messages.SetUsername{Username: name}, id)
}

func (s *Server) onReady(id ClientID, msg messages.Ready) {
	c := s.registry.Get(id)
	if c.Username == "" || c.Ready || s.playing(id) {
		return
	}
	if s.roster == nil || !s.roster.Has(msg.FighterID) {
		log.Printf("[lobby] %s picked unknown fighter %d", c.Username, msg.FighterID)
		return
	}
	c.Ready = true
	c.Fighter = msg.FighterID
	s.queue = append(s.queue, id)
	log.Printf("[lobby] %s ready with fighter %d (%d waiting)", c.Username, msg.FighterID, len(s.queue))

	s.broadcast(messages.Ready{Username: c.Username, FighterID: msg.FighterID}, 0)
}

func (s *Server) onChat(id ClientID, msg messages.Chat) {
	c := s.registry.Get(id)
	if c.Username == "" || msg.Text == "" {
		return
	}
	s.broadcast(messages.Chat{Text: c.Username + ": " + msg.Text}, id)
}

// onLeave removes a client. If it was fighting, the opponent wins.
func (s *Server) onLeave(id ClientID, lost bool) {
	s.queue = slices.DeleteFunc(s.queue, func(q ClientID) bool { return q == id })

	c, ok := s.registry.Remove(id)
	if !ok {
		return
	}
	if lost {
		log.Printf("[server] client %d (%s) lost connection", id, c.Username)
	} else {
		log.Printf("[server] client %d (%s) disconnected", id, c.Username)
	}
	if c.Username == "" {
		return
	}

	var notice messages.Message = messages.ClientDisconnected{Username: c.Username}
	if lost {
		notice = messages.ClientLostConnection{Username: c.Username}
	}
	s.broadcast(notice, id)

	if g := s.game; g != nil {
		if color, ok := g.colorOf(id); ok {
			s.endMatch(color.Other())
		}
	}
}

// playing reports whether id is one of the fighters in the current match.
func (s *Server) playing(id ClientID) bool {
	if s.game == nil {
		return false
	}
	_, ok := s.game.colorOf(id)
	return ok
}

// takeReady pops the first two ready clients.
func (s *Server) takeReady() (red, blue ClientID, ok bool) {
	if len(s.queue) < 2 {
		return 0, 0, false
	}
	red, blue = s.queue[0], s.queue[1]
	s.queue = s.queue[2:]
	return red, blue, true
}

func (s *Server) unready(ids ...ClientID) {
	for _, id := range ids {
		if c := s.registry.Get(id); c != nil {
			c.Ready = false
		}
	}
}
