package core

import (
	"sort"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// ClientData is the per-connection record kept in the registry world.
type ClientData struct {
	ID       ClientID
	Username string // empty until SET_USERNAME is accepted
	Fighter  uint32
	Ready    bool
}

// Client is the registry component.
var Client = donburi.NewComponentType[ClientData]()

var clientQuery = donburi.NewQuery(filter.Contains(Client))

// Registry tracks connected clients as entities in a donburi world.
type Registry struct {
	world    donburi.World
	entities map[ClientID]donburi.Entity
}

func NewRegistry() *Registry {
	return &Registry{
		world:    donburi.NewWorld(),
		entities: make(map[ClientID]donburi.Entity),
	}
}

// Add registers a new connection.
func (r *Registry) Add(id ClientID) *ClientData {
	entity := r.world.Create(Client)
	entry := r.world.Entry(entity)
	Client.Set(entry, &ClientData{ID: id})
	r.entities[id] = entity
	return Client.Get(entry)
}

// Remove forgets a connection and returns its last record.
func (r *Registry) Remove(id ClientID) (ClientData, bool) {
	entity, ok := r.entities[id]
	if !ok {
		return ClientData{}, false
	}
	delete(r.entities, id)
	if !r.world.Valid(entity) {
		return ClientData{}, false
	}
	data := *Client.Get(r.world.Entry(entity))
	r.world.Remove(entity)
	return data, true
}

// Get returns the record for id, or nil.
func (r *Registry) Get(id ClientID) *ClientData {
	entity, ok := r.entities[id]
	if !ok || !r.world.Valid(entity) {
		return nil
	}
	return Client.Get(r.world.Entry(entity))
}

// ByUsername finds a named client.
func (r *Registry) ByUsername(name string) *ClientData {
	var found *ClientData
	clientQuery.Each(r.world, func(e *donburi.Entry) {
		if c := Client.Get(e); found == nil && c.Username == name {
			found = c
		}
	})
	return found
}

// Named returns every client that has a username, ordered by id.
func (r *Registry) Named() []*ClientData {
	var out []*ClientData
	clientQuery.Each(r.world, func(e *donburi.Entry) {
		if c := Client.Get(e); c.Username != "" {
			out = append(out, c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Usernames lists the named clients.
func (r *Registry) Usernames() []string {
	named := r.Named()
	names := make([]string, len(named))
	for i, c := range named {
		names[i] = c.Username
	}
	return names
}

func (r *Registry) Len() int {
	return len(r.entities)
}
