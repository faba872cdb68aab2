package fighterdata

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

// RosterEntry maps a wire fighter id to its descriptor.
type RosterEntry struct {
	ID   uint32 `yaml:"id"`
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

type rosterSpec struct {
	Fighters []RosterEntry `yaml:"fighters"`
}

// Roster is the set of selectable fighters. Parsed fighters are cached until
// invalidated.
type Roster struct {
	loader  Loader
	dir     string
	entries map[uint32]RosterEntry
	cache   map[uint32]*Fighter
}

// LoadRoster reads the roster file name from fsys. Descriptor paths in the
// roster are relative to the roster's directory.
func LoadRoster(fsys fs.FS, name string) (*Roster, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("fighterdata: load roster %s: %w", name, err)
	}
	var spec rosterSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("fighterdata: unmarshal roster %s: %w", name, err)
	}
	if len(spec.Fighters) == 0 {
		return nil, fmt.Errorf("fighterdata: roster %s is empty", name)
	}

	r := &Roster{
		loader:  FSLoader{FS: fsys},
		dir:     path.Dir(name),
		entries: make(map[uint32]RosterEntry, len(spec.Fighters)),
		cache:   make(map[uint32]*Fighter),
	}
	for _, e := range spec.Fighters {
		if _, dup := r.entries[e.ID]; dup {
			return nil, fmt.Errorf("fighterdata: roster %s: duplicate id %d", name, e.ID)
		}
		r.entries[e.ID] = e
	}
	return r, nil
}

// Has reports whether id is selectable.
func (r *Roster) Has(id uint32) bool {
	_, ok := r.entries[id]
	return ok
}

// IDs returns the selectable ids in ascending order.
func (r *Roster) IDs() []uint32 {
	ids := make([]uint32, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Entry returns the roster entry for id.
func (r *Roster) Entry(id uint32) (RosterEntry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Fighter returns the parsed fighter for id, loading it on first use.
func (r *Roster) Fighter(id uint32) (*Fighter, error) {
	if f, ok := r.cache[id]; ok {
		return f, nil
	}
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("fighterdata: unknown fighter id %d", id)
	}
	f, err := r.loader.LoadFighter(path.Join(r.dir, e.File))
	if err != nil {
		return nil, err
	}
	r.cache[id] = f
	return f, nil
}

// Invalidate drops cached fighters whose descriptor has the base name of
// file. It reports whether anything was dropped.
func (r *Roster) Invalidate(file string) bool {
	base := path.Base(file)
	dropped := false
	for id, e := range r.entries {
		if path.Base(e.File) != base {
			continue
		}
		if _, ok := r.cache[id]; ok {
			delete(r.cache, id)
			dropped = true
		}
	}
	return dropped
}

// Reset drops every cached fighter.
func (r *Roster) Reset() {
	clear(r.cache)
}
