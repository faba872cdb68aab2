// Package fsm implements a small finite state machine with an explicit
// transition table. Requested transitions that have no registered edge are
// ignored rather than treated as errors.
package fsm

// State is a node in the machine with its outgoing edges.
type State[S comparable] struct {
	ID    S
	edges map[S]struct{}
}

// AddTransition registers an edge from this state to target.
func (st *State[S]) AddTransition(target S) *State[S] {
	st.edges[target] = struct{}{}
	return st
}

// CanTransition reports whether an edge to target exists.
func (st *State[S]) CanTransition(target S) bool {
	_, ok := st.edges[target]
	return ok
}

// Machine holds the state graph and the current state. Only the current
// state is kept; there is no history.
type Machine[S comparable] struct {
	states  map[S]*State[S]
	current S
}

// New creates a machine whose current state is initial. The initial state
// is registered with no edges.
func New[S comparable](initial S) *Machine[S] {
	m := &Machine[S]{
		states:  make(map[S]*State[S]),
		current: initial,
	}
	m.AddState(initial)
	return m
}

// AddState registers id (if not already present) and returns its node so
// edges can be chained onto it.
func (m *Machine[S]) AddState(id S) *State[S] {
	if st, ok := m.states[id]; ok {
		return st
	}
	st := &State[S]{ID: id, edges: make(map[S]struct{})}
	m.states[id] = st
	return st
}

// Current returns the current state.
func (m *Machine[S]) Current() S {
	return m.current
}

// AttemptTransition moves to target when the current state has an edge to
// it and returns the resulting current state.
func (m *Machine[S]) AttemptTransition(target S) S {
	if st, ok := m.states[m.current]; ok && st.CanTransition(target) {
		m.current = target
	}
	return m.current
}

// ForceState sets the current state without consulting the edge table.
func (m *Machine[S]) ForceState(id S) {
	m.current = id
}

// Edges returns the registered targets of id.
func (m *Machine[S]) Edges(id S) []S {
	st, ok := m.states[id]
	if !ok {
		return nil
	}
	out := make([]S, 0, len(st.edges))
	for target := range st.edges {
		out = append(out, target)
	}
	return out
}
