package fsm

import "testing"

type light int

const (
	red light = iota
	green
	yellow
	off
)

func newLight() *Machine[light] {
	m := New(red)
	m.AddState(red).AddTransition(green)
	m.AddState(green).AddTransition(yellow)
	m.AddState(yellow).AddTransition(red)
	m.AddState(off)
	return m
}

func TestAttemptTransition(t *testing.T) {
	all := []light{red, green, yellow, off}

	for _, from := range all {
		for _, to := range all {
			m := newLight()
			m.ForceState(from)
			allowed := false
			for _, e := range m.Edges(from) {
				if e == to {
					allowed = true
				}
			}

			got := m.AttemptTransition(to)
			want := from
			if allowed {
				want = to
			}
			if got != want || m.Current() != want {
				t.Errorf("%d -> %d: got %d (current %d), want %d", from, to, got, m.Current(), want)
			}
		}
	}
}

func TestForceStateIgnoresEdges(t *testing.T) {
	m := newLight()
	if m.AttemptTransition(off) != red {
		t.Fatalf("red -> off should be rejected")
	}
	m.ForceState(off)
	if m.Current() != off {
		t.Fatalf("Current() = %d, want off", m.Current())
	}
	// off has no edges, so nothing leaves it except another force.
	for _, target := range []light{red, green, yellow} {
		if m.AttemptTransition(target) != off {
			t.Errorf("off -> %d should be rejected", target)
		}
	}
}

func TestUnregisteredCurrentState(t *testing.T) {
	m := New(red)
	m.ForceState(light(42))
	if got := m.AttemptTransition(red); got != light(42) {
		t.Fatalf("got %d, want 42", got)
	}
	if m.Edges(light(42)) != nil {
		t.Fatalf("expected no edges for unregistered state")
	}
}
