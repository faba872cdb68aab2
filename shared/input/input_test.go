package input

import (
	"reflect"
	"testing"

	"github.com/automoto/duelcore/shared/netconfig"
)

func TestConsumePressNeedsRelease(t *testing.T) {
	in := New()
	in.SetButton(netconfig.ButtonLP, true)

	if !in.ConsumePress(netconfig.ButtonLP) {
		t.Fatalf("first press should be usable")
	}
	if in.ConsumePress(netconfig.ButtonLP) {
		t.Fatalf("held press should not retrigger")
	}

	in.SetButton(netconfig.ButtonLP, false)
	if !in.Reactivated(netconfig.ButtonLP) {
		t.Fatalf("release should re-arm the edge")
	}
	in.SetButton(netconfig.ButtonLP, true)
	if !in.ConsumePress(netconfig.ButtonLP) {
		t.Fatalf("press after release should be usable")
	}
}

func TestSetButtonIgnoresNone(t *testing.T) {
	in := New()
	in.SetButton(netconfig.ButtonNone, true)
	if in.Mask() != 0 {
		t.Fatalf("mask = %b, want 0", in.Mask())
	}
}

func TestPoll(t *testing.T) {
	tests := []struct {
		name    string
		held    []netconfig.Button
		setup   func(l *Latch)
		changes []Change
	}{
		{
			name:    "no change",
			setup:   func(l *Latch) {},
			changes: nil,
		},
		{
			name:    "press",
			setup:   func(l *Latch) { l.Press(netconfig.ButtonLeft) },
			changes: []Change{{netconfig.ButtonLeft, true}},
		},
		{
			name: "release",
			held: []netconfig.Button{netconfig.ButtonDown},
			setup: func(l *Latch) {
				l.Press(netconfig.ButtonDown)
				l.Release(netconfig.ButtonDown)
			},
			changes: []Change{{netconfig.ButtonDown, false}},
		},
		{
			name: "release then press orders release first",
			held: []netconfig.Button{netconfig.ButtonLP},
			setup: func(l *Latch) {
				l.Press(netconfig.ButtonLP)
				l.Release(netconfig.ButtonLP)
				l.Press(netconfig.ButtonLP)
			},
			changes: []Change{{netconfig.ButtonLP, false}, {netconfig.ButtonLP, true}},
		},
		{
			name: "tap between polls",
			setup: func(l *Latch) {
				l.Press(netconfig.ButtonLP)
				l.Release(netconfig.ButtonLP)
			},
			changes: []Change{{netconfig.ButtonLP, true}, {netconfig.ButtonLP, false}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New()
			l := &Latch{}
			for _, b := range tt.held {
				in.SetButton(b, true)
			}
			tt.setup(l)

			got := in.Poll(l)
			if !reflect.DeepEqual(got, tt.changes) {
				t.Fatalf("Poll() = %v, want %v", got, tt.changes)
			}
		})
	}
}

func TestReleaseThenPressLeavesUsableEdge(t *testing.T) {
	in := New()
	in.SetButton(netconfig.ButtonLP, true)
	in.ConsumePress(netconfig.ButtonLP)

	l := &Latch{}
	l.Press(netconfig.ButtonLP)
	l.Release(netconfig.ButtonLP)
	l.Press(netconfig.ButtonLP)
	for _, c := range in.Poll(l) {
		in.SetButton(c.Button, c.Pressed)
	}
	if !in.ConsumePress(netconfig.ButtonLP) {
		t.Fatalf("expected a usable edge after release+press in one tick")
	}
}
