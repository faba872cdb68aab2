package core

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// ticker is what the loop drives.
type ticker interface {
	Tick(dt float64)
}

// GameLoop calls Tick at a fixed rate with a fixed dt.
type GameLoop struct {
	target   ticker
	tickRate int
	stopChan chan struct{}
	done     chan struct{}

	started  atomic.Bool
	stopOnce sync.Once
}

func NewGameLoop(target ticker, tickRate int) *GameLoop {
	if tickRate <= 0 {
		tickRate = 1
	}
	return &GameLoop{
		target:   target,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run blocks until Stop. A loop runs at most once; later calls return
// immediately, as does a Run after Stop.
func (g *GameLoop) Run() {
	if !g.started.CompareAndSwap(false, true) {
		return
	}
	defer close(g.done)

	select {
	case <-g.stopChan:
		return
	default:
	}

	interval := time.Second / time.Duration(g.tickRate)
	dt := interval.Seconds()
	t := time.NewTicker(interval)
	defer t.Stop()

	log.Printf("[server] game loop started at %d ticks/second", g.tickRate)

	for {
		select {
		case <-g.stopChan:
			log.Println("[server] game loop stopped")
			return
		case <-t.C:
			g.target.Tick(dt)
		}
	}
}

// Stop ends Run and, if it started, waits for the current tick to finish.
// It is safe to call more than once.
func (g *GameLoop) Stop() {
	g.stopOnce.Do(func() { close(g.stopChan) })
	if g.started.Load() {
		<-g.done
	}
}
