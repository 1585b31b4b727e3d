package simulation

import (
	"time"

	"skycheckers/board"
)

// tickPeriod is board.TickDT expressed as a time.Duration for the
// wall-clock ticker driving Run.
var tickPeriod = time.Duration(board.TickDT * float64(time.Second))

// Run drives the fixed-tick accumulator loop. It blocks until stop is
// closed; call it in the simulation task's own goroutine (or directly
// from main, since the simulation task is the one task allowed to own
// the render/input collaborator).
func (w *World) Run(stop <-chan struct{}) {
	w.lastTick = time.Now()
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			w.advance(now)
		}
	}
}

// Advance runs zero or more fixed ticks to catch up to now; exported so
// tests (and a collaborator that drives its own loop instead of calling
// Run) can step the world deterministically.
func (w *World) Advance(now time.Time) { w.advance(now) }

func (w *World) advance(now time.Time) {
	dt := now.Sub(w.lastTick).Seconds()
	w.lastTick = now
	w.acc += dt

	if w.acc > board.MaxAcc {
		w.acc = board.MaxAcc
	}
	for w.acc >= board.TickDT {
		w.acc -= board.TickDT
		w.step()
	}

	if w.OnRenderWorld != nil {
		w.OnRenderWorld(w)
	}
}

func (w *World) step() {
	w.gameTime += board.TickDT
	if w.IsServer {
		w.stepServer()
	} else {
		w.stepClient()
	}
}
