package engine

import (
	"testing"
	"time"

	"skycheckers/board"
	"skycheckers/codec"
	"skycheckers/simulation"
)

func newTestEngine(isServer bool) *Engine {
	e := New()
	e.World = simulation.NewWorld(isServer)
	e.World.ResetGame(3, 1)
	return e
}

func TestOnLocalInputForwardsToWorld(t *testing.T) {
	e := newTestEngine(true)
	e.World.Conn = nil // the host applies its own local input directly each tick; no transport needed

	e.OnLocalInput(codec.DirUp, true)
	e.World.Advance(time.Now())

	c := e.World.Character(e.World.ControlledID)
	if c == nil {
		t.Fatal("expected a controlled character after ResetGame")
	}
	if c.Direction != codec.DirUp {
		t.Fatalf("expected the local direction to reach the controlled character, got %v", c.Direction)
	}
	if c.Weapon.Idle() {
		t.Fatal("expected the local fire input to start the controlled character's weapon")
	}
}

func TestSetRenderWorldIsCalledDuringAdvance(t *testing.T) {
	e := newTestEngine(true)

	var calls int
	e.SetRenderWorld(func(w *simulation.World) { calls++ })

	tickPeriod := time.Duration(board.TickDT * float64(time.Second))
	e.World.Advance(time.Now())
	e.World.Advance(time.Now().Add(tickPeriod))

	if calls != 2 {
		t.Fatalf("expected render callback once per Advance call, got %d", calls)
	}
}

func TestSetSoundEventWiresThrough(t *testing.T) {
	e := newTestEngine(true)

	var got simulation.SoundKind
	var fired bool
	e.SetSoundEvent(func(kind simulation.SoundKind) {
		got = kind
		fired = true
	})

	if e.World.OnSoundEvent == nil {
		t.Fatal("expected OnSoundEvent to be wired onto the World")
	}
	e.World.OnSoundEvent(simulation.SoundFire)
	if !fired || got != simulation.SoundFire {
		t.Fatalf("expected the sound callback to fire with SoundFire, got fired=%v kind=%v", fired, got)
	}
}

func TestOnLocalQuitIsNoopWithoutConnection(t *testing.T) {
	e := newTestEngine(false)
	e.OnLocalQuit() // must not panic or block when no connection was ever established
}
