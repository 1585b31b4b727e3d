package interpolation

import (
	"testing"

	"skycheckers/board"
	"skycheckers/codec"
	"skycheckers/simulation"
)

func pushMovement(c *board.Character, tickMs int64, x, y float32) {
	c.MovementRing.Push(board.CharacterMovement{
		X: x, Y: y, TickMs: tickMs, Direction: codec.DirRight, PointingDirection: codec.DirRight,
	})
}

func TestStepCatchesUpTowardBracket(t *testing.T) {
	w := simulation.NewWorld(false)
	w.ResetGame(3, 1)
	c := w.Character(board.PinkBubbleGum)
	c.X, c.Y = 0, 0

	now := int64(1_000_000)
	pushMovement(c, now-100, 2, 0)
	pushMovement(c, now+100, 4, 0)

	ip := New(w)
	// The discrepancy against prev is measured on every second
	// confirmation of the same direction, so the first Step only confirms.
	ip.Step(now, 0.1)
	ip.Step(now, 0.1)

	if c.X <= 0 {
		t.Fatalf("expected character to move toward the bracketed prev snapshot at x=2, got %v", c.X)
	}
	if c.X > 2 {
		t.Fatalf("catch-up must not overshoot the bracket, got %v", c.X)
	}
}

func TestStepWarpsOnAliveDeadMismatch(t *testing.T) {
	w := simulation.NewWorld(false)
	w.ResetGame(3, 1)
	c := w.Character(board.PinkBubbleGum)
	c.X, c.Y = 0, 0
	c.Z = board.CharacterAliveZ

	now := int64(1_000_000)
	c.MovementRing.Push(board.CharacterMovement{X: 9, Y: 9, Dead: true, TickMs: now - 100})
	c.MovementRing.Push(board.CharacterMovement{X: 9, Y: 9, Dead: true, TickMs: now + 10})

	ip := New(w)
	ip.Step(now, 0.1)

	if c.X != 9 || c.Y != 9 {
		t.Fatalf("expected a hard warp to the dead snapshot's position, got (%v,%v)", c.X, c.Y)
	}
	if c.Z != board.CharacterAliveZ-board.FallStep {
		t.Fatalf("expected z to reflect the dead state, got %v", c.Z)
	}
}

func TestDispatchTriggersFiresOnlyWhenDue(t *testing.T) {
	w := simulation.NewWorld(false)
	w.ResetGame(3, 1)

	var fired []codec.Kind
	ip := New(w)
	ip.OnTrigger = func(tr simulation.Trigger) { fired = append(fired, tr.Kind) }

	now := int64(1_000_000)
	w.PendingTriggers = append(w.PendingTriggers,
		simulation.Trigger{Kind: codec.KindColorTile, ReadyTick: now - 10},
		simulation.Trigger{Kind: codec.KindTileFalling, ReadyTick: now + 1000},
	)

	ip.Step(now, 0.1)

	if len(fired) != 1 || fired[0] != codec.KindColorTile {
		t.Fatalf("expected only the already-due trigger to fire, got %v", fired)
	}
	if w.PendingTriggers[0].ReadyTick != 0 {
		t.Fatal("expected the fired trigger's slot to be marked consumed")
	}
	if w.PendingTriggers[1].ReadyTick == 0 {
		t.Fatal("the not-yet-due trigger must remain pending")
	}
}
