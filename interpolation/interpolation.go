// Package interpolation renders smooth per-frame character positions
// from the authoritative, discrete Movement snapshots the simulation
// package buffers into each character's movement ring, and dispatches
// scheduled triggers (fire flashes, tile colorings, drops, recoveries)
// at the delayed instant they were scheduled for.
package interpolation

import (
	"skycheckers/board"
	"skycheckers/codec"
	"skycheckers/simulation"
)

// warpThreshold is how far a character's render position may drift from
// its last-known authoritative snapshot before the discrepancy catch-up
// gives up smoothing and warps straight to it.
const warpThreshold = 3.0

// charState is per-character scratch state the render algorithm needs
// beyond what's tracked on board.Character.
type charState struct {
	confirmCount int
	lastDir      codec.Direction
}

// Interpolator owns the client-side render-time smoothing for one
// World. It has no concurrency of its own: Step is called once per
// rendered frame by whatever collaborator owns the render loop.
type Interpolator struct {
	world  *simulation.World
	states [board.NumPlayers]charState

	// OnTrigger receives every scheduled trigger at the frame it becomes
	// due for playback; nil discards them silently.
	OnTrigger func(t simulation.Trigger)
}

// New returns an interpolator over a client-mode World.
func New(w *simulation.World) *Interpolator {
	return &Interpolator{world: w}
}

// Step renders one frame: now is the current wall-clock instant in unix
// millis, dt the seconds elapsed since the previous Step call.
func (ip *Interpolator) Step(now int64, dt float64) {
	halfPing := ip.world.HalfPingMs()
	renderTime := now - int64(3*halfPing)

	for i, c := range ip.world.Players {
		ip.stepCharacter(c, &ip.states[i], renderTime, halfPing, dt)
	}

	ip.dispatchTriggers(renderTime)
}

func (ip *Interpolator) stepCharacter(c *board.Character, st *charState, renderTime int64, halfPing, dt float64) {
	prev, next, ok := c.MovementRing.FindBracket(renderTime)
	if !ok {
		return
	}

	dir := prev.Direction
	pointing := prev.PointingDirection

	if c.PredictedDirectionDeadlineMs != 0 {
		validAt := renderTime + int64(3*halfPing)
		if validAt < c.PredictedDirectionDeadlineMs {
			dir = c.PredictedDirection
			pointing = c.PredictedDirection
		}
		if c.PredictedDirectionDeadlineMs < next.TickMs {
			c.PredictedDirection = codec.DirNone
			c.PredictedDirectionDeadlineMs = 0
		}
	}

	wasDead := c.Z != board.CharacterAliveZ
	switch {
	case prev.Dead != wasDead:
		c.X, c.Y = prev.X, prev.Y
		c.XDiscrepancy, c.YDiscrepancy = 0, 0
		if prev.Dead {
			c.Z = board.CharacterAliveZ - board.FallStep
		} else {
			c.Z = board.CharacterAliveZ
		}

	default:
		if dir == st.lastDir {
			st.confirmCount++
		} else {
			st.confirmCount = 1
			st.lastDir = dir
		}
		if st.confirmCount%2 == 0 {
			c.XDiscrepancy = prev.X - c.X
			c.YDiscrepancy = prev.Y - c.Y
		}
		if fabs32(c.XDiscrepancy) >= warpThreshold || fabs32(c.YDiscrepancy) >= warpThreshold {
			c.X, c.Y = prev.X, prev.Y
			c.XDiscrepancy, c.YDiscrepancy = 0, 0
		}
	}

	var step float32
	if dir == codec.DirNone {
		step = float32(dt) * board.CharacterSpeed / 64
	} else {
		step = float32(dt) * board.CharacterSpeed / 16
	}
	catchUp(&c.X, &c.XDiscrepancy, step)
	catchUp(&c.Y, &c.YDiscrepancy, step)

	c.Direction = dir
	c.PointingDirection = pointing
}

// catchUp moves cur toward zero discrepancy by at most step units,
// paying down the stored error as it goes.
func catchUp(cur, discrepancy *float32, step float32) {
	if *discrepancy == 0 {
		return
	}
	mag := fabs32(*discrepancy)
	applied := step
	if applied > mag {
		applied = mag
	}
	if *discrepancy < 0 {
		applied = -applied
	}
	*cur += applied
	*discrepancy -= applied
}

func fabs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// dispatchTriggers plays every scheduled trigger whose ready_tick has
// arrived, in World.PendingTriggers slice order, then marks each
// consumed so its slot can be reused.
func (ip *Interpolator) dispatchTriggers(renderTime int64) {
	for i := range ip.world.PendingTriggers {
		t := &ip.world.PendingTriggers[i]
		if t.ReadyTick == 0 || renderTime < t.ReadyTick {
			continue
		}
		if ip.OnTrigger != nil {
			ip.OnTrigger(*t)
		}
		t.ReadyTick = 0
	}
}
