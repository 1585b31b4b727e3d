package simulation

import (
	"skycheckers/board"
	"skycheckers/codec"
)

// aiFireThreshold is how long (in seconds of simulated play) an AI
// character waits before it starts shooting, and aiFireChance is its
// per-opportunity odds of taking a shot once eligible.
const (
	aiFireThreshold = 3.0
	aiFireChance    = 0.35
)

// aiState is the per-character scratch state an AI controller needs
// beyond what's already on board.Character, kept separate so the shared
// Character struct stays free of AI-only fields.
type aiState struct {
	retargetAt float64 // w.gameTime at which a new random direction is due
	timeAlive  float64
}

// updateAI runs one tick of AI control for a single character: it is a
// no-op for human-controlled or dead characters.
func (w *World) updateAI(c *board.Character, dt float64) {
	if c.Role != board.RoleAI || c.Lives == 0 || !c.Active {
		return
	}
	ai := &w.ai[c.ID-1]
	ai.timeAlive += dt

	if c.Direction == codec.DirNone || w.gameTime > ai.retargetAt {
		w.retargetAI(c, ai)
	}

	idx := board.TileIndexAt(c.X, c.Y)
	if idx >= 0 {
		if next, ok := board.NeighborInDirection(idx, c.Direction); !ok || !w.Tiles.Tiles[next].State || w.Tiles.Tiles[next].IsDead {
			w.retargetAI(c, ai)
		}

		if tile := w.Tiles.Tiles[idx]; tile.ColoredID == board.ColorGray {
			w.steerAwayFromEdge(c, idx)
		}
	}

	if w.GameHasStarted && c.Weapon.Idle() && ai.timeAlive >= aiFireThreshold {
		w.considerAIFire(c, idx)
	}
}

// retargetAI picks a new perpendicular direction, mirroring
// setNewDirection's "rotate 90 degrees" rule.
func (w *World) retargetAI(c *board.Character, ai *aiState) {
	if c.Direction == codec.DirUp || c.Direction == codec.DirDown {
		if w.rng.Intn(2) == 0 {
			c.Direction = codec.DirLeft
		} else {
			c.Direction = codec.DirRight
		}
	} else {
		if w.rng.Intn(2) == 0 {
			c.Direction = codec.DirUp
		} else {
			c.Direction = codec.DirDown
		}
	}
	ai.retargetAt = w.gameTime + 1 + w.rng.Float64()
}

// steerAwayFromEdge redirects a character standing on a gray (outer-ring
// doomed) tile toward the board's interior.
func (w *World) steerAwayFromEdge(c *board.Character, idx int) {
	row, col := board.Row(idx), board.Col(idx)
	switch {
	case row <= 1:
		c.Direction = codec.DirUp
	case row >= board.BoardSize-2:
		c.Direction = codec.DirDown
	case col <= 1:
		c.Direction = codec.DirRight
	case col >= board.BoardSize-2:
		c.Direction = codec.DirLeft
	}
}

// considerAIFire turns to face and shoots at another character sharing
// this one's row or column, with randomized odds, as long as the shooter
// is not standing on a doomed gray tile (the target's tile is not checked).
func (w *World) considerAIFire(c *board.Character, tileIdx int) {
	if tileIdx < 0 || w.Tiles.Tiles[tileIdx].ColoredID == board.ColorGray {
		return
	}
	if w.rng.Float64() > aiFireChance {
		return
	}

	row, col := board.Row(tileIdx), board.Col(tileIdx)
	for _, other := range w.Players {
		if other == c || !other.Alive() {
			continue
		}
		otherIdx := board.TileIndexAt(other.X, other.Y)
		if otherIdx < 0 || otherIdx == tileIdx {
			continue
		}
		switch {
		case board.Row(otherIdx) == row:
			if other.X > c.X {
				c.PointingDirection = codec.DirRight
			} else {
				c.PointingDirection = codec.DirLeft
			}
		case board.Col(otherIdx) == col:
			if other.Y > c.Y {
				c.PointingDirection = codec.DirUp
			} else {
				c.PointingDirection = codec.DirDown
			}
		default:
			continue
		}
		w.fireWeapon(c)
		return
	}
}
