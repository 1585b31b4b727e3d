package simulation

import (
	"skycheckers/board"
	"skycheckers/codec"
)

// collisionMargin is how close two characters may get before blocking
// movement: one margin applied to both axes (an axis-aligned square),
// with no per-axis edge nudge.
const collisionMargin = 0.9

// moveCharacter runs one tick of a character's movement: turning to
// face its requested direction, then advancing along it if neither the
// board edge, a fallen/dead tile, nor another character blocks the way.
func (w *World) moveCharacter(c *board.Character, dt float64) {
	if !c.Active {
		return
	}
	if c.Direction != codec.DirNone {
		c.PointingDirection = c.Direction
	}
	if c.Direction == codec.DirNone {
		return
	}

	idx := board.TileIndexAt(c.X, c.Y)
	if idx < 0 {
		return
	}
	next, ok := board.NeighborInDirection(idx, c.Direction)
	if !ok {
		return
	}
	nt := &w.Tiles.Tiles[next]
	if !nt.State || nt.IsDead {
		return
	}
	if !w.characterClear(c, c.Direction) {
		return
	}

	dist := board.CharacterSpeed * float32(dt)
	switch c.Direction {
	case codec.DirRight:
		c.X += dist
	case codec.DirLeft:
		c.X -= dist
	case codec.DirUp:
		c.Y += dist
	case codec.DirDown:
		c.Y -= dist
	}
	if c.X < 0 {
		c.X = 0
	} else if c.X > board.BoardSize-1 {
		c.X = board.BoardSize - 1
	}
	if c.Y < 0 {
		c.Y = 0
	} else if c.Y > board.BoardSize-1 {
		c.Y = board.BoardSize - 1
	}
}

// characterClear reports whether moving one step in dir would bring c
// within collisionMargin of another still-standing character.
func (w *World) characterClear(c *board.Character, dir codec.Direction) bool {
	nx, ny := c.X, c.Y
	switch dir {
	case codec.DirRight:
		nx++
	case codec.DirLeft:
		nx--
	case codec.DirUp:
		ny++
	case codec.DirDown:
		ny--
	}

	for _, other := range w.Players {
		if other == c || !other.Alive() {
			continue
		}
		if fabs32(nx-other.X) < collisionMargin && fabs32(ny-other.Y) < collisionMargin {
			return false
		}
	}
	return true
}

func fabs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
