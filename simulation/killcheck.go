package simulation

import (
	"skycheckers/board"
	"skycheckers/codec"
)

// killCharacter is server-only: a live character standing over a fallen
// tile loses a life, the tile's owner is credited with a kill, and the
// character starts falling off the board. A character with lives
// remaining respawns after CharacterRespawnSeconds; one that just lost
// its last life triggers the outer-ring elimination sweep or ends the
// match.
func (w *World) killCharacter(c *board.Character) {
	if !w.IsServer || !c.Alive() {
		return
	}
	idx := board.TileIndexAt(c.X, c.Y)
	if idx < 0 {
		return
	}
	tile := &w.Tiles.Tiles[idx]
	if tile.Z >= board.TileAliveZ {
		return
	}

	c.Lives--
	c.Active = false
	c.Z -= board.FallStep

	if w.Conn != nil {
		w.Conn.Outbound.Push(codec.Message{
			Kind: codec.KindPlayerKilled, PeerIndex: -1,
			CharacterID: uint8(c.ID), Lives: uint8(c.Lives),
		})
	}
	if w.OnSoundEvent != nil {
		w.OnSoundEvent(SoundDeath)
	}

	if killer := w.Character(colorOwner(tile.ColoredID)); killer != nil {
		killer.Kills++
		if w.Conn != nil {
			w.Conn.Outbound.Push(codec.Message{
				Kind: codec.KindCharacterKills, PeerIndex: -1,
				CharacterID: uint8(killer.ID), Kills: uint8(killer.Kills),
			})
		}
	}

	if c.Lives == 0 {
		w.decideWinner(c)
	}
}

// colorOwner is colorForCharacter's inverse: which character (if any)
// owns a tile color. ColorGray and ColorNone credit nobody.
func colorOwner(id board.ColoredID) board.FixedCharacterID {
	switch id {
	case board.ColorPB:
		return board.PinkBubbleGum
	case board.ColorRR:
		return board.RedRover
	case board.ColorGT:
		return board.GreenTree
	case board.ColorBL:
		return board.BlueLightning
	default:
		return 0
	}
}

// advanceCharacterFall runs every tick for any character mid-death: it
// keeps falling until CharacterTerminatingZ, then (if it still has
// lives) counts toward a respawn.
func (w *World) advanceCharacterFall(c *board.Character, dt float64) {
	if c.Lives == 0 {
		return
	}
	if !c.Alive() && c.Z > board.CharacterTerminatingZ {
		c.Z -= board.CharacterFallingSpeed * float32(dt)
		c.RecoveryTimer = 0.001 // mark "falling, not yet counting down"
		return
	}
	if c.Z <= board.CharacterTerminatingZ && c.RecoveryTimer > 0 {
		c.RecoveryTimer += float32(dt)
		if c.RecoveryTimer > board.CharacterRespawnSeconds {
			w.respawnCharacter(c)
		}
	}
}

// respawnCharacter returns a character to play at its starting corner.
func (w *World) respawnCharacter(c *board.Character) {
	positions := startingPositions()
	c.X, c.Y = positions[c.ID-1].x, positions[c.ID-1].y
	c.Z = board.CharacterAliveZ
	c.Active = true
	c.RecoveryTimer = 0
}

// decideWinner runs after an elimination: a freshly eliminated player
// either triggers the next outer-ring destruction layer (two or more
// players remain) or hands the last survivor a win (exactly one
// remains).
func (w *World) decideWinner(justDied *board.Character) {
	var alive []*board.Character
	for _, p := range w.Players {
		if p.Lives > 0 {
			alive = append(alive, p)
		}
	}

	switch {
	case len(alive) >= 2:
		w.triggerOuterRingLayer()
	case len(alive) == 1:
		alive[0].Wins++
	}
}
