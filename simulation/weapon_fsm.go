package simulation

import (
	"math"

	"skycheckers/board"
	"skycheckers/codec"
)

// colorForCharacter maps a fixed character identity to the tile-owner
// color it paints onto the board when it fires.
func colorForCharacter(id board.FixedCharacterID) board.ColoredID {
	switch id {
	case board.PinkBubbleGum:
		return board.ColorPB
	case board.RedRover:
		return board.ColorRR
	case board.GreenTree:
		return board.ColorGT
	case board.BlueLightning:
		return board.ColorBL
	default:
		return board.ColorNone
	}
}

// halfPingForCharacter returns the lag estimate to compensate a shot
// with: zero for the host's own character and for AI, the connected
// peer's half-ping average otherwise.
func (w *World) halfPingForCharacter(c *board.Character) float64 {
	if c.ID == board.PinkBubbleGum || c.Role == board.RoleAI {
		return 0
	}
	peer := w.peerSlotFor(int(c.ID) - 2)
	if peer == nil {
		return 0
	}
	return peer.HalfPing.Mean()
}

// fireWeapon begins the firing state machine for a character whose
// weapon is idle: it latches lag compensation,
// starts the weapon's beam, disables movement for the duration, and
// colors every tile the beam crosses.
func (w *World) fireWeapon(c *board.Character) {
	comp := w.halfPingForCharacter(c)
	if comp < 0 {
		comp = 0
	} else if comp > 110 {
		comp = 110
	}

	c.Weapon.Fire(c.X, c.Y, board.CharacterAliveZ, c.PointingDirection, float32(comp)/1000)
	c.Active = false

	w.colorTilesAlongBeam(c)

	if w.OnSoundEvent != nil {
		w.OnSoundEvent(SoundFire)
	}
}

// colorTilesAlongBeam paints every still-alive, uncolored tile from the
// character's own tile to the board edge along the weapon's facing
// direction, once, at fire time. Tiles already colored, or already
// fallen, are left untouched.
func (w *World) colorTilesAlongBeam(c *board.Character) {
	origin := board.TileIndexAt(c.Weapon.InitialX, c.Weapon.InitialY)
	if origin < 0 {
		return
	}

	idx := origin
	counter := 0
	for {
		next, ok := board.NeighborInDirection(idx, c.Weapon.Direction)
		if !ok {
			return
		}
		idx = next

		tile := &w.Tiles.Tiles[idx]
		if tile.State && tile.ColoredID == board.ColorNone {
			tile.ColoredID = colorForCharacter(c.ID)
			tile.ColorTime = float32(w.gameTime)
			tile.Cracked = false
			tile.CrackedDeadline = float32(w.gameTime) + 0.05*float32(counter+1)

			if w.Conn != nil {
				w.Conn.Outbound.Push(codec.Message{
					Kind: codec.KindColorTile, PeerIndex: -1,
					CharacterID: uint8(c.ID), TileIndex: uint8(idx),
				})
			}
			if w.OnSoundEvent != nil {
				w.OnSoundEvent(SoundTileColor)
			}
		}
		counter++
	}
}

// advanceWeapon runs one tick of a firing character's weapon: it
// latches the beam's destroy cursor at BeginDestroy, steps that cursor
// one tile further every tick thereafter (kicking any of this
// character's own colored tiles it lands on into falling), restores
// movement at CharacterRegain, and resets the weapon at EndAnim.
func (w *World) advanceWeapon(c *board.Character, dt float64) {
	wp := &c.Weapon
	if wp.Idle() {
		return
	}

	switch wp.Direction {
	case codec.DirRight:
		wp.X += board.ProjectileSpeed * float32(dt)
	case codec.DirLeft:
		wp.X -= board.ProjectileSpeed * float32(dt)
	case codec.DirUp:
		wp.Y += board.ProjectileSpeed * float32(dt)
	case codec.DirDown:
		wp.Y -= board.ProjectileSpeed * float32(dt)
	}
	wp.Z = board.CharacterAliveZ + float32(math.Abs(math.Cos(float64(wp.TimeFiring)*16.0)))*1.5

	wp.TimeFiring += float32(dt)
	wp.Fired = false // one-shot: only the tick Fire was invoked sees it set

	if wp.TimeFiring >= board.BeginDestroy-wp.CompensationSeconds {
		if origin := board.TileIndexAt(wp.InitialX, wp.InitialY); origin >= 0 {
			wp.LatchOrigin(origin)
		}
	}

	if w.IsServer && wp.TargetTileIndex != -1 {
		next, ok := board.NeighborInDirection(wp.TargetTileIndex, wp.Direction)
		if !ok {
			wp.TargetTileIndex = -1
		} else {
			wp.TargetTileIndex = next
			tile := &w.Tiles.Tiles[next]
			if tile.State && tile.ColoredID == colorForCharacter(c.ID) {
				tile.BeginFalling()
				tile.RecoveryTimer = wp.RecoveryDelay
				wp.RecoveryDelay -= board.RecoveryDelta

				if w.Conn != nil {
					w.Conn.Outbound.Push(codec.Message{
						Kind: codec.KindTileFalling, PeerIndex: -1,
						TileIndex: uint8(next), Dead: false,
					})
				}
				if w.OnSoundEvent != nil {
					w.OnSoundEvent(SoundTileFall)
				}
			}
		}
	}

	if wp.TimeFiring >= board.CharacterRegain-wp.CompensationSeconds && c.Alive() {
		c.Active = true
	}

	if wp.TimeFiring >= board.EndAnim-wp.CompensationSeconds {
		c.Weapon.Reset()
		c.Alpha = 1.0
	}
}
