package simulation

import (
	"skycheckers/board"
	"skycheckers/codec"
)

// collapseTiles runs every tick, independent of which weapon (if any) is
// firing: any tile currently airborne keeps falling at a constant rate
// until it passes TileTerminatingZ. It covers both weapon-destroyed
// tiles and ones swept by the outer-ring sequence, so it stays a single
// pass over the whole board rather than living inside the weapon state
// machine.
func (w *World) collapseTiles(dt float64) {
	step := board.TileFallingSpeed * float32(dt)
	for i := range w.Tiles.Tiles {
		t := &w.Tiles.Tiles[i]
		if t.Z < board.TileAliveZ && t.Z >= board.TileTerminatingZ {
			t.Z -= step
		}
	}
}

// recoverDestroyedTiles is server-only: it counts up every tile's
// recovery timer and, once a tile reaches TileSpawnTime, restores it to
// its resting state and broadcasts RecoverTile — unless the tile was
// killed by the outer-ring sweep, which never auto-recovers.
func (w *World) recoverDestroyedTiles(dt float64) {
	if !w.IsServer {
		return
	}
	for i := range w.Tiles.Tiles {
		t := &w.Tiles.Tiles[i]
		if t.RecoveryTimer <= 0 {
			continue
		}
		t.RecoveryTimer += float32(dt)
		if t.RecoveryTimer >= board.TileSpawnTime && !t.IsDead {
			t.Recover()
			if w.Conn != nil {
				w.Conn.Outbound.Push(codec.Message{Kind: codec.KindRecoverTile, PeerIndex: -1, TileIndex: uint8(i)})
			}
			if w.OnSoundEvent != nil {
				w.OnSoundEvent(SoundTileRecover)
			}
		}
	}
}

// advanceCracks is the purely cosmetic flourish colorTilesAlongBeam
// schedules: a tile cracks once gameTime reaches its CrackedDeadline,
// then heals 2.5s later if it's still standing. It never affects a
// tile's color, state or recovery.
func (w *World) advanceCracks() {
	for i := range w.Tiles.Tiles {
		t := &w.Tiles.Tiles[i]
		if t.CrackedDeadline <= 0 {
			continue
		}
		now := float32(w.gameTime)
		if !t.Cracked && now >= t.CrackedDeadline {
			t.SetCracked(t.CrackedDeadline)
		} else if t.Cracked && t.State && now >= t.CrackedDeadline+2.5 {
			t.ClearCracked()
		}
	}
}
