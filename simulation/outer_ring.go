package simulation

import (
	"skycheckers/board"
	"skycheckers/codec"
)

// Tick-count thresholds for the outer-ring sweep: a layer's timer is
// raw ticks, not seconds.
const (
	ringBeginColorTicks = 100
	ringBeginDropTicks  = 200
)

// outerRingLayer0/1 give each ring's tile-index sweep order: outermost
// ring first (28 tiles), then the ring just inside it (20 tiles).
var outerRingLayer0 = [28]int{
	56, 57, 58, 59, 60, 61, 62, 63,
	55, 47, 39, 31, 23, 15, 7,
	6, 5, 4, 3, 2, 1, 0,
	8, 16, 24, 32, 40, 48,
}

var outerRingLayer1 = [20]int{
	49, 50, 51, 52, 53, 54,
	46, 38, 30, 22, 14,
	13, 12, 11, 10, 9,
	17, 25, 33, 41,
}

// ringLayerState is one of the two elimination-triggered destruction
// waves: timer 0 means not yet started, -1 means finished.
type ringLayerState struct {
	timer    int
	colorIdx int
	deathIdx int
}

// outerRingState holds both waves of the two-layer board-shrink
// triggered by a player elimination.
type outerRingState struct {
	layer0 ringLayerState
	layer1 ringLayerState
}

// triggerOuterRingLayer starts the next not-yet-started layer. Called
// once per player elimination while at least two players remain.
func (w *World) triggerOuterRingLayer() {
	if w.OuterRing.layer0.timer == 0 {
		w.OuterRing.layer0.timer = 1
	} else if w.OuterRing.layer1.timer == 0 {
		w.OuterRing.layer1.timer = 1
	}
}

// advanceOuterRing runs one tick of both sweep layers (server-only).
// Layer 1 only progresses once layer 0 has fully finished, matching the
// original's sequencing even though both can be "triggered" early.
func (w *World) advanceOuterRing() {
	if !w.IsServer {
		return
	}
	w.advanceRingLayer(&w.OuterRing.layer0, outerRingLayer0[:])
	if w.OuterRing.layer0.timer == -1 {
		w.advanceRingLayer(&w.OuterRing.layer1, outerRingLayer1[:])
	}
}

func (w *World) advanceRingLayer(st *ringLayerState, order []int) {
	if st.timer <= 0 {
		return
	}

	if st.colorIdx != -1 && st.timer > ringBeginColorTicks {
		idx := order[st.colorIdx]
		tile := &w.Tiles.Tiles[idx]
		if tile.ColoredID == board.ColorNone {
			tile.ColoredID = board.ColorGray
			tile.ColorTime = float32(w.gameTime)
		} else {
			tile.IsDead = true
		}
		st.colorIdx++
		if st.colorIdx == len(order) {
			st.colorIdx = -1
		}
	}

	if st.deathIdx != -1 && st.timer > ringBeginDropTicks {
		idx := order[st.deathIdx]
		tile := &w.Tiles.Tiles[idx]
		if !tile.IsDead {
			tile.Z -= board.FallStep
			tile.IsDead = true
			if w.Conn != nil {
				w.Conn.Outbound.Push(codec.Message{
					Kind: codec.KindTileFalling, PeerIndex: -1,
					TileIndex: uint8(idx), Dead: true,
				})
			}
			if w.OnSoundEvent != nil {
				w.OnSoundEvent(SoundTileFall)
			}
		}
		st.deathIdx++
		if st.deathIdx == len(order) {
			st.deathIdx = -1
			st.timer = -1
			return
		}
	}

	st.timer++
}
