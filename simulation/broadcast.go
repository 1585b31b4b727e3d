package simulation

import "skycheckers/codec"

// broadcastMovements sends one realtime Movement update per active
// character per tick. Each update gets its own freshness stamp: the
// receiver keeps a single latest-seen realtime seq per peer and drops
// any update whose seq is not strictly newer, so updates sharing a
// stamp would be dropped after the first.
func (w *World) broadcastMovements() {
	if w.Conn == nil {
		return
	}
	for _, c := range w.Players {
		if !c.Active {
			continue
		}
		w.movementSeq++
		w.Conn.Outbound.Push(codec.Message{
			Kind: codec.KindMovement, PeerIndex: -1, Seq: w.movementSeq,
			CharacterID:       uint8(c.ID),
			X:                 c.X,
			Y:                 c.Y,
			Direction:         c.Direction,
			PointingDirection: c.PointingDirection,
			Dead:              !c.Alive(),
		})
	}
}
