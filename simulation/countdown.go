package simulation

import (
	"time"

	"skycheckers/board"
	"skycheckers/codec"
)

// advanceCountdown runs the lobby countdown: it holds at its starting
// value while any player is still Pending, then
// ticks down once per wall-clock second once everyone is Playing.
func (w *World) advanceCountdown() {
	if w.GameHasStarted {
		return
	}
	for _, p := range w.Players {
		if p.NetRole == board.NetRolePending {
			return
		}
	}

	now := time.Now()
	if w.lastCountdownTick.IsZero() {
		w.lastCountdownTick = now
		return
	}
	if now.Sub(w.lastCountdownTick) < time.Second {
		return
	}
	w.lastCountdownTick = now

	if w.GameStartNumber > 0 {
		w.GameStartNumber--
		if w.Conn != nil {
			w.Conn.Outbound.Push(codec.Message{Kind: codec.KindGameStartNumber, PeerIndex: -1, Count: uint8(w.GameStartNumber)})
		}
	}
	if w.GameStartNumber == 0 {
		w.GameHasStarted = true
	}
}
