package simulation

import "skycheckers/board"

// stepServer runs one authoritative tick.
func (w *World) stepServer() {
	w.drainInboundServer()
	w.applyHostLocalInput()

	for _, c := range w.Players {
		w.updateAI(c, board.TickDT)
	}
	for _, c := range w.Players {
		w.moveCharacter(c, board.TickDT)
	}
	for _, c := range w.Players {
		w.advanceWeapon(c, board.TickDT)
	}

	w.collapseTiles(board.TickDT)

	for _, c := range w.Players {
		w.killCharacter(c)
		w.advanceCharacterFall(c, board.TickDT)
	}

	w.advanceOuterRing()
	w.recoverDestroyedTiles(board.TickDT)
	w.advanceCracks()

	w.broadcastMovements()
	w.advanceCountdown()
	w.emitPings()
}
