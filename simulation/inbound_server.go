package simulation

import (
	"skycheckers/board"
	"skycheckers/codec"
)

// drainInboundServer processes inbound messages for one server tick:
// movement requests rewrite direction, fire requests schedule a weapon
// with lag compensation, and a freshly-accepted slot
// (FirstClientResponse) is turned into the welcome handshake
// (ServerAcceptance + NetName fan-out + NumberOfPlayersWaiting).
func (w *World) drainInboundServer() {
	if w.Conn == nil {
		return
	}
	for _, msg := range w.Conn.Inbound.DrainAll() {
		switch msg.Kind {
		case codec.KindFirstClientResponse:
			w.handleFirstClientResponse(msg)

		case codec.KindMovementRequest:
			c := w.CharacterForSlot(int(msg.PeerIndex))
			if c == nil {
				continue
			}
			c.Direction = msg.Direction

		case codec.KindFireRequest:
			c := w.CharacterForSlot(int(msg.PeerIndex))
			if c == nil || !c.Weapon.Idle() || !c.Alive() {
				continue
			}
			w.fireWeapon(c)

		case codec.KindPong:
			w.recordPong(int(msg.PeerIndex), msg.Seq)

		case codec.KindPing:
			w.Conn.Outbound.Push(codec.Message{Kind: codec.KindPong, PeerIndex: msg.PeerIndex, Seq: msg.Seq})

		case codec.KindLaggedOut:
			slot := int(msg.CharacterID)
			w.demoteToAI(slot)
			if c := w.CharacterForSlot(slot); c != nil {
				w.Conn.Outbound.Push(codec.Message{Kind: codec.KindLaggedOut, PeerIndex: -1, CharacterID: uint8(slot)})
			}
		}
	}
}

// handleFirstClientResponse runs once per newly-accepted peer: assigns
// the wire-facing slot number (one more than the zero-indexed internal
// slot the transport worker used; the client adds one more to get its
// character id), replies with ServerAcceptance, introduces every other
// already-named character to the joiner via NetName, and updates the
// lobby count for everyone.
func (w *World) handleFirstClientResponse(msg codec.Message) {
	internalSlot := int(msg.Slot)
	c := w.CharacterForSlot(internalSlot)
	if c == nil {
		return
	}
	c.Name = msg.Name
	c.Role = board.RoleHuman
	c.NetRole = board.NetRolePlaying

	wireSlot := uint8(internalSlot) + 1

	w.Conn.Outbound.Push(codec.Message{
		Kind: codec.KindServerAcceptance, PeerIndex: msg.PeerIndex,
		Slot: wireSlot, Lives: uint8(w.ConfiguredLives),
	})

	for _, other := range w.Players {
		if other.Name == "" || other.ID == c.ID {
			continue
		}
		w.Conn.Outbound.Push(codec.Message{
			Kind: codec.KindNetName, PeerIndex: msg.PeerIndex,
			CharacterID: uint8(other.ID), Name: other.Name,
		})
	}

	w.broadcastPlayerCount()
}

func (w *World) broadcastPlayerCount() {
	count := uint8(0)
	for _, c := range w.Players {
		if c.NetRole == board.NetRolePlaying {
			count++
		}
	}
	w.Conn.Outbound.Push(codec.Message{Kind: codec.KindNumberOfPlayersWaiting, PeerIndex: -1, Count: count})
}

// demoteToAI converts a lagged-out peer slot's character to AI control.
func (w *World) demoteToAI(slot int) {
	c := w.CharacterForSlot(slot)
	if c == nil {
		return
	}
	c.Role = board.RoleAI
	c.NetRole = board.NetRoleNone
}

// recordPong updates the half-ping moving average for a server-side
// peer. The transport worker stamps LastPongAt for its own liveness
// check and forwards the Pong unchanged.
func (w *World) recordPong(slot int, echoedTimestampMs uint32) {
	peer := w.peerSlotFor(slot)
	if peer == nil {
		return
	}
	// Ping stamps are the low 32 bits of unix millis; subtract in that width.
	half := float64(int32(uint32(nowMillis())-echoedTimestampMs)) / 2
	if half < 0 {
		half = 0
	}
	peer.HalfPing.Record(half)
}
