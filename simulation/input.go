package simulation

import "skycheckers/codec"

// SetLocalDirection records the collaborator's latest movement input;
// issueLocalInput turns a change into a MovementRequest next client
// tick.
func (w *World) SetLocalDirection(dir codec.Direction) {
	w.localDirection = dir
}

// RequestLocalFire marks a fire request to send on the next client
// tick, provided the locally controlled character's weapon is idle.
func (w *World) RequestLocalFire() {
	w.localFireRequested = true
}

// applyHostLocalInput is the host's half of applying local input. The
// host's own character is authoritative already, so local input is
// applied straight to the character instead of round-tripping through
// MovementRequest/FireRequest.
func (w *World) applyHostLocalInput() {
	c := w.Character(w.ControlledID)
	if c == nil {
		return
	}
	c.Direction = w.localDirection
	if w.localFireRequested {
		w.localFireRequested = false
		if c.Weapon.Idle() && c.Alive() {
			w.fireWeapon(c)
		}
	}
}

// issueLocalInput is the client-only half of applying local input: send
// a MovementRequest only when the locally computed direction actually
// differs from what the character is currently doing, tagging the
// prediction with a half-ping validity deadline for the interpolation
// layer to honor.
func (w *World) issueLocalInput() {
	if w.IsServer || w.Conn == nil {
		return
	}
	c := w.Character(w.ControlledID)
	if c == nil {
		return
	}

	if w.localDirection != c.Direction {
		half := w.halfPingMs()
		c.PredictedDirection = w.localDirection
		c.PredictedDirectionDeadlineMs = nowMillis() + int64(half)
		c.Direction = w.localDirection
		w.Conn.Outbound.Push(codec.Message{Kind: codec.KindMovementRequest, PeerIndex: -1, Direction: w.localDirection})
	}

	if w.localFireRequested {
		w.localFireRequested = false
		if c.Weapon.Idle() && c.Alive() {
			w.Conn.Outbound.Push(codec.Message{Kind: codec.KindFireRequest, PeerIndex: -1})
		}
	}
}
