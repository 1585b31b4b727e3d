package simulation

import (
	"skycheckers/board"
	"skycheckers/codec"
)

// Trigger is one authoritative event scheduled for delayed playback by
// the interpolation package, dispatched in PendingTriggers slice order;
// because scheduleTrigger reuses consumed slots, that is not always
// insertion order. ReadyTick is
// stamped at enqueue time to now-half_ping; a zero ReadyTick marks a
// consumed, reusable slot.
type Trigger struct {
	Kind        codec.Kind
	CharacterID board.FixedCharacterID
	TileIndex   uint8
	Dead        bool
	ReadyTick   int64 // unix millis
}

// scheduleTrigger reuses a consumed slot before growing the queue.
func (w *World) scheduleTrigger(t Trigger) {
	for i := range w.PendingTriggers {
		if w.PendingTriggers[i].ReadyTick == 0 {
			w.PendingTriggers[i] = t
			return
		}
	}
	w.PendingTriggers = append(w.PendingTriggers, t)
}

// readyTickNow stamps a trigger at now - half_ping, matching the
// client's playback-delay convention for authoritative events.
func (w *World) readyTickNow() int64 {
	return nowMillis() - int64(w.halfPingMs())
}

// drainInboundClient applies every authoritative update the server has
// sent since the last tick. State mutation (board/character/lobby)
// happens immediately; cosmetic playback
// (sounds, scheduled flourishes) goes through PendingTriggers for the
// interpolation layer to dispatch at the right delayed instant.
func (w *World) drainInboundClient() {
	if w.Conn == nil {
		return
	}
	for _, msg := range w.Conn.Inbound.DrainAll() {
		switch msg.Kind {
		case codec.KindServerAcceptance:
			w.ControlledID = board.FixedCharacterID(msg.Slot) + 1
			w.ConfiguredLives = int(msg.Lives)

		case codec.KindServerRejection:
			// Connection establishment failed; the transport layer tears
			// down the socket. Nothing for the simulation state to do.

		case codec.KindNumberOfPlayersWaiting:
			// Purely informational for the lobby UI; no World state to update.

		case codec.KindNetName:
			if c := w.Character(board.FixedCharacterID(msg.CharacterID)); c != nil {
				c.Name = msg.Name
				c.Role = board.RoleHuman
				c.NetRole = board.NetRolePlaying
			}

		case codec.KindStartGame:
			w.GameHasStarted = true

		case codec.KindGameStartNumber:
			w.GameStartNumber = int(msg.Count)

		case codec.KindMovement:
			w.applyMovement(msg)

		case codec.KindPlayerKilled:
			if c := w.Character(board.FixedCharacterID(msg.CharacterID)); c != nil {
				c.Lives = int(msg.Lives)
				c.Active = false
			}
			w.scheduleTrigger(Trigger{Kind: codec.KindPlayerKilled, CharacterID: board.FixedCharacterID(msg.CharacterID), ReadyTick: w.readyTickNow()})

		case codec.KindCharacterKills:
			if c := w.Character(board.FixedCharacterID(msg.CharacterID)); c != nil {
				c.Kills = int(msg.Kills)
			}

		case codec.KindColorTile:
			if t := w.tileAt(msg.TileIndex); t != nil {
				t.ColoredID = colorForCharacter(board.FixedCharacterID(msg.CharacterID))
				t.ColorTime = float32(w.gameTime)
				t.PredictedColorID = board.ColorNone
			}
			w.scheduleTrigger(Trigger{Kind: codec.KindColorTile, CharacterID: board.FixedCharacterID(msg.CharacterID), TileIndex: msg.TileIndex, ReadyTick: w.readyTickNow()})

		case codec.KindTileFalling:
			if t := w.tileAt(msg.TileIndex); t != nil {
				t.BeginFalling()
				t.IsDead = msg.Dead
			}
			w.scheduleTrigger(Trigger{Kind: codec.KindTileFalling, TileIndex: msg.TileIndex, Dead: msg.Dead, ReadyTick: w.readyTickNow()})

		case codec.KindRecoverTile:
			if t := w.tileAt(msg.TileIndex); t != nil {
				t.Recover()
			}
			w.scheduleTrigger(Trigger{Kind: codec.KindRecoverTile, TileIndex: msg.TileIndex, ReadyTick: w.readyTickNow()})

		case codec.KindNewGame:
			w.ResetForRematch()

		case codec.KindLaggedOut:
			w.demoteToAI(int(msg.CharacterID))

		case codec.KindPing:
			w.Conn.Outbound.Push(codec.Message{Kind: codec.KindPong, PeerIndex: -1, Seq: msg.Seq})

		case codec.KindPong:
			// Ping stamps are the low 32 bits of unix millis; subtract in that width.
			half := float64(int32(uint32(nowMillis())-msg.Seq)) / 2
			if half < 0 {
				half = 0
			}
			w.Conn.Server.HalfPing.Record(half)
		}
	}
}

func (w *World) tileAt(idx uint8) *board.Tile {
	if int(idx) >= len(w.Tiles.Tiles) {
		return nil
	}
	return &w.Tiles.Tiles[idx]
}

// applyMovement pushes an authoritative position update into the
// character's movement ring (consumed by the interpolation package) and
// mirrors it directly onto the character so non-interpolated callers
// (and this package's own tests) see current state.
func (w *World) applyMovement(msg codec.Message) {
	c := w.Character(board.FixedCharacterID(msg.CharacterID))
	if c == nil {
		return
	}
	c.X, c.Y = msg.X, msg.Y
	c.Direction = msg.Direction
	c.PointingDirection = msg.PointingDirection
	if msg.Dead {
		c.Z = board.CharacterAliveZ - board.FallStep
	} else {
		c.Z = board.CharacterAliveZ
	}
	c.MovementRing.Push(board.CharacterMovement{
		X: msg.X, Y: msg.Y,
		Direction:         msg.Direction,
		PointingDirection: msg.PointingDirection,
		Dead:              msg.Dead,
		TickMs:            nowMillis(),
	})
	c.MovementConsumedCounter++
}
