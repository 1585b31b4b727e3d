// Package simulation owns the authoritative game state: four characters,
// the 8x8 tile board, the countdown, and — on the
// server — the tick-by-tick rules that mutate all of it. On the client
// it only applies inbound authoritative updates; rendering the result is
// the interpolation package's job.
package simulation

import (
	"math/rand"
	"time"

	"skycheckers/board"
	"skycheckers/codec"
	"skycheckers/network"
)

// World is the single owned aggregate for one process's view of a
// match: the four characters, the tile board, and the network
// connection.
type World struct {
	IsServer bool

	Players [board.NumPlayers]*board.Character
	Tiles   *board.Board

	Conn *network.NetworkConnection

	// ControlledID is which character this process's local player
	// controls: always PinkBubbleGum (1) when hosting, whatever the
	// server assigned when a client.
	ControlledID board.FixedCharacterID

	// SlotCharacter maps a server-side peer slot (0..2) to the
	// character it controls; index i holds FixedCharacterID(i+2).
	// Declared for readability at call sites even though the mapping is
	// a fixed affine one.
	SlotCharacter [network.MaxPeers]board.FixedCharacterID

	ConfiguredLives int

	GameStartNumber  int
	GameHasStarted   bool
	lastCountdownTick time.Time

	OuterRing outerRingState

	// PendingTriggers holds authoritative events awaiting delayed
	// playback by the interpolation package.
	PendingTriggers []Trigger

	ai [board.NumPlayers]aiState

	rng *rand.Rand

	// accumulator state for the fixed-tick loop.
	acc      float64
	lastTick time.Time

	// gameTime is seconds of simulated ticks elapsed since ResetGame; it
	// schedules cosmetic tile-crack timing.
	gameTime float64

	// movementSeq is the realtime freshness stamp of the latest
	// Movement broadcast; it advances once per broadcast update.
	movementSeq uint32

	// lastPingAt throttles Ping emission.
	lastPingAt time.Time

	// localDirection/localFireRequested capture the client's latest
	// input; issueLocalInput turns them into MovementRequest/FireRequest.
	localDirection     codec.Direction
	localFireRequested bool

	// OnSoundEvent and OnRenderWorld are the narrow contracts toward the
	// collaborator layer; the engine package wires these to whatever
	// presentation layer exists outside this core.
	OnSoundEvent  func(kind SoundKind)
	OnRenderWorld func(w *World)
}

// SoundKind enumerates the sound-triggering events the simulation core
// reports upward; the concrete audio playback is entirely out of scope.
type SoundKind uint8

const (
	SoundFire SoundKind = iota
	SoundTileColor
	SoundTileFall
	SoundTileRecover
	SoundDeath
)

// NewWorld allocates a fresh, unpopulated world (no lives, all
// characters non-playing). Call ResetGame to place characters and start
// a countdown.
func NewWorld(isServer bool) *World {
	w := &World{
		IsServer: isServer,
		Tiles:    board.NewBoard(),
		rng:      rand.New(rand.NewSource(1)),
	}
	for i := range w.Players {
		w.Players[i] = board.NewCharacter(board.FixedCharacterID(i + 1))
	}
	for i := range w.SlotCharacter {
		w.SlotCharacter[i] = board.FixedCharacterID(i + 2)
	}
	if isServer {
		w.ControlledID = board.PinkBubbleGum
	}
	return w
}

// Character returns the player entity for a fixed character id (1..4),
// or nil if out of range.
func (w *World) Character(id board.FixedCharacterID) *board.Character {
	if id < 1 || int(id) > board.NumPlayers {
		return nil
	}
	return w.Players[id-1]
}

// CharacterForSlot returns the character controlled by a connected
// server-side peer slot (0..2).
func (w *World) CharacterForSlot(slot int) *board.Character {
	if slot < 0 || slot >= network.MaxPeers {
		return nil
	}
	return w.Character(w.SlotCharacter[slot])
}

// ResetGame (re)initializes every character to alive-with-full-lives at
// its starting tile and resets the board and countdown. A game can
// restart after a win, so this also backs the lobby's rematch path.
func (w *World) ResetGame(lives int, humanSlots int) {
	w.ConfiguredLives = lives
	w.Tiles = board.NewBoard()
	w.OuterRing = outerRingState{}
	w.GameHasStarted = false
	w.GameStartNumber = 5
	w.lastCountdownTick = time.Time{}
	w.gameTime = 0

	startPositions := startingPositions()
	for i, c := range w.Players {
		c.Lives = lives
		c.Kills = 0
		c.Z = board.CharacterAliveZ
		c.Active = true
		c.Alpha = 1.0
		c.Direction = codec.DirNone
		c.PointingDirection = codec.DirDown
		c.Weapon = board.NewWeapon()
		c.X, c.Y = startPositions[i].x, startPositions[i].y

		if i < humanSlots {
			c.Role = board.RoleHuman
			c.NetRole = board.NetRolePending
		} else {
			c.Role = board.RoleAI
			c.NetRole = board.NetRoleNone
		}
		w.ai[i] = aiState{}
	}
	// The host always controls PinkBubbleGum and is immediately playing.
	w.Players[0].NetRole = board.NetRolePlaying
}

// ResetForRematch re-runs ResetGame without touching any player's
// Role/NetRole, for the client side of a NewGame broadcast: the lobby
// handshake that assigned those roles already happened and must not be
// redone just because the server started a second match.
func (w *World) ResetForRematch() {
	roles := make([]board.Role, board.NumPlayers)
	netRoles := make([]board.NetRole, board.NumPlayers)
	for i, c := range w.Players {
		roles[i], netRoles[i] = c.Role, c.NetRole
	}
	w.ResetGame(w.ConfiguredLives, 0)
	for i, c := range w.Players {
		c.Role, c.NetRole = roles[i], netRoles[i]
	}
}

type vec2 struct{ x, y float32 }

// startingPositions places the four characters at the board's four
// fixed corner spawn points.
func startingPositions() [board.NumPlayers]vec2 {
	const edge = float32(board.BoardSize - 1)
	return [board.NumPlayers]vec2{
		{0, 0},
		{edge, 0},
		{0, edge},
		{edge, edge},
	}
}
