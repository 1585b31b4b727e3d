// Package board holds the authoritative data model shared by the
// simulation and interpolation packages: characters, weapons, the 8x8
// tile grid, and the client-side movement ring buffer.
package board

import "time"

// Tick timing: a fixed ~56.5Hz tick driven off an accumulator, chosen
// for smooth physics at a steady step size.
const (
	TickHz  = 56.497
	TickDT  = 1.0 / TickHz // ~0.01770s
	MaxAcc  = 25 * TickDT
)

// World geometry.
const (
	BoardSize  = 8  // 8x8 grid
	NumTiles   = BoardSize * BoardSize
	NumPlayers = 4
)

// Z heights for characters and tiles as they fall off the board.
const (
	CharacterAliveZ       float32 = 2.0
	CharacterTerminatingZ float32 = -70.0
	TileAliveZ            float32 = -25.0
	TileTerminatingZ      float32 = -105.0
	FallStep              float32 = 0.5      // one-time step applied the instant a tile or character is kicked into falling
	TileFallingSpeed      float32 = 25.4237  // units/s, continuous rate applied every tick while a tile is airborne
	CharacterFallingSpeed float32 = 25.4237  // units/s, continuous rate applied every tick while a character is dying

	// CharacterRespawnSeconds is how long a dead-but-not-eliminated
	// character (Lives > 0) stays off the board before respawning.
	CharacterRespawnSeconds float32 = 2.0
)

// CharacterSpeed is how fast a character crosses the board, units/s.
const CharacterSpeed float32 = 4.51977

// Weapon/tile state machine timing.
const (
	BeginDestroyTicks    = 31
	CharacterRegainTicks = 25
	EndAnimTicks         = 71
	RecoveryDeltaTicks   = 10
	TileSpawnTicks       = 201

	BeginDestroy    = BeginDestroyTicks * TickDT
	CharacterRegain = CharacterRegainTicks * TickDT
	EndAnim         = EndAnimTicks * TickDT
	RecoveryDelta   = RecoveryDeltaTicks * TickDT
	TileSpawnTime   = TileSpawnTicks * TickDT

	// InitialRecoveryDelay seeds each weapon's per-shot recovery delay
	// countdown: the full animation window's worth of ticks, decreasing
	// per destroyed tile so earlier-destroyed tiles recover sooner.
	InitialRecoveryDelay float32 = EndAnimTicks * TickDT

	ProjectileSpeed float32 = 30.0 // units/s
)

// Networking timing.
const (
	LivenessTimeout = 4000 * time.Millisecond
	WorkerTick      = 5 * time.Millisecond
)

// Outer-ring destruction sweep layer sizes.
const (
	OuterRingLayer0Size = 28
	OuterRingLayer1Size = 20
)

// FixedCharacterID identifies one of the four fixed player identities.
type FixedCharacterID uint8

const (
	PinkBubbleGum FixedCharacterID = iota + 1 // PB
	RedRover                                  // RR
	GreenTree                                 // GT
	BlueLightning                             // BL
)

// ColoredID is a tile's coloring owner: a player color, gray (from the
// outer-ring sweep), or none.
type ColoredID uint8

const (
	ColorNone ColoredID = iota
	ColorPB
	ColorRR
	ColorGT
	ColorBL
	ColorGray
)

// Role distinguishes a human-controlled character from an AI-controlled
// one; NetRole tracks the lobby/connection lifecycle of a human slot.
type Role uint8

const (
	RoleHuman Role = iota
	RoleAI
)

type NetRole uint8

const (
	NetRoleNone NetRole = iota
	NetRolePending
	NetRolePlaying
)
