package board

import "skycheckers/codec"

// Character is one of the four fixed player entities.
type Character struct {
	ID   FixedCharacterID
	Name string // user-supplied at CanIPlay time; empty for AI and the host's own character

	X, Y, Z float32

	Direction         codec.Direction
	PointingDirection codec.Direction

	Lives int // 0..10
	Kills int
	Wins  int

	Role    Role
	NetRole NetRole

	Weapon Weapon

	Active bool // may move
	Alpha  float32

	// RecoveryTimer holds a small nonzero marker while a non-eliminated
	// character is falling, then counts seconds once it has passed
	// CharacterTerminatingZ; it respawns once this exceeds
	// CharacterRespawnSeconds. 0 when not recovering.
	RecoveryTimer float32

	// Client-only interpolation state. Left zero on the server; the
	// simulation package never reads these there.
	XDiscrepancy, YDiscrepancy   float32
	MovementConsumedCounter      int
	PredictedDirection           codec.Direction
	PredictedDirectionDeadlineMs int64

	// MovementRing buffers the authoritative Movement snapshots the
	// interpolation package renders between.
	MovementRing MovementRing
}

// NewCharacter returns a character at the board origin with no lives;
// the simulation places it on its starting tile via the reset flow.
func NewCharacter(id FixedCharacterID) *Character {
	return &Character{
		ID:                id,
		Z:                 CharacterAliveZ,
		Direction:         codec.DirNone,
		PointingDirection: codec.DirDown,
		Lives:             0,
		Active:            true,
		Alpha:             1.0,
		Weapon:            NewWeapon(),
	}
}

// Alive reports whether the character currently has lives remaining and
// is not mid-fall (z at the resting alive height).
func (c *Character) Alive() bool {
	return c.Lives > 0 && c.Z == CharacterAliveZ
}
