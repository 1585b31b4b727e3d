package board

import "skycheckers/codec"

// Weapon is the single projectile/beam owned by a character. Its fields
// double as the state for the firing state machine: idle -> firing ->
// (coloring/destroying) -> regain -> anim-end -> idle.
type Weapon struct {
	X, Y, Z float32

	InitialX, InitialY float32

	Direction codec.Direction

	AnimationActive bool
	TimeFiring      float32 // seconds since fire(), 0 when idle

	// CompensationSeconds is clamp(half_ping_ms, 0, 110)/1000, applied
	// once at fire time so a laggy shooter's destroy window starts
	// earlier from the server's point of view.
	CompensationSeconds float32

	R, G, B float32

	Fired bool // one-shot: true for exactly the tick fire() was invoked (advanceWeapon clears it)

	// TargetTileIndex is the tile currently being destroyed by this
	// weapon's beam, or -1 when none is targeted.
	TargetTileIndex int

	// originTileIndex is the character's own tile at fire time, latched
	// into TargetTileIndex once at the BeginDestroy threshold. -1 before
	// that latch happens.
	originTileIndex int
	needOriginTile  bool

	// RecoveryDelay is this weapon's current per-destroy recovery delay,
	// decremented by board.RecoveryDelta each tile the beam destroys so
	// the first tile destroyed in a shot starts closer to TileSpawnTime
	// and recovers sooner than ones destroyed later in the same shot.
	RecoveryDelay float32
}

// NewWeapon returns an idle weapon.
func NewWeapon() Weapon {
	return Weapon{TargetTileIndex: -1, originTileIndex: -1, RecoveryDelay: InitialRecoveryDelay}
}

// Idle reports whether the weapon is not currently firing.
func (w *Weapon) Idle() bool { return !w.AnimationActive && w.TimeFiring == 0 }

// Fire begins the firing state machine at the character's current
// position and facing direction.
func (w *Weapon) Fire(x, y, z float32, dir codec.Direction, compensationSeconds float32) {
	w.X, w.Y, w.Z = x, y, z
	w.InitialX, w.InitialY = x, y
	w.Direction = dir
	w.AnimationActive = true
	w.TimeFiring = 0
	w.CompensationSeconds = compensationSeconds
	w.Fired = true
	w.TargetTileIndex = -1
	w.originTileIndex = -1
	w.needOriginTile = true
}

// Reset returns the weapon to idle, clearing the one-shot Fired flag and
// the per-shot recovery delay.
func (w *Weapon) Reset() {
	w.AnimationActive = false
	w.TimeFiring = 0
	w.Fired = false
	w.TargetTileIndex = -1
	w.originTileIndex = -1
	w.needOriginTile = false
	w.RecoveryDelay = InitialRecoveryDelay
}

// LatchOrigin captures the character's current tile as the beam's
// destroy cursor, exactly once per shot, at the BeginDestroy threshold.
func (w *Weapon) LatchOrigin(tileIndex int) {
	if !w.needOriginTile {
		return
	}
	w.originTileIndex = tileIndex
	w.TargetTileIndex = tileIndex
	w.needOriginTile = false
}
