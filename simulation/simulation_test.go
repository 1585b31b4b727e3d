package simulation

import (
	"net"
	"testing"
	"time"

	"skycheckers/board"
	"skycheckers/codec"
	"skycheckers/network"
)

// discardSocket is a minimal network.Socket that never has anything to
// read and swallows every write, enough to back a NetworkConnection in
// tests that only care about the outbound queue's contents.
type discardSocket struct{}

func (discardSocket) ReadFrom(buf []byte) (int, net.Addr, error)      { return 0, nil, errNoData{} }
func (discardSocket) WriteTo(buf []byte, addr net.Addr) (int, error)  { return len(buf), nil }
func (discardSocket) SetReadDeadline(t time.Time) error               { return nil }
func (discardSocket) Close() error                                    { return nil }

type errNoData struct{}

func (errNoData) Error() string   { return "no data" }
func (errNoData) Timeout() bool   { return true }
func (errNoData) Temporary() bool { return true }

func newServerWorld(t *testing.T) *World {
	t.Helper()
	w := NewWorld(true)
	w.Conn = network.NewServerConnection(discardSocket{}, 3)
	w.ResetGame(3, 1)
	return w
}

func TestFireWeaponColorsBeamAndLatchesOrigin(t *testing.T) {
	w := newServerWorld(t)
	c := w.Character(board.PinkBubbleGum)
	c.X, c.Y = 3, 3
	c.PointingDirection = codec.DirRight

	w.fireWeapon(c)

	if c.Active {
		t.Fatal("firing should disable movement until CharacterRegain")
	}
	if c.Weapon.Idle() {
		t.Fatal("weapon should be mid-animation right after Fire")
	}

	neighbor, ok := board.NeighborInDirection(board.TileIndexAt(3, 3), codec.DirRight)
	if !ok {
		t.Fatal("expected a right neighbor from (3,3)")
	}
	if w.Tiles.Tiles[neighbor].ColoredID != board.ColorPB {
		t.Fatalf("expected the first beam tile colored PB, got %v", w.Tiles.Tiles[neighbor].ColoredID)
	}
}

func TestAdvanceWeaponDestroysTileAtBeginDestroy(t *testing.T) {
	w := newServerWorld(t)
	c := w.Character(board.PinkBubbleGum)
	c.X, c.Y = 3, 3
	c.PointingDirection = codec.DirRight
	w.fireWeapon(c)

	target, _ := board.NeighborInDirection(board.TileIndexAt(3, 3), codec.DirRight)

	// Run enough ticks to pass BeginDestroy and the first destroy step.
	for i := 0; i < int(board.BeginDestroyTicks)+2; i++ {
		w.advanceWeapon(c, board.TickDT)
	}

	tile := w.Tiles.Tiles[target]
	if tile.State {
		t.Fatalf("expected the first beam tile to start falling, tile=%+v", tile)
	}
	if tile.RecoveryTimer <= 0 {
		t.Fatal("expected a positive recovery timer seeded on destroy")
	}
}

func TestCollapseTilesStopsOnceBelowTerminatingZ(t *testing.T) {
	w := newServerWorld(t)
	tile := &w.Tiles.Tiles[0]
	tile.BeginFalling()
	tile.Z = board.TileTerminatingZ - 1

	before := tile.Z
	w.collapseTiles(board.TickDT)

	if tile.Z != before {
		t.Fatalf("collapseTiles must leave a tile already past TileTerminatingZ alone, got %v want %v", tile.Z, before)
	}
}

func TestRecoverDestroyedTilesRestoresAtSpawnTime(t *testing.T) {
	w := newServerWorld(t)
	tile := &w.Tiles.Tiles[5]
	tile.BeginFalling()
	tile.ColoredID = board.ColorPB
	tile.RecoveryTimer = board.TileSpawnTime - 0.001

	w.recoverDestroyedTiles(0.01)

	if !tile.State {
		t.Fatal("expected the tile to be restored once past TileSpawnTime")
	}
	if tile.ColoredID != board.ColorNone {
		t.Fatalf("expected color cleared on recovery, got %v", tile.ColoredID)
	}
}

func TestMoveCharacterBlockedByFallenNeighbor(t *testing.T) {
	w := newServerWorld(t)
	c := w.Character(board.PinkBubbleGum)
	c.X, c.Y = 3, 3
	c.Direction = codec.DirRight

	idx, _ := board.NeighborInDirection(board.TileIndexAt(3, 3), codec.DirRight)
	w.Tiles.Tiles[idx].State = false

	for i := 0; i < 50; i++ {
		w.moveCharacter(c, board.TickDT)
	}

	if c.X >= float32(board.Col(idx)) {
		t.Fatalf("expected movement blocked before reaching the fallen tile, x=%v", c.X)
	}
}

func TestKillCharacterDecrementsLivesAndCreditsKiller(t *testing.T) {
	w := newServerWorld(t)
	victim := w.Character(board.RedRover)
	killer := w.Character(board.PinkBubbleGum)
	victim.Lives = 2
	victim.Active = true

	idx := board.TileIndexAt(victim.X, victim.Y)
	tile := &w.Tiles.Tiles[idx]
	tile.ColoredID = board.ColorPB
	tile.Z = board.TileAliveZ - 1 // fallen

	w.killCharacter(victim)

	if victim.Lives != 1 {
		t.Fatalf("expected lives decremented to 1, got %d", victim.Lives)
	}
	if killer.Kills != 1 {
		t.Fatalf("expected the tile's colored owner credited with a kill, got %d", killer.Kills)
	}
	if victim.Active {
		t.Fatal("expected the victim to stop moving while falling")
	}
}

func TestKillCharacterAtZeroLivesTriggersOuterRing(t *testing.T) {
	w := newServerWorld(t)
	// Three players still alive besides the one about to lose its last life.
	victim := w.Character(board.RedRover)
	victim.Lives = 1

	idx := board.TileIndexAt(victim.X, victim.Y)
	tile := &w.Tiles.Tiles[idx]
	tile.Z = board.TileAliveZ - 1

	w.killCharacter(victim)

	if victim.Lives != 0 {
		t.Fatalf("expected lives to reach zero, got %d", victim.Lives)
	}
	if w.OuterRing.layer0.timer == 0 {
		t.Fatal("expected the outer-ring sweep to be triggered with 2+ players still alive")
	}
}

func TestAdvanceCountdownDecrementsOncePerSecond(t *testing.T) {
	w := newServerWorld(t)
	for _, c := range w.Players {
		c.NetRole = board.NetRolePlaying
	}
	w.GameStartNumber = 5
	w.lastCountdownTick = time.Time{}

	w.advanceCountdown()
	first := w.GameStartNumber

	w.lastCountdownTick = time.Now().Add(-2 * time.Second)
	w.advanceCountdown()

	if w.GameStartNumber >= first {
		t.Fatalf("expected the countdown to decrement after a full second elapsed, got %d then %d", first, w.GameStartNumber)
	}
}

func TestAdvanceCountdownHoldsWhilePlayerPending(t *testing.T) {
	w := newServerWorld(t)
	w.Players[1].NetRole = board.NetRolePending
	w.GameStartNumber = 5

	w.advanceCountdown()

	if w.GameStartNumber != 5 {
		t.Fatalf("expected the countdown to hold while a player is pending, got %d", w.GameStartNumber)
	}
}

func TestRecordPongComputesHalfPing(t *testing.T) {
	w := newServerWorld(t)
	ts := uint32(time.Now().UnixMilli()) - 20

	w.recordPong(0, ts)

	if w.Conn.Peers[0].HalfPing.Mean() <= 0 {
		t.Fatal("expected a positive half-ping estimate after a Pong round trip")
	}
}
