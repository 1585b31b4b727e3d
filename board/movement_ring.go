package board

import "skycheckers/codec"

// MovementRingCapacity is the fixed size of each player's client-side
// snapshot ring buffer.
const MovementRingCapacity = 20

// CharacterMovement is one authoritative snapshot of a character's
// position and facing at a given tick, used by the client to interpolate
// rendering.
type CharacterMovement struct {
	X, Y              float32
	Direction         codec.Direction
	PointingDirection codec.Direction
	Dead              bool
	TickMs            int64
}

// MovementRing is an append-only ring buffer of CharacterMovement
// entries; once full, the oldest entry is overwritten.
type MovementRing struct {
	entries [MovementRingCapacity]CharacterMovement
	count   int // number of valid entries, caps at capacity
	next    int // index the next Push will write to
}

// Push appends a snapshot, overwriting the oldest entry once the ring is
// full.
func (r *MovementRing) Push(m CharacterMovement) {
	r.entries[r.next] = m
	r.next = (r.next + 1) % MovementRingCapacity
	if r.count < MovementRingCapacity {
		r.count++
	}
}

// Len returns the number of valid entries currently stored.
func (r *MovementRing) Len() int { return r.count }

// At returns the i-th oldest valid entry (0 is oldest, Len()-1 newest).
func (r *MovementRing) At(i int) CharacterMovement {
	start := r.next - r.count
	if start < 0 {
		start += MovementRingCapacity
	}
	idx := (start + i) % MovementRingCapacity
	return r.entries[idx]
}

// Newest returns the most recently pushed entry.
func (r *MovementRing) Newest() (CharacterMovement, bool) {
	if r.count == 0 {
		return CharacterMovement{}, false
	}
	return r.At(r.count - 1), true
}

// FindBracket walks the ring back-to-front looking for the newest entry
// with TickMs <= renderTimeMs (prev) and its immediate successor (next).
// Returns ok=false if renderTimeMs is older than every stored entry or
// there is no successor yet.
func (r *MovementRing) FindBracket(renderTimeMs int64) (prev, next CharacterMovement, ok bool) {
	if r.count < 2 {
		return CharacterMovement{}, CharacterMovement{}, false
	}
	for i := r.count - 1; i >= 0; i-- {
		candidate := r.At(i)
		if candidate.TickMs <= renderTimeMs {
			if i == r.count-1 {
				break // newest entry: no successor yet
			}
			return candidate, r.At(i + 1), true
		}
	}
	return CharacterMovement{}, CharacterMovement{}, false
}
