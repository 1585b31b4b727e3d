// Package reliability implements the protocol's two wire channels: a
// reliable, ordered "trigger" channel built from a per-peer outgoing
// sequence counter plus a received-ack ring, and an unreliable
// "realtime" channel that is latest-wins by sequence number.
//
// There are no timers here: retransmission is "re-enqueue after send,
// drop on ack", so the effective retransmit period is simply however
// often the transport worker drains the outbound queue.
package reliability

import "sync"

// AckRingSize covers sustained loss combined with a burst of
// tile-recovery triggers firing in the same tick: sized up to 2048 so a
// live seq cannot fall off the ring before being acked in any realistic
// trigger-rate scenario.
const AckRingSize = 2048

// ackRing tracks which of the last AckRingSize sequence numbers a peer
// has acknowledged. Indexed by seq modulo the ring size; on wrap the
// oldest entry is silently overwritten.
type ackRing struct {
	mu    sync.Mutex
	acked [AckRingSize]bool
	slot  [AckRingSize]uint32 // the seq currently occupying each slot
}

func (r *ackRing) mark(seq uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := seq % AckRingSize
	r.acked[i] = true
	r.slot[i] = seq
}

func (r *ackRing) isAcked(seq uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := seq % AckRingSize
	return r.acked[i] && r.slot[i] == seq
}

// PeerState is the reliability bookkeeping for a single logical peer
// (one remote address). A server keeps one per connected slot; a client
// keeps exactly one, for the server.
type PeerState struct {
	mu sync.Mutex

	nextOutSeq uint32 // next reliable seq to assign, starts at 1
	outAcks    ackRing

	expectedIn      uint32 // next reliable seq the receiver will accept, starts at 1
	lastRealtimeSeq uint32 // freshest Movement seq accepted so far
}

// NewPeerState returns reliability state for a newly connected peer.
func NewPeerState() *PeerState {
	return &PeerState{nextOutSeq: 1, expectedIn: 1}
}

// NextOutSeq assigns and returns the next reliable sequence number for a
// message enqueued to this peer. Strictly increasing, never reused
// within the life of the PeerState.
func (p *PeerState) NextOutSeq() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	seq := p.nextOutSeq
	p.nextOutSeq++
	return seq
}

// MarkAcked records that the peer has acknowledged seq. Once marked, the
// transport worker stops re-enqueueing the corresponding outbound message.
func (p *PeerState) MarkAcked(seq uint32) {
	p.outAcks.mark(seq)
}

// IsAcked reports whether seq has been acknowledged by the peer.
func (p *PeerState) IsAcked(seq uint32) bool {
	return p.outAcks.isAcked(seq)
}

// AcceptReliable processes an inbound reliable message's sequence number.
// The caller must always send an Ack(seq) back, whatever the result;
// deliver reports whether this is the expected next message and
// should be handed to the simulation task. Everything else (a duplicate
// at or below the current expectation, or a gap above it) is acked but
// dropped, since there is no reordering buffer in this protocol.
func (p *PeerState) AcceptReliable(seq uint32) (deliver bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq == p.expectedIn {
		p.expectedIn++
		return true
	}
	return false
}

// AcceptRealtime applies the latest-wins rule for the unreliable channel:
// the snapshot is stored only if its seq is strictly newer than the last
// one accepted.
func (p *PeerState) AcceptRealtime(seq uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq > p.lastRealtimeSeq {
		p.lastRealtimeSeq = seq
		return true
	}
	return false
}
