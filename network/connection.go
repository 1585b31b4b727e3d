package network

import (
	"net"
	"sync"
	"time"

	"github.com/rs/xid"

	"skycheckers/reliability"
)

// Role distinguishes which side of the connection this process is.
type Role uint8

const (
	RoleServer Role = iota
	RoleClient
)

// ClientState is the server's view of a peer slot's health.
type ClientState uint8

const (
	ClientAlive ClientState = iota
	ClientDead
)

// MaxPeers is the number of remote peer slots a server tracks: three
// remote peers plus the server's own locally-controlled character makes
// four players.
const MaxPeers = 3

// halfPingRing is a 10-entry moving average of half-ping samples. Owned
// exclusively by the simulation task once a Pong is
// delivered to it; the transport worker never reads or writes it.
type halfPingRing struct {
	samples [10]float64
	count   int
	next    int
}

// Record adds a new half-ping sample (milliseconds).
func (r *halfPingRing) Record(halfMs float64) {
	r.samples[r.next] = halfMs
	r.next = (r.next + 1) % len(r.samples)
	if r.count < len(r.samples) {
		r.count++
	}
}

// Mean returns the average of the non-zero recorded samples, or 0 if
// none have been recorded yet.
func (r *halfPingRing) Mean() float64 {
	if r.count == 0 {
		return 0
	}
	var sum float64
	n := 0
	for i := 0; i < r.count; i++ {
		if r.samples[i] != 0 {
			sum += r.samples[i]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Reset clears all recorded samples (e.g. on liveness timeout).
func (r *halfPingRing) Reset() { *r = halfPingRing{} }

// PeerSlot is the per-peer state for one remote connection. Reliability
// counters/rings and LastPongAt are touched only by the transport
// worker; HalfPing is touched only by the simulation task; Addr, Name
// and State are the shared "topology" fields guarded by
// NetworkConnection.topologyMu.
type PeerSlot struct {
	Reliable *reliability.PeerState

	Addr  net.Addr // guarded by topologyMu
	Name  string   // guarded by topologyMu
	State ClientState // guarded by topologyMu

	HalfPing halfPingRing // simulation-task only

	LastPongAt time.Time // transport-task only
}

func newPeerSlot() *PeerSlot {
	return &PeerSlot{Reliable: reliability.NewPeerState(), State: ClientAlive}
}

// NetworkConnection is the shared object the transport worker and the
// simulation task both hold a reference to. The only contended field
// group is topology (CurrentSlot, Peers[*].Addr/Name/State); everything
// else is exclusively owned by one side.
type NetworkConnection struct {
	Role Role

	SessionID xid.ID // correlates this connection's log lines end to end

	Inbound  MessageQueue
	Outbound MessageQueue

	topologyMu sync.Mutex

	// Server-only.
	Peers          [MaxPeers]*PeerSlot
	CurrentSlot    int // 0..3, next free slot count
	CharacterLives int // configured at game start, broadcast to joiners

	// Client-only.
	Server        *PeerSlot
	ServerAddr    net.Addr
	ControlledID  uint8 // this client's own character id, 1..4
	ConfiguredLives int

	Socket Socket
	Done   chan struct{} // closed once the worker has fully torn down
}

// NewServerConnection allocates connection state for a freshly bound
// server socket.
func NewServerConnection(sock Socket, lives int) *NetworkConnection {
	nc := &NetworkConnection{
		Role:           RoleServer,
		SessionID:      xid.New(),
		CharacterLives: lives,
		Socket:         sock,
		Done:           make(chan struct{}),
	}
	for i := range nc.Peers {
		nc.Peers[i] = newPeerSlot()
	}
	return nc
}

// NewClientConnection allocates connection state for a client dialing a
// server.
func NewClientConnection(sock Socket, serverAddr net.Addr) *NetworkConnection {
	return &NetworkConnection{
		Role:       RoleClient,
		SessionID:  xid.New(),
		Server:     newPeerSlot(),
		ServerAddr: serverAddr,
		Socket:     sock,
		Done:       make(chan struct{}),
	}
}

// AssignSlot atomically allocates the next free server-side slot for a
// newly accepted peer, recording its address. Returns -1 if all three
// slots are taken. This is the one place a peer is added to the
// connection topology; MarkDead is the one place one is removed.
func (nc *NetworkConnection) AssignSlot(addr net.Addr, name string) int {
	nc.topologyMu.Lock()
	defer nc.topologyMu.Unlock()

	if nc.CurrentSlot >= MaxPeers {
		return -1
	}
	slot := nc.CurrentSlot
	nc.CurrentSlot++
	nc.Peers[slot].Addr = addr
	nc.Peers[slot].Name = name
	nc.Peers[slot].State = ClientAlive
	return slot
}

// PeerAddr returns the current address for a slot, or nil if unset.
func (nc *NetworkConnection) PeerAddr(slot int) net.Addr {
	nc.topologyMu.Lock()
	defer nc.topologyMu.Unlock()
	return nc.Peers[slot].Addr
}

// MarkDead clears a peer's address and flags it dead. Idempotent.
func (nc *NetworkConnection) MarkDead(slot int) {
	nc.topologyMu.Lock()
	defer nc.topologyMu.Unlock()
	nc.Peers[slot].State = ClientDead
	nc.Peers[slot].Addr = nil
}

// SlotState returns the current liveness state of a server-side slot.
func (nc *NetworkConnection) SlotState(slot int) ClientState {
	nc.topologyMu.Lock()
	defer nc.topologyMu.Unlock()
	return nc.Peers[slot].State
}

// SlotByAddr finds the peer slot whose current address matches addr, or
// -1 if none does.
func (nc *NetworkConnection) SlotByAddr(addr net.Addr) int {
	nc.topologyMu.Lock()
	defer nc.topologyMu.Unlock()
	for i, p := range nc.Peers {
		if p.Addr != nil && p.Addr.String() == addr.String() {
			return i
		}
	}
	return -1
}

// ActiveSlotCount reports how many server-side slots are currently alive.
func (nc *NetworkConnection) ActiveSlotCount() int {
	nc.topologyMu.Lock()
	defer nc.topologyMu.Unlock()
	n := 0
	for _, p := range nc.Peers {
		if p.State == ClientAlive && p.Addr != nil {
			n++
		}
	}
	return n
}
