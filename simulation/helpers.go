package simulation

import (
	"time"

	"skycheckers/network"
)

func nowMillis() int64 { return time.Now().UnixMilli() }

// peerSlotFor resolves the PeerSlot a tagged inbound message refers to:
// a server-side slot index for the server, or the lone server peer for
// a client (whose messages are always tagged PeerIndex -1).
func (w *World) peerSlotFor(slot int) *network.PeerSlot {
	if w.Conn == nil {
		return nil
	}
	if w.IsServer {
		if slot < 0 || slot >= network.MaxPeers {
			return nil
		}
		return w.Conn.Peers[slot]
	}
	return w.Conn.Server
}

// HalfPingMs returns the current half-ping estimate relevant to this
// world: for the server, the average across connected peers; for the
// client, its one server peer's estimate. Exported for the
// interpolation package's render-time formula.
func (w *World) HalfPingMs() float64 { return w.halfPingMs() }

func (w *World) halfPingMs() float64 {
	if w.Conn == nil {
		return 0
	}
	if !w.IsServer {
		return w.Conn.Server.HalfPing.Mean()
	}
	var sum float64
	n := 0
	for i, p := range w.Conn.Peers {
		if w.Conn.SlotState(i) == network.ClientAlive && w.Conn.PeerAddr(i) != nil {
			sum += p.HalfPing.Mean()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
