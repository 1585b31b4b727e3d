package simulation

import (
	"time"

	"skycheckers/codec"
	"skycheckers/network"
)

// pingInterval throttles Ping emission to 10Hz. A naive implementation
// would ping every tick (56/s per peer); rate-limiting it here keeps the
// wire format byte-compatible while cutting that traffic substantially.
const pingInterval = 100 * time.Millisecond

// emitPings sends a freshness Ping to every live peer, at most once per
// pingInterval. Both the host and a client run this: whichever side
// receives a Ping replies with Pong echoing the same timestamp, and the
// receiver of that Pong is the one who actually learns its half-ping.
func (w *World) emitPings() {
	if w.Conn == nil {
		return
	}
	now := time.Now()
	if !w.lastPingAt.IsZero() && now.Sub(w.lastPingAt) < pingInterval {
		return
	}
	w.lastPingAt = now
	ms := uint32(now.UnixMilli())

	if w.IsServer {
		for i, p := range w.Conn.Peers {
			if p != nil && p.State == network.ClientAlive {
				w.Conn.Outbound.Push(codec.Message{Kind: codec.KindPing, PeerIndex: int8(i), Seq: ms})
			}
		}
		return
	}
	w.Conn.Outbound.Push(codec.Message{Kind: codec.KindPing, PeerIndex: -1, Seq: ms})
}
