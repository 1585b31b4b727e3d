package network

import (
	"log/slog"
	"net"

	"github.com/golang/snappy"

	"skycheckers/codec"
	"skycheckers/metrics"
)

// handleUnknownCanIPlay is the one place the worker adds a peer to the
// connection topology: a CanIPlay from an address with no existing slot either gets
// a fresh slot (and a synthetic FirstClientResponse to the simulation
// task) or a ServerRejection, decided entirely inside the transport
// worker without involving the simulation task.
func handleUnknownCanIPlay(nc *NetworkConnection, addr net.Addr, msg codec.Message) {
	if msg.Version != codec.ProtocolVersion {
		sendDirect(nc, addr, codec.Message{Kind: codec.KindServerRejection, PeerIndex: -1})
		slog.Info("rejected CanIPlay: version mismatch", "addr", addr, "version", msg.Version)
		return
	}

	slot := nc.AssignSlot(addr, msg.Name)
	if slot < 0 {
		sendDirect(nc, addr, codec.Message{Kind: codec.KindServerRejection, PeerIndex: -1})
		slog.Info("rejected CanIPlay: no free slot", "addr", addr)
		return
	}

	peer := nc.Peers[slot]
	// expected_next[slot] = 1 is the PeerState's starting invariant
	// (reliability.NewPeerState starts expectedIn at 1); the incoming
	// CanIPlay carries seq=1, so accepting it here also advances
	// expectedIn to 2 exactly as the generic reliable-accept path would.
	peer.Reliable.AcceptReliable(msg.Seq)
	sendDirect(nc, addr, codec.Message{Kind: codec.KindAck, Seq: msg.Seq})

	metrics.ActivePeers.Set(float64(nc.ActiveSlotCount()))

	nc.Inbound.Push(codec.Message{
		Kind:        codec.KindFirstClientResponse,
		PeerIndex:   int8(slot),
		Slot:        uint8(slot), // zero-indexed; the simulation derives the wire-facing 1-based slot
		Name:        msg.Name,
		CharacterID: uint8(slot) + 2,
	})

	slog.Info("peer accepted", "session", nc.SessionID.String(), "slot", slot, "name", msg.Name)
}

// sendDirect encodes and sends a single message immediately, bypassing
// the outbound queue's coalescing/retransmit bookkeeping. Used only for
// the handful of replies the worker itself originates (Ack, CanIPlay
// rejection) rather than ones routed through simulation. Still
// snappy-compressed like every other datagram on the wire, so the
// receiving side's pollSocket can decompress it uniformly.
func sendDirect(nc *NetworkConnection, addr net.Addr, msg codec.Message) {
	buf := make([]byte, codec.MaxMsgSize)
	n, err := codec.Encode(buf, msg)
	if err != nil {
		return
	}
	nc.Socket.WriteTo(snappy.Encode(nil, buf[:n]), addr)
}
