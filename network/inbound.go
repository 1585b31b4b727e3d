package network

import (
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/golang/snappy"

	"skycheckers/codec"
	"skycheckers/metrics"
)

// pollSocket drains every datagram currently sitting on the socket
// (non-blocking, via a zero-duration read deadline), decompresses and
// decodes it, and dispatches each contained message. Returns true if the
// worker must shut down (a client's server peer quit on it or rejected
// it); a local Quit is handled by drainAndSend instead.
func pollSocket(nc *NetworkConnection, readBuf []byte) bool {
	for {
		nc.Socket.SetReadDeadline(time.Now())
		n, addr, err := nc.Socket.ReadFrom(readBuf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return false
			}
			return false
		}

		decompressed, err := snappy.Decode(nil, readBuf[:n])
		if err != nil {
			metrics.IncDropped(metrics.DropReasonTruncated)
			continue
		}

		if stop := dispatchDatagram(nc, addr, decompressed); stop {
			return true
		}
	}
}

// dispatchDatagram decodes and handles every message packed into one
// datagram, stopping early (without decoding the remainder) on the first
// codec error.
func dispatchDatagram(nc *NetworkConnection, addr net.Addr, buf []byte) bool {
	for len(buf) > 0 {
		msg, n, err := codec.Decode(buf)
		if err != nil {
			reason := metrics.DropReasonTruncated
			if errors.Is(err, codec.ErrUnknownKind) {
				reason = metrics.DropReasonUnknownKind
			} else if errors.Is(err, codec.ErrInvalidEnum) {
				reason = metrics.DropReasonInvalidEnum
			}
			metrics.IncDropped(reason)
			return false
		}
		buf = buf[n:]
		metrics.MessagesReceived.Inc()

		if stop := handleInbound(nc, addr, msg); stop {
			return true
		}
	}
	return false
}

func handleInbound(nc *NetworkConnection, addr net.Addr, msg codec.Message) bool {
	slot, peer := identifyPeer(nc, addr)

	if peer == nil {
		if msg.Kind == codec.KindCanIPlay {
			handleUnknownCanIPlay(nc, addr, msg)
		} else {
			metrics.IncDropped(metrics.DropReasonUnknownKind)
		}
		return false
	}

	switch msg.Kind {
	case codec.KindAck:
		peer.Reliable.MarkAcked(msg.Seq)
		return false

	case codec.KindPong:
		peer.LastPongAt = time.Now()
		nc.Inbound.Push(taggedForPeer(msg, nc.Role, slot))
		return false

	case codec.KindQuit:
		return handleRemoteQuit(nc, slot, msg)

	case codec.KindServerRejection:
		nc.Inbound.Push(taggedForPeer(msg, nc.Role, slot))
		if nc.Role == RoleClient {
			// A rejected client quits immediately.
			nc.Inbound.Push(codec.Message{Kind: codec.KindQuit, PeerIndex: -1})
			return true
		}
		return false

	case codec.KindMovement:
		if peer.Reliable.AcceptRealtime(msg.Seq) {
			nc.Inbound.Push(taggedForPeer(msg, nc.Role, slot))
		} else {
			metrics.IncDropped(metrics.DropReasonDuplicateSeq)
		}
		return false

	default:
		if msg.Kind.Reliable() {
			deliver := peer.Reliable.AcceptReliable(msg.Seq)
			sendDirect(nc, addr, codec.Message{Kind: codec.KindAck, Seq: msg.Seq})
			if deliver {
				nc.Inbound.Push(taggedForPeer(msg, nc.Role, slot))
			} else {
				metrics.IncDropped(metrics.DropReasonDuplicateSeq)
			}
			return false
		}
		// Ping and any other unreliable kind: deliver as-is.
		nc.Inbound.Push(taggedForPeer(msg, nc.Role, slot))
		return false
	}
}

// identifyPeer resolves which PeerSlot a datagram came from. A server
// looks the address up among its three peer slots; a client only ever
// talks to the server.
func identifyPeer(nc *NetworkConnection, addr net.Addr) (slot int, peer *PeerSlot) {
	if nc.Role == RoleClient {
		return 0, nc.Server
	}
	s := nc.SlotByAddr(addr)
	if s < 0 {
		return -1, nil
	}
	return s, nc.Peers[s]
}

// taggedForPeer stamps PeerIndex so the simulation task knows which
// slot produced an inbound message (the wire itself carries no such
// field, per codec.Message's doc comment).
func taggedForPeer(msg codec.Message, role Role, slot int) codec.Message {
	if role == RoleServer {
		msg.PeerIndex = int8(slot)
	} else {
		msg.PeerIndex = -1 // the client has exactly one peer: the server
	}
	return msg
}

// handleRemoteQuit implements the two different meanings a wire Quit has
// depending on role. On the client, the server is the client's only
// peer, so its Quit ends
// the whole connection. On the server, one peer quitting only frees
// that slot; the rest of the match continues.
func handleRemoteQuit(nc *NetworkConnection, slot int, msg codec.Message) bool {
	if nc.Role == RoleClient {
		nc.Inbound.Push(codec.Message{Kind: codec.KindQuit, PeerIndex: -1})
		return true
	}

	nc.MarkDead(slot)
	peer := nc.Peers[slot]
	peer.HalfPing.Reset()
	peer.LastPongAt = time.Time{}
	metrics.ActivePeers.Set(float64(nc.ActiveSlotCount()))
	nc.Inbound.Push(codec.Message{Kind: codec.KindLaggedOut, PeerIndex: -1, CharacterID: uint8(slot)})
	slog.Info("peer quit", "session", nc.SessionID.String(), "slot", slot)
	return false
}
