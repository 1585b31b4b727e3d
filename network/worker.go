package network

import (
	"log/slog"
	"net"
	"time"

	"github.com/golang/snappy"

	"skycheckers/board"
	"skycheckers/codec"
	"skycheckers/metrics"
)

// RunWorker is the transport worker's main loop: one long-running task
// per connection role, owning the socket for its whole lifetime. It
// drains the outbound queue, coalesces and encodes into
// per-destination packets, reads the socket with a short non-blocking
// poll, decodes incoming messages, and writes inbound game-events to the
// shared queue. Call it in its own goroutine; it returns (closing
// nc.Done) once it has torn down the connection.
func RunWorker(nc *NetworkConnection) {
	defer close(nc.Done)
	defer nc.Socket.Close()

	slog.Info("transport worker started", "session", nc.SessionID.String(), "role", nc.Role)

	readBuf := make([]byte, codec.PacketCap*2)

	for {
		t0 := time.Now()

		if localQuit := drainAndSend(nc); localQuit {
			slog.Info("transport worker shutting down on local quit", "session", nc.SessionID.String())
			nc.Inbound.Push(codec.Message{Kind: codec.KindQuit, PeerIndex: -1})
			return
		}

		if quit := checkLiveness(nc); quit {
			slog.Info("transport worker self-terminating on liveness timeout", "session", nc.SessionID.String())
			nc.Inbound.Push(codec.Message{Kind: codec.KindQuit, PeerIndex: -1})
			return
		}

		stop := pollSocket(nc, readBuf)
		if stop {
			slog.Info("transport worker shutting down on inbound quit", "session", nc.SessionID.String())
			return
		}

		elapsed := time.Since(t0)
		if elapsed < board.WorkerTick {
			time.Sleep(board.WorkerTick - elapsed)
		}
	}
}

// drainAndSend drains the outbound queue, coalesces it, assigns/tracks
// reliable sequence numbers, encodes, and flushes. Returns true if a
// local Quit (PeerIndex -1) was among the drained messages: that Quit is
// sent once and the worker then tears itself down rather than looping
// again.
func drainAndSend(nc *NetworkConnection) bool {
	outbound := nc.Outbound.DrainAll()
	if len(outbound) == 0 {
		return false
	}

	localQuit := false
	for _, m := range outbound {
		if m.Kind == codec.KindQuit && m.PeerIndex == -1 {
			localQuit = true
		}
	}

	outbound = coalesceMovement(outbound)
	outbound = coalescePing(outbound)

	buffers := map[int]*sendBuffer{}
	getBuf := func(dest int) *sendBuffer {
		b, ok := buffers[dest]
		if !ok {
			b = &sendBuffer{buf: make([]byte, codec.PacketCap+codec.MaxMsgSize)}
			buffers[dest] = b
		}
		return b
	}

	for _, msg := range outbound {
		for _, dest := range destinations(nc, msg.PeerIndex) {
			peer := peerForDest(nc, dest)
			if peer == nil {
				continue
			}

			toSend := msg
			if msg.Kind.Reliable() {
				if msg.Seq == 0 {
					toSend.Seq = peer.Reliable.NextOutSeq()
					retry := toSend
					retry.PeerIndex = int8(dest)
					nc.Outbound.Push(retry) // re-enqueue a copy bound to this one destination's seq
				} else if peer.Reliable.IsAcked(msg.Seq) {
					continue // already acked, stop retransmitting
				} else {
					metrics.Retransmits.Inc()
					// still unacked: resend, and keep it alive for next cycle
					nc.Outbound.Push(msg)
				}
			}

			b := getBuf(dest)
			n, err := codec.Encode(b.buf[b.n:], toSend)
			if err != nil {
				slog.Debug("encode failed, dropping message", "kind", toSend.Kind, "err", err)
				continue
			}
			b.n += n
			metrics.MessagesSent.Inc()

			if b.n >= codec.PacketCap-codec.MaxMsgSize {
				flushBuffer(nc, dest, b)
			}
		}
	}

	for dest, b := range buffers {
		if b.n > 0 {
			flushBuffer(nc, dest, b)
		}
	}

	return localQuit
}

type sendBuffer struct {
	buf []byte
	n   int
}

// destinations expands a message's PeerIndex into concrete slot indices:
// -1 means broadcast to every connected slot (server only); a client
// only ever has one destination, the server.
func destinations(nc *NetworkConnection, peerIndex int8) []int {
	if nc.Role == RoleClient {
		return []int{0}
	}
	if peerIndex >= 0 {
		return []int{int(peerIndex)}
	}
	dests := make([]int, 0, MaxPeers)
	for i := 0; i < MaxPeers; i++ {
		if nc.SlotState(i) == ClientAlive && nc.PeerAddr(i) != nil {
			dests = append(dests, i)
		}
	}
	return dests
}

func peerForDest(nc *NetworkConnection, dest int) *PeerSlot {
	if nc.Role == RoleClient {
		return nc.Server
	}
	return nc.Peers[dest]
}

func destAddr(nc *NetworkConnection, dest int) net.Addr {
	if nc.Role == RoleClient {
		return nc.ServerAddr
	}
	return nc.PeerAddr(dest)
}

func flushBuffer(nc *NetworkConnection, dest int, b *sendBuffer) {
	addr := destAddr(nc, dest)
	if addr == nil {
		b.n = 0
		return
	}
	compressed := snappy.Encode(nil, b.buf[:b.n])
	if _, err := nc.Socket.WriteTo(compressed, addr); err != nil {
		slog.Debug("send failed", "dest", dest, "err", err)
	}
	b.n = 0
}

// coalesceMovement keeps only the newest CharacterMovedUpdate (Movement)
// per (destination, character) within one outbound batch.
func coalesceMovement(in []codec.Message) []codec.Message {
	type key struct {
		peer int8
		char uint8
	}
	latest := map[key]codec.Message{}
	order := []key{}
	out := make([]codec.Message, 0, len(in))
	for _, m := range in {
		if m.Kind != codec.KindMovement {
			out = append(out, m)
			continue
		}
		k := key{m.PeerIndex, m.CharacterID}
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = m
	}
	for _, k := range order {
		out = append(out, latest[k])
	}
	return out
}

// coalescePing keeps only the newest Ping per destination.
func coalescePing(in []codec.Message) []codec.Message {
	latest := map[int8]codec.Message{}
	order := []int8{}
	out := make([]codec.Message, 0, len(in))
	for _, m := range in {
		if m.Kind != codec.KindPing {
			out = append(out, m)
			continue
		}
		if _, seen := latest[m.PeerIndex]; !seen {
			order = append(order, m.PeerIndex)
		}
		latest[m.PeerIndex] = m
	}
	for _, p := range order {
		out = append(out, latest[p])
	}
	return out
}

// checkLiveness runs the peer liveness-timeout check. Returns true if the
// whole connection (client role only) must self-terminate.
func checkLiveness(nc *NetworkConnection) bool {
	now := time.Now()
	if nc.Role == RoleClient {
		if nc.Server.LastPongAt.IsZero() {
			return false // never connected long enough to expect one yet
		}
		return now.Sub(nc.Server.LastPongAt) >= board.LivenessTimeout
	}

	for i := 0; i < MaxPeers; i++ {
		if nc.SlotState(i) != ClientAlive {
			continue
		}
		peer := nc.Peers[i]
		if peer.LastPongAt.IsZero() {
			continue
		}
		if now.Sub(peer.LastPongAt) >= board.LivenessTimeout {
			nc.MarkDead(i)
			peer.HalfPing.Reset()
			peer.LastPongAt = time.Time{}
			metrics.LaggedOutTotal.Inc()
			nc.Inbound.Push(codec.Message{Kind: codec.KindLaggedOut, PeerIndex: -1, CharacterID: uint8(i)})
		}
	}
	return false
}
