package network

import (
	"testing"

	"github.com/golang/snappy"

	"skycheckers/codec"
)

func encodeDatagram(t *testing.T, msgs ...codec.Message) []byte {
	t.Helper()
	buf := make([]byte, 0, codec.PacketCap)
	scratch := make([]byte, codec.MaxMsgSize)
	for _, m := range msgs {
		n, err := codec.Encode(scratch, m)
		if err != nil {
			t.Fatalf("encode %v: %v", m.Kind, err)
		}
		buf = append(buf, scratch[:n]...)
	}
	return snappy.Encode(nil, buf)
}

func newTestServer() (*NetworkConnection, *fakeSocket) {
	sock := &fakeSocket{}
	nc := NewServerConnection(sock, 5)
	return nc, sock
}

func TestCanIPlayAcceptsNewPeerAndAcks(t *testing.T) {
	nc, sock := newTestServer()
	addr := fakeAddr("client-1")
	sock.deliver(encodeDatagram(t, codec.Message{Kind: codec.KindCanIPlay, Seq: 1, Version: codec.ProtocolVersion, Name: "alice"}), addr)

	readBuf := make([]byte, codec.PacketCap*2)
	stop := pollSocket(nc, readBuf)
	if stop {
		t.Fatal("pollSocket reported stop on a normal CanIPlay")
	}

	if got := nc.ActiveSlotCount(); got != 1 {
		t.Fatalf("ActiveSlotCount = %d, want 1", got)
	}

	pending := nc.Inbound.DrainAll()
	if len(pending) != 1 || pending[0].Kind != codec.KindFirstClientResponse {
		t.Fatalf("inbound = %+v, want one FirstClientResponse", pending)
	}
	if pending[0].Slot != 0 || pending[0].CharacterID != 2 || pending[0].Name != "alice" {
		t.Fatalf("FirstClientResponse = %+v, want slot 0 / character 2 / alice", pending[0])
	}

	if len(sock.sent) != 1 {
		t.Fatalf("sent %d datagrams, want 1 ack", len(sock.sent))
	}
	ack, _, err := codec.Decode(snappyMustDecode(t, sock.sent[0].buf))
	if err != nil || ack.Kind != codec.KindAck || ack.Seq != 1 {
		t.Fatalf("expected Ack(seq=1), got %+v err=%v", ack, err)
	}
}

func TestDuplicateCanIPlayIsAckedNotRedelivered(t *testing.T) {
	nc, sock := newTestServer()
	addr := fakeAddr("client-1")
	datagram := encodeDatagram(t, codec.Message{Kind: codec.KindCanIPlay, Seq: 1, Version: codec.ProtocolVersion, Name: "alice"})

	readBuf := make([]byte, codec.PacketCap*2)
	sock.deliver(datagram, addr)
	pollSocket(nc, readBuf)
	nc.Inbound.DrainAll()

	sock.deliver(datagram, addr)
	pollSocket(nc, readBuf)

	pending := nc.Inbound.DrainAll()
	if len(pending) != 0 {
		t.Fatalf("duplicate CanIPlay redelivered: %+v", pending)
	}
	if len(sock.sent) != 2 {
		t.Fatalf("sent %d datagrams, want 2 acks (one per CanIPlay)", len(sock.sent))
	}
}

func TestVersionMismatchIsRejectedNotAssigned(t *testing.T) {
	nc, sock := newTestServer()
	addr := fakeAddr("client-1")
	sock.deliver(encodeDatagram(t, codec.Message{Kind: codec.KindCanIPlay, Seq: 1, Version: codec.ProtocolVersion + 1, Name: "bob"}), addr)

	readBuf := make([]byte, codec.PacketCap*2)
	pollSocket(nc, readBuf)

	if got := nc.ActiveSlotCount(); got != 0 {
		t.Fatalf("ActiveSlotCount = %d, want 0 after version mismatch", got)
	}
	if len(sock.sent) != 1 {
		t.Fatalf("sent %d datagrams, want 1 rejection", len(sock.sent))
	}
	rej, _, err := codec.Decode(snappyMustDecode(t, sock.sent[0].buf))
	if err != nil || rej.Kind != codec.KindServerRejection {
		t.Fatalf("expected ServerRejection, got %+v err=%v", rej, err)
	}
}

func TestMovementRealtimeFreshnessDropsStaleSeq(t *testing.T) {
	nc, sock := newTestServer()
	addr := fakeAddr("client-1")
	readBuf := make([]byte, codec.PacketCap*2)

	sock.deliver(encodeDatagram(t, codec.Message{Kind: codec.KindCanIPlay, Seq: 1, Version: codec.ProtocolVersion, Name: "alice"}), addr)
	pollSocket(nc, readBuf)
	nc.Inbound.DrainAll()

	sock.deliver(encodeDatagram(t, codec.Message{Kind: codec.KindMovement, Seq: 5, CharacterID: 2, X: 1, Y: 1}), addr)
	pollSocket(nc, readBuf)
	sock.deliver(encodeDatagram(t, codec.Message{Kind: codec.KindMovement, Seq: 3, CharacterID: 2, X: 2, Y: 2}), addr)
	pollSocket(nc, readBuf)
	sock.deliver(encodeDatagram(t, codec.Message{Kind: codec.KindMovement, Seq: 9, CharacterID: 2, X: 3, Y: 3}), addr)
	pollSocket(nc, readBuf)

	pending := nc.Inbound.DrainAll()
	if len(pending) != 2 {
		t.Fatalf("delivered %d movements, want 2 (seq 5 then seq 9, seq 3 stale)", len(pending))
	}
	if pending[0].Seq != 5 || pending[1].Seq != 9 {
		t.Fatalf("delivered seqs = %d, %d; want 5, 9", pending[0].Seq, pending[1].Seq)
	}
}

func TestRemoteQuitFreesSlotWithoutKillingServerWorker(t *testing.T) {
	nc, sock := newTestServer()
	addr := fakeAddr("client-1")
	readBuf := make([]byte, codec.PacketCap*2)

	sock.deliver(encodeDatagram(t, codec.Message{Kind: codec.KindCanIPlay, Seq: 1, Version: codec.ProtocolVersion, Name: "alice"}), addr)
	pollSocket(nc, readBuf)
	nc.Inbound.DrainAll()

	sock.deliver(encodeDatagram(t, codec.Message{Kind: codec.KindQuit}), addr)
	stop := pollSocket(nc, readBuf)
	if stop {
		t.Fatal("a single peer quitting should not stop the server worker")
	}
	if nc.SlotState(0) != ClientDead {
		t.Fatalf("slot 0 state = %v, want ClientDead", nc.SlotState(0))
	}

	pending := nc.Inbound.DrainAll()
	if len(pending) != 1 || pending[0].Kind != codec.KindLaggedOut {
		t.Fatalf("inbound = %+v, want one LaggedOut", pending)
	}
}

func TestDrainAndSendCoalescesMovementPerCharacter(t *testing.T) {
	nc, sock := newTestServer()
	addr := fakeAddr("client-1")
	nc.AssignSlot(addr, "alice")

	nc.Outbound.Push(codec.Message{Kind: codec.KindMovement, PeerIndex: 0, CharacterID: 2, X: 1, Y: 1})
	nc.Outbound.Push(codec.Message{Kind: codec.KindMovement, PeerIndex: 0, CharacterID: 2, X: 9, Y: 9})

	if quit := drainAndSend(nc); quit {
		t.Fatal("drainAndSend reported quit with no Quit message enqueued")
	}
	if len(sock.sent) != 1 {
		t.Fatalf("sent %d datagrams, want 1", len(sock.sent))
	}
	msg, _, err := codec.Decode(snappyMustDecode(t, sock.sent[0].buf))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.X != 9 || msg.Y != 9 {
		t.Fatalf("coalesced movement = %+v, want the newest (9,9)", msg)
	}
}

func TestDrainAndSendReportsLocalQuit(t *testing.T) {
	nc, _ := newTestServer()
	addr := fakeAddr("client-1")
	nc.AssignSlot(addr, "alice")

	nc.Outbound.Push(codec.Message{Kind: codec.KindQuit, PeerIndex: -1})

	if quit := drainAndSend(nc); !quit {
		t.Fatal("drainAndSend should report quit when a broadcast Quit was drained")
	}
}

func snappyMustDecode(t *testing.T, buf []byte) []byte {
	t.Helper()
	out, err := snappy.Decode(nil, buf)
	if err != nil {
		t.Fatalf("snappy decode: %v", err)
	}
	return out
}
