package codec

import "testing"

func roundTrip(t *testing.T, msg Message) Message {
	t.Helper()
	buf := make([]byte, MaxMsgSize)
	n, err := Encode(buf, msg)
	if err != nil {
		t.Fatalf("encode %v: %v", msg.Kind, err)
	}
	got, consumed, err := Decode(buf[:n])
	if err != nil {
		t.Fatalf("decode %v: %v", msg.Kind, err)
	}
	if consumed != n {
		t.Fatalf("decode %v consumed %d, encode wrote %d", msg.Kind, consumed, n)
	}
	return got
}

func TestRoundTripReliableCanIPlay(t *testing.T) {
	in := Message{Kind: KindCanIPlay, Seq: 1, Version: ProtocolVersion, Name: "Kale"}
	out := roundTrip(t, in)
	if out.Seq != in.Seq || out.Version != in.Version || out.Name != in.Name {
		t.Fatalf("mismatch: got %+v want %+v", out, in)
	}
}

func TestRoundTripMovementRequest(t *testing.T) {
	in := Message{Kind: KindMovementRequest, Seq: 7, Direction: DirRight}
	out := roundTrip(t, in)
	if out.Direction != DirRight || out.Seq != 7 {
		t.Fatalf("mismatch: %+v", out)
	}
}

func TestRoundTripServerAcceptance(t *testing.T) {
	in := Message{Kind: KindServerAcceptance, Seq: 1, Slot: 1, Lives: 5}
	out := roundTrip(t, in)
	if out.Slot != 1 || out.Lives != 5 {
		t.Fatalf("mismatch: %+v", out)
	}
	// flags byte packs slot and lives: (slot=1)|(lives=5<<2) = 0x15
	buf := make([]byte, MaxMsgSize)
	n, _ := Encode(buf, in)
	if buf[n-1] != 0x15 {
		t.Fatalf("expected flags byte 0x15, got 0x%x", buf[n-1])
	}
}

func TestRoundTripMovement(t *testing.T) {
	in := Message{
		Kind: KindMovement, Seq: 42, CharacterID: 3,
		Direction: DirUp, PointingDirection: DirLeft, Dead: true,
		X: 5.5, Y: -3.25,
	}
	out := roundTrip(t, in)
	if out.CharacterID != 3 || out.Direction != DirUp || out.PointingDirection != DirLeft ||
		!out.Dead || out.X != 5.5 || out.Y != -3.25 || out.Seq != 42 {
		t.Fatalf("mismatch: %+v", out)
	}
}

func TestRoundTripTileFalling(t *testing.T) {
	in := Message{Kind: KindTileFalling, Seq: 3, TileIndex: 27, Dead: true}
	out := roundTrip(t, in)
	if out.TileIndex != 27 || !out.Dead {
		t.Fatalf("mismatch: %+v", out)
	}
}

func TestRoundTripAllReliableKinds(t *testing.T) {
	kinds := []Kind{
		KindCanIPlay, KindMovementRequest, KindFireRequest, KindServerAcceptance,
		KindNumberOfPlayersWaiting, KindNetName, KindStartGame, KindGameStartNumber,
		KindPlayerKilled, KindCharacterKills, KindColorTile, KindTileFalling,
		KindRecoverTile, KindNewGame, KindLaggedOut,
	}
	for _, k := range kinds {
		msg := Message{Kind: k, Seq: 99, CharacterID: 2, Name: "x", TileIndex: 10, Lives: 3, Kills: 4, Count: 2, Slot: 1}
		out := roundTrip(t, msg)
		if out.Kind != k {
			t.Fatalf("kind mismatch for %v", k)
		}
	}
}

func TestDecodeTruncatedDropsNotPanics(t *testing.T) {
	buf := []byte{byte(KindCanIPlay), 1, 0, 0} // seq truncated
	_, _, err := Decode(buf)
	if err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	buf := []byte{200}
	_, _, err := Decode(buf)
	if err != ErrUnknownKind {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestDecodeInvalidDirectionEnum(t *testing.T) {
	buf := make([]byte, MaxMsgSize)
	n, _ := Encode(buf, Message{Kind: KindMovementRequest, Seq: 1, Direction: DirRight})
	buf[n-1] = 9 // corrupt direction byte out of range
	_, _, err := Decode(buf[:n])
	if err != ErrInvalidEnum {
		t.Fatalf("expected ErrInvalidEnum, got %v", err)
	}
}

func TestMultipleMessagesPerDatagram(t *testing.T) {
	buf := make([]byte, PacketCap)
	n1, _ := Encode(buf, Message{Kind: KindPing, Seq: 1000})
	n2, _ := Encode(buf[n1:], Message{Kind: KindFireRequest, Seq: 1})
	total := n1 + n2

	_, c1, err := Decode(buf[:total])
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	_, c2, err := Decode(buf[c1:total])
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if c1 != n1 || c2 != n2 {
		t.Fatalf("consumed mismatch: c1=%d n1=%d c2=%d n2=%d", c1, n1, c2, n2)
	}
}
