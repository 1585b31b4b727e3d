package codec

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned when the caller's buffer cannot hold the
// encoded message.
var ErrShortBuffer = errors.New("codec: short buffer")

// ErrUnknownKind is returned by Encode/Decode for an out-of-range Kind.
var ErrUnknownKind = errors.New("codec: unknown message kind")

type writer struct {
	buf []byte
	n   int
}

func (w *writer) need(extra int) bool { return w.n+extra <= len(w.buf) }

func (w *writer) u8(v uint8) bool {
	if !w.need(1) {
		return false
	}
	w.buf[w.n] = v
	w.n++
	return true
}

func (w *writer) u32(v uint32) bool {
	if !w.need(4) {
		return false
	}
	binary.LittleEndian.PutUint32(w.buf[w.n:], v)
	w.n += 4
	return true
}

func (w *writer) f32(v float32) bool {
	return w.u32(math.Float32bits(v))
}

func (w *writer) name(s string) bool {
	if !w.need(NameBufLen) {
		return false
	}
	nb := w.buf[w.n : w.n+NameBufLen]
	for i := range nb {
		nb[i] = 0
	}
	copy(nb, s[:min(len(s), NameBufLen-1)])
	w.n += NameBufLen
	return true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Encode writes msg into buf and returns the number of bytes written.
// The transport worker assigns a reliable kind's Seq when it first
// drains the message; Encode merely serializes whatever Seq the caller
// already set.
func Encode(buf []byte, msg Message) (int, error) {
	w := &writer{buf: buf}

	if !w.u8(uint8(msg.Kind)) {
		return 0, ErrShortBuffer
	}

	if msg.Kind.Reliable() {
		if !w.u32(msg.Seq) {
			return 0, ErrShortBuffer
		}
	}

	ok := true
	switch msg.Kind {
	case KindCanIPlay:
		ok = w.u8(msg.Version) && w.name(msg.Name)
	case KindMovementRequest:
		ok = w.u8(uint8(msg.Direction))
	case KindFireRequest:
		// no payload
	case KindAck:
		ok = w.u32(msg.Seq)
	case KindPing, KindPong:
		ok = w.u32(msg.Seq)
	case KindQuit:
		// no payload
	case KindServerRejection:
		// no payload
	case KindServerAcceptance:
		flags := (msg.Slot & 0x3) | (msg.Lives&0xF)<<2
		ok = w.u8(flags)
	case KindNumberOfPlayersWaiting:
		ok = w.u8(msg.Count)
	case KindNetName:
		ok = w.u8(msg.CharacterID) && w.name(msg.Name)
	case KindStartGame:
		// no payload
	case KindGameStartNumber:
		ok = w.u8(msg.Count)
	case KindMovement:
		cid := msg.CharacterID - 1
		var dead uint8
		if msg.Dead {
			dead = 1
		}
		pdir := uint8(msg.PointingDirection) - 1 // wire encodes pdir 0..3 for Right..Down
		flags := (cid & 0x3) | (uint8(msg.Direction)&0x7)<<2 | (pdir&0x3)<<5 | dead<<7
		// Movement is unreliable but still carries its own realtime
		// freshness stamp in Seq, separate from the reliable-channel seq
		// written above (which Movement never takes, since it isn't in
		// Kind.Reliable()).
		ok = w.u32(msg.Seq) && w.f32(msg.X) && w.f32(msg.Y) && w.u8(flags)
	case KindPlayerKilled:
		cid := msg.CharacterID - 1
		flags := (cid & 0x3) | (msg.Lives&0xF)<<2
		ok = w.u8(flags)
	case KindCharacterKills:
		cid := msg.CharacterID - 1
		flags := (cid & 0x3) | (msg.Kills&0x1F)<<2
		ok = w.u8(flags)
	case KindColorTile:
		cid := msg.CharacterID - 1
		flags := (cid & 0x3) | (msg.TileIndex&0x3F)<<2
		ok = w.u8(flags)
	case KindTileFalling:
		var dead uint8
		if msg.Dead {
			dead = 1
		}
		flags := dead | (msg.TileIndex&0x3F)<<1
		ok = w.u8(flags)
	case KindRecoverTile:
		ok = w.u8(msg.TileIndex)
	case KindNewGame:
		// no payload
	case KindLaggedOut:
		ok = w.u8(msg.CharacterID)
	default:
		return 0, ErrUnknownKind
	}

	if !ok {
		return 0, ErrShortBuffer
	}

	return w.n, nil
}
