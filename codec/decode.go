package codec

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrTruncated indicates the datagram ended mid-message. The caller must
// drop the remainder of the datagram silently, not tear down the
// connection.
var ErrTruncated = errors.New("codec: truncated message")

// ErrInvalidEnum indicates a decoded enum field (direction, tile index,
// character id, ...) fell outside its valid range.
var ErrInvalidEnum = errors.New("codec: invalid enum value")

type reader struct {
	buf []byte
	n   int
}

func (r *reader) remaining() int { return len(r.buf) - r.n }

func (r *reader) u8() (uint8, bool) {
	if r.remaining() < 1 {
		return 0, false
	}
	v := r.buf[r.n]
	r.n++
	return v, true
}

func (r *reader) u32() (uint32, bool) {
	if r.remaining() < 4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.buf[r.n:])
	r.n += 4
	return v, true
}

func (r *reader) f32() (float32, bool) {
	v, ok := r.u32()
	if !ok {
		return 0, false
	}
	return math.Float32frombits(v), true
}

func (r *reader) name() (string, bool) {
	if r.remaining() < NameBufLen {
		return "", false
	}
	nb := r.buf[r.n : r.n+NameBufLen]
	r.n += NameBufLen
	end := NameBufLen
	for i, b := range nb {
		if b == 0 {
			end = i
			break
		}
	}
	return string(nb[:end]), true
}

// Decode parses exactly one message from the front of buf and returns it
// along with the number of bytes consumed. On a codec error the caller
// must drop the rest of the datagram rather than close the connection.
func Decode(buf []byte) (Message, int, error) {
	r := &reader{buf: buf}

	tagByte, ok := r.u8()
	if !ok {
		return Message{}, 0, ErrTruncated
	}
	kind := Kind(tagByte)
	if kind < KindCanIPlay || kind > KindLaggedOut {
		return Message{}, 0, ErrUnknownKind
	}

	msg := Message{Kind: kind, PeerIndex: -1}

	if kind.Reliable() {
		seq, ok := r.u32()
		if !ok {
			return Message{}, 0, ErrTruncated
		}
		msg.Seq = seq
	}

	var err error
	switch kind {
	case KindCanIPlay:
		msg.Version, msg.Name, err = decodeCanIPlay(r)
	case KindMovementRequest:
		var d uint8
		if d, ok = r.u8(); !ok {
			err = ErrTruncated
			break
		}
		msg.Direction = Direction(d)
		if !msg.Direction.validMovement() {
			err = ErrInvalidEnum
		}
	case KindFireRequest, KindQuit, KindServerRejection, KindStartGame, KindNewGame:
		// no payload
	case KindAck:
		if msg.Seq, ok = r.u32(); !ok {
			err = ErrTruncated
		}
	case KindPing, KindPong:
		if msg.Seq, ok = r.u32(); !ok {
			err = ErrTruncated
		}
	case KindServerAcceptance:
		var flags uint8
		if flags, ok = r.u8(); !ok {
			err = ErrTruncated
			break
		}
		msg.Slot = flags & 0x3
		msg.Lives = (flags >> 2) & 0xF
	case KindNumberOfPlayersWaiting:
		if msg.Count, ok = r.u8(); !ok {
			err = ErrTruncated
		}
	case KindNetName:
		if msg.CharacterID, ok = r.u8(); !ok {
			err = ErrTruncated
			break
		}
		if msg.CharacterID < 1 || msg.CharacterID > 4 {
			err = ErrInvalidEnum
			break
		}
		if msg.Name, ok = r.name(); !ok {
			err = ErrTruncated
		}
	case KindGameStartNumber:
		if msg.Count, ok = r.u8(); !ok {
			err = ErrTruncated
		}
	case KindMovement:
		err = decodeMovement(r, &msg)
	case KindPlayerKilled:
		var flags uint8
		if flags, ok = r.u8(); !ok {
			err = ErrTruncated
			break
		}
		msg.CharacterID = (flags & 0x3) + 1
		msg.Lives = (flags >> 2) & 0xF
	case KindCharacterKills:
		var flags uint8
		if flags, ok = r.u8(); !ok {
			err = ErrTruncated
			break
		}
		msg.CharacterID = (flags & 0x3) + 1
		msg.Kills = (flags >> 2) & 0x1F
	case KindColorTile:
		var flags uint8
		if flags, ok = r.u8(); !ok {
			err = ErrTruncated
			break
		}
		msg.CharacterID = (flags & 0x3) + 1
		msg.TileIndex = (flags >> 2) & 0x3F
	case KindTileFalling:
		var flags uint8
		if flags, ok = r.u8(); !ok {
			err = ErrTruncated
			break
		}
		msg.Dead = flags&0x1 != 0
		msg.TileIndex = (flags >> 1) & 0x3F
	case KindRecoverTile:
		var ti uint8
		if ti, ok = r.u8(); !ok {
			err = ErrTruncated
			break
		}
		if ti > 63 {
			err = ErrInvalidEnum
			break
		}
		msg.TileIndex = ti
	case KindLaggedOut:
		var ci uint8
		if ci, ok = r.u8(); !ok {
			err = ErrTruncated
			break
		}
		if ci > 2 {
			err = ErrInvalidEnum
			break
		}
		msg.CharacterID = ci
	default:
		err = ErrUnknownKind
	}

	if err != nil {
		return Message{}, 0, err
	}

	return msg, r.n, nil
}

func decodeCanIPlay(r *reader) (uint8, string, error) {
	version, ok := r.u8()
	if !ok {
		return 0, "", ErrTruncated
	}
	name, ok := r.name()
	if !ok {
		return 0, "", ErrTruncated
	}
	return version, name, nil
}

func decodeMovement(r *reader, msg *Message) error {
	seq, ok := r.u32()
	if !ok {
		return ErrTruncated
	}
	msg.Seq = seq

	x, ok := r.f32()
	if !ok {
		return ErrTruncated
	}
	y, ok := r.f32()
	if !ok {
		return ErrTruncated
	}
	flags, ok := r.u8()
	if !ok {
		return ErrTruncated
	}

	msg.X, msg.Y = x, y
	msg.CharacterID = (flags & 0x3) + 1
	msg.Direction = Direction((flags >> 2) & 0x7)
	msg.PointingDirection = Direction((flags >> 5) & 0x3)
	msg.Dead = flags&0x80 != 0

	if !msg.Direction.validMovement() {
		return ErrInvalidEnum
	}
	// pointing direction is encoded 0..3 for Right..Down; add 1 to match
	// the Direction enum's Right=1 base.
	msg.PointingDirection++
	if !msg.PointingDirection.validPointing() {
		return ErrInvalidEnum
	}
	return nil
}
