package zkteco

import (
	"encoding/binary"
	"fmt"
	"time"
)

// packetHeader is the 8-byte header that precedes every command request
// and response payload (spec.md §4.1.1): command/ack id, checksum,
// session id, reply id, all little-endian.
type packetHeader struct {
	Command   uint16
	Checksum  uint16
	SessionID uint16
	ReplyID   uint16
}

// decodeHeader parses an 8-byte (or longer) buffer into a header plus its
// trailing payload.
func decodeHeader(buf []byte) (packetHeader, []byte, error) {
	if len(buf) < 8 {
		return packetHeader{}, nil, fmt.Errorf("packet too short: %d bytes", len(buf))
	}
	h := packetHeader{
		Command:   binary.LittleEndian.Uint16(buf[0:2]),
		Checksum:  binary.LittleEndian.Uint16(buf[2:4]),
		SessionID: binary.LittleEndian.Uint16(buf[4:6]),
		ReplyID:   binary.LittleEndian.Uint16(buf[6:8]),
	}
	return h, buf[8:], nil
}

// encodePacket builds a full header+payload buffer for the given command,
// session and *local* reply-id counter, returning the wire bytes and the
// next local reply-id.
//
// The wire reply-id is the local counter plus one, and the checksum is
// computed over the buffer *after* that incremented value has been
// written — writing the local counter first and patching it in afterwards
// would checksum the wrong bytes (spec.md §4.1.2, §9).
func encodePacket(command uint16, sessionID, localReplyID uint16, payload []byte) ([]byte, uint16) {
	buf := make([]byte, 8+len(payload))

	nextReplyID := localReplyID + 1
	if nextReplyID >= ushortMax {
		nextReplyID -= ushortMax
	}

	binary.LittleEndian.PutUint16(buf[0:2], command)
	// buf[2:4] checksum left zero until computed below.
	binary.LittleEndian.PutUint16(buf[4:6], sessionID)
	binary.LittleEndian.PutUint16(buf[6:8], nextReplyID)
	copy(buf[8:], payload)

	checksum := computeChecksum(buf)
	binary.LittleEndian.PutUint16(buf[2:4], checksum)

	return buf, nextReplyID
}

// computeChecksum sums the buffer as little-endian 16-bit words modulo
// 65535 (the trailing odd byte, if any, is added as a plain byte), then
// returns 65535 minus that sum minus 1 (spec.md §4.1.2). The checksum
// field itself must be zero in buf when this is called.
func computeChecksum(buf []byte) uint16 {
	var sum int64
	n := len(buf)

	for i := 0; i+1 < n; i += 2 {
		sum += int64(binary.LittleEndian.Uint16(buf[i : i+2]))
		sum %= ushortMax
	}
	if n%2 != 0 {
		sum += int64(buf[n-1])
	}
	for sum > ushortMax {
		sum -= ushortMax
	}

	sum = ushortMax - sum - 1
	for sum < 0 {
		sum += ushortMax
	}
	return uint16(sum)
}

// envelopeLen is the size of the TCP framing prefix ahead of every inner
// packet: 4 magic bytes, 2 zero bytes, a little-endian 16-bit inner
// length, then 2 more zero bytes (spec.md §8 scenario 1 gives this
// byte-for-byte; it disagrees with §4.1.3's looser prose and the
// GLOSSARY's "8-byte" claim, both of which are internally inconsistent —
// see DESIGN.md).
const envelopeLen = 10

// wrapEnvelope prefixes a packet with the 10-byte TCP envelope.
func wrapEnvelope(inner []byte) []byte {
	out := make([]byte, envelopeLen+len(inner))
	copy(out[0:4], tcpMagic[:])
	binary.LittleEndian.PutUint16(out[6:8], uint16(len(inner)))
	copy(out[envelopeLen:], inner)
	return out
}

// splitEnvelope extracts one complete envelope-framed inner packet from
// the front of buf, returning the inner bytes and the unconsumed
// remainder. ok is false if buf does not yet contain a complete envelope.
func splitEnvelope(buf []byte) (inner []byte, remainder []byte, ok bool) {
	if len(buf) < envelopeLen {
		return nil, buf, false
	}
	if buf[0] != tcpMagic[0] || buf[1] != tcpMagic[1] || buf[2] != tcpMagic[2] || buf[3] != tcpMagic[3] {
		return nil, buf, false
	}
	innerLen := int(binary.LittleEndian.Uint16(buf[6:8]))
	total := envelopeLen + innerLen
	if len(buf) < total {
		return nil, buf, false
	}
	return buf[envelopeLen:total], buf[total:], true
}

// stripEnvelope removes a single leading envelope if present, otherwise
// returns buf unchanged — used on reads where the envelope may or may
// not have been stripped already.
func stripEnvelope(buf []byte) []byte {
	if len(buf) < envelopeLen {
		return buf
	}
	if buf[0] == tcpMagic[0] && buf[1] == tcpMagic[1] && buf[2] == tcpMagic[2] && buf[3] == tcpMagic[3] {
		return buf[envelopeLen:]
	}
	return buf
}

// chunkPlan describes how a bulk transfer of the given size is split
// into CMD_DATA_RDY requests (spec.md §4.2 step 4). size == 0 yields
// zero chunks — no requests are sent and the result is empty.
func chunkPlan(size int) (totalPackets, remain int) {
	if size == 0 {
		return 0, 0
	}
	totalPackets = (size + maxChunk - 1) / maxChunk
	remain = size % maxChunk
	return totalPackets, remain
}

// chunkBounds returns the offset and length of chunk i out of a plan
// for the given total size.
func chunkBounds(i, size int) (offset, length int) {
	offset = i * maxChunk
	length = maxChunk
	if remaining := size - offset; remaining < length {
		length = remaining
	}
	return offset, length
}

// isEventPacket reports whether a decoded header is an asynchronous
// CMD_REG_EVENT notification rather than a command reply (spec.md §4.1.6).
func isEventPacket(h packetHeader) bool {
	return h.Command == cmdRegEvent
}

// decodePackedTimestamp decodes the device's packed 32-bit timestamp
// (spec.md §4.1.4) into a UTC instant. Because the encoding divides by 31
// for the day component, month lengths aren't respected; out-of-range
// day/hour/minute/second values are clamped rather than overflowing into
// the next field.
func decodePackedTimestamp(t uint32) time.Time {
	second := int(t % 60)
	t /= 60
	minute := int(t % 60)
	t /= 60
	hour := int(t % 24)
	t /= 24
	day := int(t%31) + 1
	t /= 31
	month := int(t%12) + 1
	t /= 12
	year := int(t) + 2000

	if second > 59 {
		second = 59
	}
	if minute > 59 {
		minute = 59
	}
	if hour > 23 {
		hour = 23
	}
	if lastDay := daysInMonth(year, month); day > lastDay {
		day = lastDay
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

// daysInMonth returns the number of days in the given calendar month.
func daysInMonth(year, month int) int {
	firstOfNext := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	lastOfThis := firstOfNext.AddDate(0, 0, -1)
	return lastOfThis.Day()
}

// formatTimestamp renders a UTC instant in the fixed millisecond-precision
// ISO-8601 form used throughout this package (spec.md §3), chosen so that
// lexicographic string comparison agrees with chronological order.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// encodePackedTimestamp packs a UTC instant into the device's 32-bit
// timestamp encoding (inverse of decodePackedTimestamp, used only for
// building test fixtures — the core never writes timestamps to a device).
func encodePackedTimestamp(t time.Time) uint32 {
	t = t.UTC()
	y := t.Year() - 2000
	m := int(t.Month())
	d := t.Day()
	h := t.Hour()
	min := t.Minute()
	sec := t.Second()
	return uint32((((y*12+(m-1))*31+(d-1))*24+h)*3600 + min*60 + sec)
}
