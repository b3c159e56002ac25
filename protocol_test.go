package zkteco

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePacketReplyIDWraps(t *testing.T) {
	_, next := encodePacket(cmdConnect, 0, ushortMax-1, nil)
	assert.Equal(t, uint16(0), next)
}

func TestWrapEnvelopeMatchesConnectScenario(t *testing.T) {
	packet, nextReplyID := encodePacket(cmdConnect, 0, 0, nil)
	assert.Equal(t, uint16(1), nextReplyID)

	wrapped := wrapEnvelope(packet)
	assert.Equal(t, []byte{0x50, 0x50, 0x82, 0x7D, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00}, wrapped[:10])
	assert.Equal(t, []byte{0xE8, 0x03}, wrapped[10:12]) // command = CMD_CONNECT
	assert.Equal(t, []byte{0x00, 0x00}, wrapped[14:16]) // session = 0
	assert.Equal(t, []byte{0x01, 0x00}, wrapped[16:18]) // reply = 1
}

func TestEncodePacketChecksumMatchesAfterReplyIDWrite(t *testing.T) {
	packet, nextReplyID := encodePacket(cmdAuth, 42, 0, []byte{1, 2, 3})

	header, body, err := decodeHeader(packet)
	require.NoError(t, err)
	assert.Equal(t, uint16(cmdAuth), header.Command)
	assert.Equal(t, uint16(42), header.SessionID)
	assert.Equal(t, nextReplyID, header.ReplyID)
	assert.Equal(t, []byte{1, 2, 3}, body)

	// Recomputing the checksum over the same buffer with the checksum
	// field zeroed must reproduce the value encodePacket wrote.
	verify := make([]byte, len(packet))
	copy(verify, packet)
	verify[2], verify[3] = 0, 0
	assert.Equal(t, header.Checksum, computeChecksum(verify))
}

func TestComputeChecksumOddLength(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03}
	// Must not panic on an odd-length buffer and must be stable.
	c1 := computeChecksum(buf)
	c2 := computeChecksum(buf)
	assert.Equal(t, c1, c2)
}

func TestWrapSplitEnvelopeRoundTrip(t *testing.T) {
	inner := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}
	wrapped := wrapEnvelope(inner)

	got, remainder, ok := splitEnvelope(wrapped)
	require.True(t, ok)
	assert.Equal(t, inner, got)
	assert.Empty(t, remainder)
}

func TestSplitEnvelopeIncomplete(t *testing.T) {
	_, _, ok := splitEnvelope([]byte{0x50, 0x50, 0x82, 0x7D, 0x05, 0x00, 0x00, 0x00, 0x01})
	assert.False(t, ok)
}

func TestStripEnvelopePassthroughWithoutMagic(t *testing.T) {
	buf := []byte{0, 0, 0, 0, 0, 0, 0, 0, 9}
	assert.Equal(t, buf, stripEnvelope(buf))
}

func TestDecodePackedTimestampRoundTrip(t *testing.T) {
	want := time.Date(2024, time.March, 15, 13, 45, 30, 0, time.UTC)
	packed := encodePackedTimestamp(want)
	got := decodePackedTimestamp(packed)
	assert.True(t, want.Equal(got), "want %v got %v", want, got)
}

func TestDecodePackedTimestampClampsOutOfRangeFields(t *testing.T) {
	// A raw value whose decoded day exceeds February's length must clamp
	// rather than roll into March.
	packed := encodePackedTimestamp(time.Date(2023, time.February, 28, 23, 59, 59, 0, time.UTC)) + 3*24*3600
	got := decodePackedTimestamp(packed)
	assert.Equal(t, time.February, got.Month())
	assert.LessOrEqual(t, got.Day(), 28)
}

func TestFormatTimestampIsLexicographicallyOrdered(t *testing.T) {
	earlier := formatTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	later := formatTimestamp(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC))
	assert.Less(t, earlier, later)
}

func TestChunkPlanBoundaries(t *testing.T) {
	total, remain := chunkPlan(0)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, remain)

	total, remain = chunkPlan(maxChunk)
	assert.Equal(t, 1, total)
	assert.Equal(t, 0, remain)

	total, remain = chunkPlan(maxChunk + 1)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, remain)
}

func TestChunkBounds(t *testing.T) {
	offset, length := chunkBounds(0, maxChunk+1)
	assert.Equal(t, 0, offset)
	assert.Equal(t, maxChunk, length)

	offset, length = chunkBounds(1, maxChunk+1)
	assert.Equal(t, maxChunk, offset)
	assert.Equal(t, 1, length)
}

func TestIsEventPacket(t *testing.T) {
	assert.True(t, isEventPacket(packetHeader{Command: cmdRegEvent}))
	assert.False(t, isEventPacket(packetHeader{Command: ackOK}))
}
