package zkteco

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeUserTCP(t *testing.T) {
	rec := make([]byte, userRecordSizeTCP)
	binary.LittleEndian.PutUint16(rec[0:2], 7)
	copy(rec[11:35], "Jane Doe")
	copy(rec[48:57], "1007")

	u := decodeUserTCP(rec)
	assert.Equal(t, "1007", u.DeviceUserID)
	assert.Equal(t, "Jane Doe", u.Name)
}

func TestDecodeUserUDP(t *testing.T) {
	rec := make([]byte, userRecordSizeUDP)
	copy(rec[8:16], "Jim")
	binary.LittleEndian.PutUint32(rec[24:28], 42)

	u := decodeUserUDP(rec)
	assert.Equal(t, "42", u.DeviceUserID)
	assert.Equal(t, "Jim", u.Name)
}

func TestDecodeAttendanceTCP(t *testing.T) {
	rec := make([]byte, attendanceRecordSizeTCP)
	copy(rec[2:11], "1007")
	rec[11] = 1 // verify type
	rec[12] = 0 // in
	binary.LittleEndian.PutUint32(rec[27:31], encodePackedTimestamp(mustParseTime(t, "2024-05-01T08:00:00.000Z")))

	a := decodeAttendanceTCP(rec)
	assert.Equal(t, "1007", a.DeviceUserID)
	assert.Equal(t, uint8(1), a.VerifyType)
	assert.Equal(t, uint8(0), a.PunchType)
	assert.Equal(t, "2024-05-01T08:00:00.000Z", a.Timestamp)
}

func TestDecodeAttendanceUDPLargeAndSmall(t *testing.T) {
	large := make([]byte, attendanceRecordSizeUDPLarge)
	binary.LittleEndian.PutUint16(large[0:2], 99)
	binary.LittleEndian.PutUint32(large[4:8], encodePackedTimestamp(mustParseTime(t, "2024-05-01T08:00:00.000Z")))
	large[8] = 1

	a := decodeAttendanceUDP(large)
	assert.Equal(t, "99", a.DeviceUserID)
	assert.Equal(t, uint8(1), a.VerifyType)

	small := make([]byte, attendanceRecordSizeUDPSmall)
	binary.LittleEndian.PutUint16(small[0:2], 99)
	binary.LittleEndian.PutUint32(small[4:8], encodePackedTimestamp(mustParseTime(t, "2024-05-01T08:00:00.000Z")))

	b := decodeAttendanceUDP(small)
	assert.Equal(t, "99", b.DeviceUserID)
	assert.Equal(t, uint8(0), b.VerifyType)
}

func TestDecodeUsersStopsOnPartialTrailer(t *testing.T) {
	data := make([]byte, userRecordSizeUDP+5)
	users := decodeUsers(data, userRecordSizeUDP, decodeUserUDP)
	assert.Len(t, users, 1)
}

func TestDecodeFreeSizesShortPayload(t *testing.T) {
	userCount, logCount := decodeFreeSizes(make([]byte, 10))
	assert.Zero(t, userCount)
	assert.Zero(t, logCount)
}

func TestDecodeFreeSizesAndMemoryInfo(t *testing.T) {
	payload := make([]byte, 76)
	binary.LittleEndian.PutUint32(payload[24:28], 12)
	binary.LittleEndian.PutUint32(payload[40:44], 345)
	binary.LittleEndian.PutUint32(payload[48:52], 3)
	binary.LittleEndian.PutUint32(payload[60:64], 3000)
	binary.LittleEndian.PutUint32(payload[64:68], 100000)

	userCount, logCount := decodeFreeSizes(payload)
	assert.Equal(t, uint32(12), userCount)
	assert.Equal(t, uint32(345), logCount)

	info := decodeMemoryInfo(payload)
	assert.Equal(t, uint32(3), info.AdminCount)
	assert.Equal(t, uint32(3000), info.UserCapacity)
	assert.Equal(t, uint32(100000), info.LogCapacity)
}

func TestParseDeviceOption(t *testing.T) {
	assert.Equal(t, "ZK-9876", parseDeviceOption([]byte("~SerialNumber=ZK-9876\x00\x00")))
	assert.Equal(t, "noequalssign", parseDeviceOption([]byte("noequalssign")))
}
