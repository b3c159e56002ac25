package zkteco

import (
	"encoding/binary"
	"strconv"
	"strings"
)

const (
	userRecordSizeTCP = 72
	userRecordSizeUDP = 28

	attendanceRecordSizeTCP      = 40
	attendanceRecordSizeUDPLarge = 16
	attendanceRecordSizeUDPSmall = 8
)

// rawUser is the transport-agnostic result of decoding one user record;
// the high-level client turns it into a DeviceUser.
type rawUser struct {
	DeviceUserID string
	Name         string
}

// rawAttendance is the transport-agnostic result of decoding one
// attendance record.
type rawAttendance struct {
	DeviceUserID string
	Timestamp    string
	VerifyType   uint8
	PunchType    uint8
}

// trimASCII trims trailing NUL bytes and anything after the first one,
// matching how the device pads fixed-width ASCII fields.
func trimASCII(b []byte) string {
	if i := indexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), "\x00")
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// decodeUserTCP decodes a 72-byte extended user record (spec.md §4.1.5):
// uid u16 @0, name @11 len 24, user_id @48 len 9.
func decodeUserTCP(rec []byte) rawUser {
	name := trimASCII(rec[11:35])
	userID := trimASCII(rec[48:57])
	return rawUser{DeviceUserID: userID, Name: name}
}

// decodeUserUDP decodes a 28-byte compact user record (spec.md §4.1.5):
// uid u16 @0, name @8 len 8, user_id is the decimal string of a u32 @24.
func decodeUserUDP(rec []byte) rawUser {
	name := trimASCII(rec[8:16])
	userID := strconv.FormatUint(uint64(binary.LittleEndian.Uint32(rec[24:28])), 10)
	return rawUser{DeviceUserID: userID, Name: name}
}

// decodeAttendanceTCP decodes a 40-byte attendance record (spec.md
// §4.1.5): user_id @2 len 9, verify_type u8 @11, in/out state u8 @12,
// packed timestamp u32 @27.
func decodeAttendanceTCP(rec []byte) rawAttendance {
	userID := trimASCII(rec[2:11])
	verifyType := rec[11]
	punchType := rec[12]
	ts := decodePackedTimestamp(binary.LittleEndian.Uint32(rec[27:31]))
	return rawAttendance{
		DeviceUserID: userID,
		Timestamp:    formatTimestamp(ts),
		VerifyType:   verifyType,
		PunchType:    punchType,
	}
}

// decodeAttendanceUDP decodes a 16-byte (or, for the trailing short
// packet, 8-byte) compact attendance record (spec.md §4.1.5): user_id is
// the decimal string of a u16 @0, packed timestamp u32 @4. When only 8
// bytes are available verify_type/punch_type are unknown and reported as
// zero (spec.md §9 open question — the reference behavior is preserved).
func decodeAttendanceUDP(rec []byte) rawAttendance {
	userID := strconv.FormatUint(uint64(binary.LittleEndian.Uint16(rec[0:2])), 10)
	ts := decodePackedTimestamp(binary.LittleEndian.Uint32(rec[4:8]))
	var verifyType, punchType uint8
	if len(rec) >= 16 {
		verifyType = rec[8]
		punchType = rec[9]
	}
	return rawAttendance{
		DeviceUserID: userID,
		Timestamp:    formatTimestamp(ts),
		VerifyType:   verifyType,
		PunchType:    punchType,
	}
}

// decodeUsers walks a buffer of fixed-size user records, stopping when
// fewer bytes than one record remain.
func decodeUsers(data []byte, recordSize int, decode func([]byte) rawUser) []rawUser {
	var users []rawUser
	for len(data) >= recordSize {
		users = append(users, decode(data[:recordSize]))
		data = data[recordSize:]
	}
	return users
}

// decodeAttendances walks a buffer of fixed-size attendance records,
// stopping when fewer bytes than one record remain.
func decodeAttendances(data []byte, recordSize int, decode func([]byte) rawAttendance) []rawAttendance {
	var records []rawAttendance
	for len(data) >= recordSize {
		records = append(records, decode(data[:recordSize]))
		data = data[recordSize:]
	}
	return records
}

// decodeFreeSizes parses the CMD_GET_FREE_SIZES payload at the two
// offsets spec.md §4.4.6 documents: user count @24, log count @40. The
// layout beyond that is undocumented and treated as opaque; a short
// payload yields (0, 0) rather than an error (spec.md §9).
func decodeFreeSizes(payload []byte) (userCount, logCount uint32) {
	if len(payload) < 76 {
		return 0, 0
	}
	userCount = binary.LittleEndian.Uint32(payload[24:28])
	logCount = binary.LittleEndian.Uint32(payload[40:44])
	return userCount, logCount
}

// decodeMemoryInfo parses the same CMD_GET_FREE_SIZES payload for the
// supplemental MemoryInfo read (SPEC_FULL.md §3): admin count @48, user
// capacity @60, log capacity @64, in addition to the user/log counts
// decodeFreeSizes already exposes.
func decodeMemoryInfo(payload []byte) MemoryInfo {
	userCount, logCount := decodeFreeSizes(payload)
	info := MemoryInfo{UserCount: userCount, LogCount: logCount}
	if len(payload) >= 68 {
		info.AdminCount = binary.LittleEndian.Uint32(payload[48:52])
		info.UserCapacity = binary.LittleEndian.Uint32(payload[60:64])
		info.LogCapacity = binary.LittleEndian.Uint32(payload[64:68])
	}
	return info
}

// parseDeviceOption extracts the value half of a "key=value" CMD_DEVICE
// reply payload, trimming trailing NUL padding.
func parseDeviceOption(payload []byte) string {
	value := string(payload)
	if idx := strings.IndexByte(value, '='); idx >= 0 {
		value = value[idx+1:]
	}
	return strings.TrimRight(value, "\x00")
}
