package zkteco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	users           []rawUser
	attendanceLogs  []rawAttendance
	userCount       uint32
	logCount        uint32
	disconnectCalls int
}

func (f *fakeTransport) authenticate(commKey uint32) error { return nil }
func (f *fakeTransport) getUsers() ([]rawUser, error)       { return f.users, nil }
func (f *fakeTransport) getAttendanceLogs() ([]rawAttendance, error) {
	return f.attendanceLogs, nil
}
func (f *fakeTransport) getCounts() (uint32, uint32, error) { return f.userCount, f.logCount, nil }
func (f *fakeTransport) getMemoryInfo() (MemoryInfo, error) {
	return MemoryInfo{UserCount: f.userCount, LogCount: f.logCount}, nil
}
func (f *fakeTransport) deviceOption(key string) (string, error) { return "", nil }
func (f *fakeTransport) disconnect() error {
	f.disconnectCalls++
	return nil
}

func TestGetUsersFillsSyntheticName(t *testing.T) {
	tr := &fakeTransport{users: []rawUser{{DeviceUserID: "7", Name: ""}, {DeviceUserID: "8", Name: "Ann"}}}
	c := &Client{tr: tr}

	users, err := c.GetUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "User 7", users[0].DeviceName)
	assert.Equal(t, "Ann", users[1].DeviceName)
}

func TestGetDeviceInfoAlwaysUnknownIdentity(t *testing.T) {
	tr := &fakeTransport{userCount: 3, logCount: 9}
	c := &Client{tr: tr}

	info, err := c.GetDeviceInfo()
	require.NoError(t, err)
	assert.Equal(t, "Unknown", info.SerialNumber)
	assert.Equal(t, "Unknown", info.FirmwareVersion)
	assert.Equal(t, uint32(3), info.UserCount)
	assert.Equal(t, uint32(9), info.LogCount)
}

func TestGetAttendanceLogsFiltersByRange(t *testing.T) {
	tr := &fakeTransport{attendanceLogs: []rawAttendance{
		{DeviceUserID: "1", Timestamp: "2024-01-01T00:00:00.000Z"},
		{DeviceUserID: "2", Timestamp: "2024-01-15T12:00:00.000Z"},
		{DeviceUserID: "3", Timestamp: "2024-02-01T00:00:00.000Z"},
	}}
	c := &Client{tr: tr}

	logs, err := c.GetAttendanceLogs("range", "2024-01-10", "2024-01-20")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "2", logs[0].DeviceUserID)
}

func TestGetAttendanceLogsUnboundedWhenEmpty(t *testing.T) {
	tr := &fakeTransport{attendanceLogs: []rawAttendance{
		{DeviceUserID: "1", Timestamp: "2024-01-01T00:00:00.000Z"},
	}}
	c := &Client{tr: tr}

	logs, err := c.GetAttendanceLogs("range", "", "")
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestGetAttendanceLogsIgnoresBoundsUnlessModeIsRange(t *testing.T) {
	tr := &fakeTransport{attendanceLogs: []rawAttendance{
		{DeviceUserID: "1", Timestamp: "2024-01-01T00:00:00.000Z"},
		{DeviceUserID: "2", Timestamp: "2024-02-01T00:00:00.000Z"},
	}}
	c := &Client{tr: tr}

	logs, err := c.GetAttendanceLogs("all", "2024-01-10", "2024-01-20")
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestNormalizeBound(t *testing.T) {
	assert.Equal(t, "2024-01-01T00:00:00", normalizeBound("2024-01-01", "T00:00:00"))
	assert.Equal(t, "2024-01-01T08:00:00.000Z", normalizeBound("2024-01-01T08:00:00.000Z", "T00:00:00"))
	assert.Equal(t, "", normalizeBound("", "T00:00:00"))
}

func TestParseCommKey(t *testing.T) {
	assert.Equal(t, uint32(0), parseCommKey(DeviceConfig{}))
	assert.Equal(t, uint32(0), parseCommKey(DeviceConfig{CommKey: "not-a-number"}))
	assert.Equal(t, uint32(12345), parseCommKey(DeviceConfig{CommKey: "12345"}))
}
