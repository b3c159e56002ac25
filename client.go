package zkteco

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Client is a connected handle to one device. It owns exactly one
// transport — TCP or UDP — chosen by Connect at dial time (spec.md §9).
type Client struct {
	cfg DeviceConfig
	tr  transport
}

// parseCommKey parses cfg.CommKey into a 32-bit key. An empty or
// unparseable key is treated as "no authentication required" rather
// than an error (spec.md §4.4.1).
func parseCommKey(cfg DeviceConfig) uint32 {
	if cfg.CommKey == "" {
		return 0
	}
	n, err := strconv.ParseUint(cfg.CommKey, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

// Connect dials the device over TCP, falling back to UDP if the TCP
// dial or handshake fails, then authenticates if cfg carries a nonzero
// communication key (spec.md §4.4.1).
func Connect(cfg DeviceConfig) (*Client, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	tr, tcpErr := dialTCP(cfg)
	if tcpErr != nil {
		log.WithError(tcpErr).Debug("tcp connect failed, falling back to udp")
		var udpErr error
		tr, udpErr = dialUDP(cfg)
		if udpErr != nil {
			return nil, transportErrorf("tcp: %v; udp: %v", tcpErr, udpErr)
		}
	}

	c := &Client{cfg: cfg, tr: tr}

	if key := parseCommKey(cfg); key != 0 {
		log.WithField("ip", cfg.IP).Debug("authenticating")
		if err := tr.authenticate(key); err != nil {
			log.WithError(err).Warn("authentication failed")
			tr.disconnect()
			return nil, err
		}
	}
	return c, nil
}

// Disconnect closes the underlying transport.
func (c *Client) Disconnect() error {
	return c.tr.disconnect()
}

// TestConnection attempts a full connect-and-describe round trip,
// reporting success/failure and elapsed latency without returning an
// error — callers that just want a health check use this instead of
// Connect (spec.md §4.4.2).
func TestConnection(cfg DeviceConfig) ConnectionTestResult {
	start := time.Now()

	client, err := Connect(cfg)
	if err != nil {
		return ConnectionTestResult{
			Success:   false,
			Error:     FormatError(err),
			LatencyMS: time.Since(start).Milliseconds(),
		}
	}
	defer client.Disconnect()

	info, err := client.GetDeviceInfo()
	result := ConnectionTestResult{Success: true, LatencyMS: time.Since(start).Milliseconds()}
	if err == nil {
		result.DeviceInfo = &info
	}
	return result
}

// GetUsers returns every enrolled user. A user with no name on the
// device is reported with a synthetic "User <id>" name.
func (c *Client) GetUsers() ([]DeviceUser, error) {
	log.Debug("fetching users")
	raw, err := c.tr.getUsers()
	if err != nil {
		log.WithError(err).Warn("fetching users failed")
		return nil, err
	}
	users := make([]DeviceUser, 0, len(raw))
	for _, u := range raw {
		name := u.Name
		if name == "" {
			name = fmt.Sprintf("User %s", u.DeviceUserID)
		}
		users = append(users, DeviceUser{DeviceUserID: u.DeviceUserID, DeviceName: name})
	}
	return users, nil
}

// GetDeviceInfo returns the device's current user/log counts. Serial
// number and firmware version are not available from CMD_GET_FREE_SIZES
// and are reported as "Unknown"; use DeviceOption to read them
// individually if the device exposes them (spec.md §3, §9).
func (c *Client) GetDeviceInfo() (DeviceInfo, error) {
	userCount, logCount, err := c.tr.getCounts()
	if err != nil {
		return DeviceInfo{}, err
	}
	return DeviceInfo{
		SerialNumber:    "Unknown",
		FirmwareVersion: "Unknown",
		UserCount:       userCount,
		LogCount:        logCount,
	}, nil
}

// GetMemoryInfo returns the full capacity/usage breakdown behind
// GetDeviceInfo's two counts.
func (c *Client) GetMemoryInfo() (MemoryInfo, error) {
	return c.tr.getMemoryInfo()
}

// DeviceOption reads a single device configuration value by key (e.g.
// "~SerialNumber", "~Platform") via CMD_DEVICE.
func (c *Client) DeviceOption(key string) (string, error) {
	return c.tr.deviceOption(key)
}

// normalizeBound appends a time-of-day suffix to a date-only bound so
// range comparisons behave as callers expect: start-of-day for the
// lower bound, end-of-day for the upper (spec.md §4.4.4).
func normalizeBound(bound, suffix string) string {
	if bound == "" || strings.Contains(bound, "T") {
		return bound
	}
	return bound + suffix
}

// GetAttendanceLogs returns attendance logs, restricted to
// [startDate, endDate] inclusive only when mode is "range" (spec.md
// §4.4); any other mode (including "all") returns every log regardless
// of startDate/endDate. Bounds are compared lexicographically against
// the fixed ISO-8601 timestamp format this package emits, so no date
// parsing is needed.
func (c *Client) GetAttendanceLogs(mode, startDate, endDate string) ([]AttendanceLog, error) {
	log.WithField("mode", mode).Debug("fetching attendance logs")
	raw, err := c.tr.getAttendanceLogs()
	if err != nil {
		log.WithError(err).Warn("fetching attendance logs failed")
		return nil, err
	}

	if mode != "range" {
		logs := make([]AttendanceLog, 0, len(raw))
		for _, r := range raw {
			logs = append(logs, AttendanceLog{
				DeviceUserID: r.DeviceUserID,
				Timestamp:    r.Timestamp,
				VerifyType:   r.VerifyType,
				PunchType:    r.PunchType,
			})
		}
		return logs, nil
	}

	start := normalizeBound(startDate, "T00:00:00")
	end := normalizeBound(endDate, "T23:59:59")

	logs := make([]AttendanceLog, 0, len(raw))
	for _, r := range raw {
		if start != "" && r.Timestamp < start {
			continue
		}
		if end != "" && r.Timestamp > end {
			continue
		}
		logs = append(logs, AttendanceLog{
			DeviceUserID: r.DeviceUserID,
			Timestamp:    r.Timestamp,
			VerifyType:   r.VerifyType,
			PunchType:    r.PunchType,
		})
	}
	return logs, nil
}

// SyncAll fetches every user, then disconnects and reconnects to fetch
// attendance logs, retrying the reconnect-and-fetch step up to three
// times with increasing delay if it fails (spec.md §4.4.6). If every
// retry fails, the users already fetched are still returned alongside
// an ErrPartialSync error naming how many users were retrieved.
func (c *Client) SyncAll(opts SyncOptions) (SyncAllResult, error) {
	users, err := c.GetUsers()
	if err != nil {
		c.Disconnect()
		return SyncAllResult{}, err
	}

	c.Disconnect()

	var logs []AttendanceLog
	attempt := 0
	retryErr := retrySteps(reconnectRetryDelays, func() error {
		attempt++
		log.WithField("attempt", attempt).Debug("reconnecting to fetch attendance logs")
		client, err := Connect(c.cfg)
		if err != nil {
			log.WithError(err).Warn("reconnect failed")
			return err
		}
		defer client.Disconnect()

		fetched, err := client.GetAttendanceLogs(opts.Mode, opts.StartDate, opts.EndDate)
		if err != nil {
			return err
		}
		logs = fetched
		return nil
	})

	if retryErr != nil {
		return SyncAllResult{Users: users}, fmt.Errorf(
			"Got %d users but failed to fetch attendance logs: %v: %w", len(users), retryErr, ErrPartialSync)
	}
	return SyncAllResult{Users: users, Logs: logs}, nil
}
