package zkteco

// This file is the command surface: validated, retried entry points a
// CLI or service layer calls directly, each wrapping a short-lived
// Client with the outer retry policy (spec.md §4.5). Authentication and
// validation failures are not worth retrying and short-circuit
// immediately (see isTerminalError).

// TestDeviceConnection validates cfg and runs TestConnection under the
// outer retry policy.
func TestDeviceConnection(cfg DeviceConfig) (ConnectionTestResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return ConnectionTestResult{}, err
	}

	var result ConnectionTestResult
	err := retryCommand(func() error {
		result = TestConnection(cfg)
		if !result.Success {
			return transportErrorf("%s", result.Error)
		}
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// GetDeviceInfo validates cfg, connects, fetches device info, and
// disconnects, all under the outer retry policy.
func GetDeviceInfo(cfg DeviceConfig) (DeviceInfo, error) {
	var info DeviceInfo
	err := withRetriedConnection(cfg, func(c *Client) error {
		var err error
		info, err = c.GetDeviceInfo()
		return err
	})
	return info, err
}

// GetDeviceUsers validates cfg, connects, fetches every enrolled user,
// and disconnects, all under the outer retry policy.
func GetDeviceUsers(cfg DeviceConfig) ([]DeviceUser, error) {
	var users []DeviceUser
	err := withRetriedConnection(cfg, func(c *Client) error {
		var err error
		users, err = c.GetUsers()
		return err
	})
	return users, err
}

// GetAttendanceLogs validates cfg, connects, fetches attendance logs
// (restricted to [startDate, endDate] only when mode is "range"), and
// disconnects, all under the outer retry policy.
func GetAttendanceLogs(cfg DeviceConfig, mode, startDate, endDate string) ([]AttendanceLog, error) {
	var logs []AttendanceLog
	err := withRetriedConnection(cfg, func(c *Client) error {
		var err error
		logs, err = c.GetAttendanceLogs(mode, startDate, endDate)
		return err
	})
	return logs, err
}

// SyncDeviceAll validates cfg and runs SyncAll under the outer retry
// policy. SyncAll performs its own internal reconnect retry around the
// log fetch; an ErrPartialSync error it returns is not terminal, so this
// layer retries it like any other non-authentication failure and returns
// the most recent SyncAll result alongside the final error.
func SyncDeviceAll(cfg DeviceConfig, opts SyncOptions) (SyncAllResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return SyncAllResult{}, err
	}

	var result SyncAllResult
	err := retryCommand(func() error {
		client, err := Connect(cfg)
		if err != nil {
			return err
		}
		result, err = client.SyncAll(opts)
		return err
	})
	return result, err
}

// withRetriedConnection validates cfg, then runs op against a freshly
// connected client under the outer retry policy, always disconnecting
// afterward.
func withRetriedConnection(cfg DeviceConfig, op func(*Client) error) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	return retryCommand(func() error {
		client, err := Connect(cfg)
		if err != nil {
			return err
		}
		defer client.Disconnect()
		return op(client)
	})
}
