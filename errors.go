package zkteco

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error categories (spec.md §7). Wrap one of these with
// fmt.Errorf("...: %w", ErrX) so callers can classify failures with
// errors.Is without parsing message text.
var (
	ErrValidation     = errors.New("validation error")
	ErrTransport      = errors.New("transport error")
	ErrAuthentication = errors.New("authentication error")
	ErrProtocol       = errors.New("protocol error")
	ErrPartialSync    = errors.New("partial sync error")
)

// FormatError rewrites a low-level transport error into the
// human-readable categories callers are expected to surface, matching
// the substring classification the reference client uses. Errors that
// don't match a known pattern are returned unchanged.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())

	switch {
	case containsAny(msg, "no route to host", "ehostunreach", "host unreachable", "broken pipe", "os error 32", "os error 65"):
		return "Device is unreachable. Check the IP address and network connection."
	case containsAny(msg, "timeout", "etimedout"):
		return "Connection timeout. The device did not respond in time."
	case containsAny(msg, "econnrefused", "connection refused"):
		return "Connection refused. Check the port and that the device is powered on."
	case containsAny(msg, "auth", "password"):
		return "Authentication failed. Check the communication key."
	default:
		return err.Error()
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// protocolErrorf builds an ErrProtocol-wrapped error naming the command
// and ack code involved, for unexpected replies.
func protocolErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrProtocol)
}

// transportErrorf builds an ErrTransport-wrapped error.
func transportErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrTransport)
}

// authErrorf builds an ErrAuthentication-wrapped error.
func authErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrAuthentication)
}

// validationErrorf builds an ErrValidation-wrapped error.
func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}
