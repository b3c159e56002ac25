// Package zkteco is a client for the ZKTeco biometric time-and-attendance
// device family. It implements the device's proprietary binary protocol
// over TCP (port 4370) and UDP (same port, fallback), hiding framing,
// session negotiation, checksumming, and multi-packet streaming behind a
// small read-only API: connect, authenticate, enumerate users, fetch
// attendance logs, query counts, disconnect.
//
// Usage:
//
//	cfg := zkteco.DeviceConfig{IP: "192.168.1.201", Port: 4370}
//	client, err := zkteco.Connect(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	users, err := client.GetUsers()
//
// Device writes (enrollment, firmware updates, time set, LCD/voice/power
// control) and live event streaming are out of scope; this package only
// reads.
package zkteco
