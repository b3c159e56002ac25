package zkteco

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

// tcpTransport is a connected TCP session (spec.md §4.2). Every outer
// command is wrapped in the 10-byte envelope before it hits the wire.
type tcpTransport struct {
	conn      net.Conn
	sessionID uint16
	replyID   uint16
	timeout   time.Duration
}

// dialTCP opens a TCP session and performs the CMD_CONNECT handshake.
// The dial itself is capped at 5s regardless of cfg's configured
// timeout (spec.md §4.2.1).
func dialTCP(cfg DeviceConfig) (transport, error) {
	addr := fmt.Sprintf("%s:%d", cfg.IP, cfg.resolvedPort())
	dialTimeout := cfg.resolvedTimeout()
	if dialTimeout > 5*time.Second {
		dialTimeout = 5 * time.Second
	}

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, transportErrorf("tcp dial %s failed: %v", addr, err)
	}

	t := &tcpTransport{conn: conn, timeout: cfg.resolvedTimeout()}
	if err := t.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return t, nil
}

// handshake sends CMD_CONNECT and captures the session id the device
// assigns, resetting the local session/reply state first (spec.md
// §4.2.2).
func (t *tcpTransport) handshake() error {
	t.sessionID = 0
	t.replyID = 0

	header, _, err := t.execute(cmdConnect, nil, 2*time.Second)
	if err != nil {
		return err
	}
	t.sessionID = header.SessionID
	return nil
}

// authenticate sends the 4-byte little-endian communication key via
// CMD_AUTH. A zero key means the device requires no authentication and
// callers should skip calling this (spec.md §4.4.1).
func (t *tcpTransport) authenticate(commKey uint32) error {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, commKey)

	header, _, err := t.execute(cmdAuth, payload, t.timeout)
	if err != nil {
		return err
	}
	if header.Command != ackOK {
		return authErrorf("device rejected communication key (%s)", commandName(header.Command))
	}
	return nil
}

// execute sends one framed command and returns its decoded reply
// header and payload. CMD_CONNECT and CMD_EXIT use a fixed 2s deadline
// regardless of the configured timeout (spec.md §4.2.3); callers pass
// that deadline explicitly.
func (t *tcpTransport) execute(command uint16, payload []byte, deadline time.Duration) (packetHeader, []byte, error) {
	packet, nextReplyID := encodePacket(command, t.sessionID, t.replyID, payload)
	t.replyID = nextReplyID

	if err := t.conn.SetDeadline(time.Now().Add(deadline)); err != nil {
		return packetHeader{}, nil, transportErrorf("set deadline: %v", err)
	}
	if _, err := t.conn.Write(wrapEnvelope(packet)); err != nil {
		return packetHeader{}, nil, transportErrorf("write %s: %v", commandName(command), err)
	}

	buf := make([]byte, 65536)
	n, err := t.conn.Read(buf)
	if err != nil {
		return packetHeader{}, nil, transportErrorf("read reply to %s: %v", commandName(command), err)
	}
	if n == 0 {
		return packetHeader{}, nil, transportErrorf("connection closed by device")
	}

	inner := stripEnvelope(buf[:n])
	header, body, err := decodeHeader(inner)
	if err != nil {
		return packetHeader{}, nil, protocolErrorf("malformed reply to %s: %v", commandName(command), err)
	}
	return header, body, nil
}

// readBulk performs the CMD_DATA_WRRQ streaming exchange (spec.md
// §4.2.4): request, small/large response branch, pre-emitted chunk
// requests, then a receive loop that reassembles every chunk and skips
// asynchronous event packets.
func (t *tcpTransport) readBulk(request []byte) ([]byte, error) {
	header, body, err := t.execute(cmdDataWrrq, request, t.timeout)
	if err != nil {
		return nil, err
	}

	switch header.Command {
	case cmdData:
		return body, nil
	case ackOK, cmdPrepareData:
		if len(body) < 5 {
			return nil, protocolErrorf("short %s body", commandName(header.Command))
		}
		size := int(binary.LittleEndian.Uint32(body[1:5]))
		return t.receiveChunks(size)
	default:
		return nil, protocolErrorf("unexpected reply to CMD_DATA_WRRQ: %s", commandName(header.Command))
	}
}

// receiveChunks pre-emits a CMD_DATA_RDY request for every chunk the
// device announced, then drains the socket until size bytes of payload
// have been assembled, skipping CMD_REG_EVENT notifications.
func (t *tcpTransport) receiveChunks(size int) ([]byte, error) {
	totalPackets, _ := chunkPlan(size)
	if totalPackets == 0 {
		return nil, nil
	}

	for i := 0; i < totalPackets; i++ {
		offset, chunkLen := chunkBounds(i, size)
		rdy := make([]byte, 8)
		binary.LittleEndian.PutUint32(rdy[0:4], uint32(offset))
		binary.LittleEndian.PutUint32(rdy[4:8], uint32(chunkLen))

		packet, nextReplyID := encodePacket(cmdDataRdy, t.sessionID, t.replyID, rdy)
		t.replyID = nextReplyID
		if _, err := t.conn.Write(wrapEnvelope(packet)); err != nil {
			return nil, transportErrorf("write CMD_DATA_RDY: %v", err)
		}
	}

	deadline := time.Duration(60+30*totalPackets) * time.Second
	if err := t.conn.SetDeadline(time.Now().Add(deadline)); err != nil {
		return nil, transportErrorf("set deadline: %v", err)
	}

	out := make([]byte, 0, size)
	readBuf := make([]byte, 65536)
	pending := []byte{}

	for len(out) < size {
		n, err := t.conn.Read(readBuf)
		if err != nil {
			return nil, transportErrorf("read bulk data: %v", err)
		}
		if n == 0 {
			return nil, transportErrorf("connection closed by device")
		}
		pending = append(pending, readBuf[:n]...)

		for {
			inner, rest, ok := splitEnvelope(pending)
			if !ok {
				break
			}
			pending = rest

			header, body, err := decodeHeader(inner)
			if err != nil {
				return nil, protocolErrorf("malformed bulk chunk: %v", err)
			}
			if isEventPacket(header) {
				continue
			}
			// Each chunk response carries 8 bytes of leading metadata
			// ahead of its actual data slice (spec.md §4.2 step 5).
			if len(body) > 8 {
				out = append(out, body[8:]...)
			}
		}
	}
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}

// freeData tells the device it may release the buffer backing the last
// bulk read. Best-effort: failures are ignored, matching the reference
// client.
func (t *tcpTransport) freeData() {
	packet, nextReplyID := encodePacket(cmdFreeData, t.sessionID, t.replyID, nil)
	t.replyID = nextReplyID
	_ = t.conn.SetDeadline(time.Now().Add(t.timeout))
	_, _ = t.conn.Write(wrapEnvelope(packet))
}

func (t *tcpTransport) getUsers() ([]rawUser, error) {
	defer t.freeData()
	data, err := t.readBulk(requestDataUsers)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, nil
	}
	return decodeUsers(data[4:], userRecordSizeTCP, decodeUserTCP), nil
}

func (t *tcpTransport) getAttendanceLogs() ([]rawAttendance, error) {
	defer t.freeData()
	data, err := t.readBulk(requestDataAttendance)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, nil
	}
	return decodeAttendances(data[4:], attendanceRecordSizeTCP, decodeAttendanceTCP), nil
}

func (t *tcpTransport) getCounts() (uint32, uint32, error) {
	_, body, err := t.execute(cmdGetFreeSizes, nil, t.timeout)
	if err != nil {
		return 0, 0, err
	}
	userCount, logCount := decodeFreeSizes(body)
	return userCount, logCount, nil
}

func (t *tcpTransport) getMemoryInfo() (MemoryInfo, error) {
	_, body, err := t.execute(cmdGetFreeSizes, nil, t.timeout)
	if err != nil {
		return MemoryInfo{}, err
	}
	return decodeMemoryInfo(body), nil
}

func (t *tcpTransport) deviceOption(key string) (string, error) {
	_, body, err := t.execute(cmdDevice, []byte(key), t.timeout)
	if err != nil {
		return "", err
	}
	return parseDeviceOption(body), nil
}

// disconnect sends CMD_EXIT on a best-effort basis and closes the
// socket regardless of whether the device acknowledged it.
func (t *tcpTransport) disconnect() error {
	_, _, _ = t.execute(cmdExit, nil, 2*time.Second)
	return t.conn.Close()
}
