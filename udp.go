package zkteco

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

// udpTransport is a connected UDP session (spec.md §4.3). UDP carries
// bare header+payload datagrams — there is no 10-byte TCP envelope.
type udpTransport struct {
	conn      net.Conn
	sessionID uint16
	replyID   uint16
	timeout   time.Duration
}

// dialUDP "connects" a UDP socket (binding a local ephemeral port and
// fixing the remote address) and performs the CMD_CONNECT handshake.
func dialUDP(cfg DeviceConfig) (transport, error) {
	addr := fmt.Sprintf("%s:%d", cfg.IP, cfg.resolvedPort())
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, transportErrorf("udp dial %s failed: %v", addr, err)
	}

	t := &udpTransport{conn: conn, timeout: cfg.resolvedTimeout()}
	if err := t.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return t, nil
}

func (t *udpTransport) handshake() error {
	t.sessionID = 0
	t.replyID = 0

	header, _, err := t.execute(cmdConnect, nil)
	if err != nil {
		return err
	}
	t.sessionID = header.SessionID
	return nil
}

// authenticate mirrors tcpTransport.authenticate; UDP uses the
// configured timeout for every command, including CONNECT/EXIT
// (spec.md §4.3, unlike TCP's fixed 2s carve-out).
func (t *udpTransport) authenticate(commKey uint32) error {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, commKey)

	header, _, err := t.execute(cmdAuth, payload)
	if err != nil {
		return err
	}
	if header.Command != ackOK {
		return authErrorf("device rejected communication key (%s)", commandName(header.Command))
	}
	return nil
}

// execute sends one packet and reads the single reply datagram.
func (t *udpTransport) execute(command uint16, payload []byte) (packetHeader, []byte, error) {
	packet, nextReplyID := encodePacket(command, t.sessionID, t.replyID, payload)
	t.replyID = nextReplyID

	if err := t.conn.SetDeadline(time.Now().Add(t.timeout)); err != nil {
		return packetHeader{}, nil, transportErrorf("set deadline: %v", err)
	}
	if _, err := t.conn.Write(packet); err != nil {
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

	header, body, err := decodeHeader(buf[:n])
	if err != nil {
		return packetHeader{}, nil, protocolErrorf("malformed reply to %s: %v", commandName(command), err)
	}
	return header, body, nil
}

// readBulk performs the datagram-per-packet bulk read (spec.md §4.3.1):
// request, then receive one datagram at a time, discarding
// CMD_PREPARE_DATA announcements, appending CMD_DATA payload, and
// stopping once the announced size has accumulated. CMD_ACK_OK
// datagrams carry no data and do not end the read on their own.
func (t *udpTransport) readBulk(request []byte) ([]byte, error) {
	header, body, err := t.execute(cmdDataWrrq, request)
	if err != nil {
		return nil, err
	}

	var size int
	switch header.Command {
	case cmdData:
		return body, nil
	case ackOK, cmdPrepareData:
		if len(body) >= 5 {
			size = int(binary.LittleEndian.Uint32(body[1:5]))
		}
	default:
		return nil, protocolErrorf("unexpected reply to CMD_DATA_WRRQ: %s", commandName(header.Command))
	}

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
		if _, err := t.conn.Write(packet); err != nil {
			return nil, transportErrorf("write CMD_DATA_RDY: %v", err)
		}
	}

	out := make([]byte, 0, size)
	deadline := time.Duration(60+30*totalPackets) * time.Second
	if err := t.conn.SetDeadline(time.Now().Add(deadline)); err != nil {
		return nil, transportErrorf("set deadline: %v", err)
	}

	buf := make([]byte, 65536)
	for len(out) < size {
		n, err := t.conn.Read(buf)
		if err != nil {
			return nil, transportErrorf("read bulk data: %v", err)
		}
		header, body, err := decodeHeader(buf[:n])
		if err != nil {
			return nil, protocolErrorf("malformed bulk packet: %v", err)
		}
		if isEventPacket(header) {
			continue
		}
		switch header.Command {
		case cmdPrepareData:
			// announcement only, no payload to keep.
		case cmdData:
			out = append(out, body...)
		case ackOK:
			if len(out) >= size {
				return out, nil
			}
		}
	}
	return out, nil
}

func (t *udpTransport) getUsers() ([]rawUser, error) {
	defer t.freeData()
	data, err := t.readBulk(requestDataUsers)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, nil
	}
	return decodeUsers(data[4:], userRecordSizeUDP, decodeUserUDP), nil
}

// getAttendanceLogs decodes 16-byte records when the payload divides
// evenly into them, falling back to the 8-byte short layout otherwise
// (spec.md §4.1.5, §9).
func (t *udpTransport) getAttendanceLogs() ([]rawAttendance, error) {
	defer t.freeData()
	data, err := t.readBulk(requestDataAttendance)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, nil
	}
	data = data[4:]
	if len(data)%attendanceRecordSizeUDPLarge == 0 {
		return decodeAttendances(data, attendanceRecordSizeUDPLarge, decodeAttendanceUDP), nil
	}
	return decodeAttendances(data, attendanceRecordSizeUDPSmall, decodeAttendanceUDP), nil
}

// freeData tells the device it may release the buffer backing the last
// bulk read. Best-effort: failures are ignored, matching tcpTransport.
func (t *udpTransport) freeData() {
	packet, nextReplyID := encodePacket(cmdFreeData, t.sessionID, t.replyID, nil)
	t.replyID = nextReplyID
	_ = t.conn.SetDeadline(time.Now().Add(t.timeout))
	_, _ = t.conn.Write(packet)
}

func (t *udpTransport) getCounts() (uint32, uint32, error) {
	_, body, err := t.execute(cmdGetFreeSizes, nil)
	if err != nil {
		return 0, 0, err
	}
	userCount, logCount := decodeFreeSizes(body)
	return userCount, logCount, nil
}

func (t *udpTransport) getMemoryInfo() (MemoryInfo, error) {
	_, body, err := t.execute(cmdGetFreeSizes, nil)
	if err != nil {
		return MemoryInfo{}, err
	}
	return decodeMemoryInfo(body), nil
}

func (t *udpTransport) deviceOption(key string) (string, error) {
	_, body, err := t.execute(cmdDevice, []byte(key))
	if err != nil {
		return "", err
	}
	return parseDeviceOption(body), nil
}

func (t *udpTransport) disconnect() error {
	_, _, _ = t.execute(cmdExit, nil)
	return t.conn.Close()
}
