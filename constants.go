package zkteco

import "fmt"

// Command codes (requests) and ack codes (responses). Values come from the
// device's wire protocol and are fixed, not configurable.
const (
	cmdConnect = 1000
	cmdExit    = 1001
	cmdAuth    = 1102

	cmdPrepareData = 1500
	cmdData        = 1501
	cmdFreeData    = 1502
	cmdDataWrrq    = 1503
	cmdDataRdy     = 1504

	cmdAttLogRrq     = 13
	cmdDevice        = 11
	cmdGetFreeSizes  = 50
	cmdRegEvent      = 500

	ackOK        = 2000
	ackError     = 2001
	ackData      = 2002
	ackUnauth    = 2005
	ackErrorData = 0xFFFB
	ackErrorInit = 0xFFFC
	ackErrorCmd  = 0xFFFD
	ackUnknown   = 0xFFFF
)

// maxChunk is the per-chunk payload limit used by the device's bulk
// transfer protocol.
const maxChunk = 65472

// ushortMax bounds the 16-bit reply-id counter.
const ushortMax = 65535

// Request payloads for the two bulk-read operations, sent as the data
// portion of CMD_DATA_WRRQ.
var (
	requestDataUsers      = []byte{0x01, 0x09, 0x00, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	requestDataAttendance = []byte{0x01, 0x0d, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

// tcpMagic is the literal 4-byte prefix that opens every TCP envelope.
var tcpMagic = [4]byte{0x50, 0x50, 0x82, 0x7D}

// commandName returns a human-readable name for a command or ack code,
// used when surfacing protocol errors (spec.md §7). Unknown codes return
// a numeric fallback.
func commandName(code uint16) string {
	switch code {
	case cmdConnect:
		return "CMD_CONNECT"
	case cmdExit:
		return "CMD_EXIT"
	case cmdAuth:
		return "CMD_AUTH"
	case cmdPrepareData:
		return "CMD_PREPARE_DATA"
	case cmdData:
		return "CMD_DATA"
	case cmdFreeData:
		return "CMD_FREE_DATA"
	case cmdDataWrrq:
		return "CMD_DATA_WRRQ"
	case cmdDataRdy:
		return "CMD_DATA_RDY"
	case cmdAttLogRrq:
		return "CMD_ATTLOG_RRQ"
	case cmdDevice:
		return "CMD_DEVICE"
	case cmdGetFreeSizes:
		return "CMD_GET_FREE_SIZES"
	case cmdRegEvent:
		return "CMD_REG_EVENT"
	case ackOK:
		return "CMD_ACK_OK"
	case ackError:
		return "CMD_ACK_ERROR"
	case ackData:
		return "CMD_ACK_DATA"
	case ackUnauth:
		return "CMD_ACK_UNAUTH"
	case ackErrorData:
		return "CMD_ACK_ERROR_DATA"
	case ackErrorInit:
		return "CMD_ACK_ERROR_INIT"
	case ackErrorCmd:
		return "CMD_ACK_ERROR_CMD"
	case ackUnknown:
		return "CMD_ACK_UNKNOWN"
	default:
		return fmt.Sprintf("unknown command %d", code)
	}
}
