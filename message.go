package ulog

import (
	"encoding/binary"
	"strconv"

	"github.com/pkg/errors"
)

// MessageType identifies the kind of a framed message within a ULog stream.
type MessageType byte

const (
	MsgFlagBits         MessageType = 'B'
	MsgFormat           MessageType = 'F'
	MsgInfo             MessageType = 'I'
	MsgInfoMulti        MessageType = 'M'
	MsgParameter        MessageType = 'P'
	MsgParameterDefault MessageType = 'Q'
	MsgAddLogged        MessageType = 'A'
	MsgRemoveLogged     MessageType = 'R'
	MsgData             MessageType = 'D'
	MsgLogging          MessageType = 'L'
	MsgLoggingTagged    MessageType = 'C'
	MsgSync             MessageType = 'S'
	MsgDropout          MessageType = 'O'
)

func (t MessageType) String() string {
	return strconv.QuoteRune(rune(t))
}

const (
	messageHeaderSize = 3
	maxPayloadSize    = 1<<16 - 1
)

var errPayloadTooBig = errors.New("ulog: message payload exceeds 65535 bytes")

// Message is a single framed message: a little-endian uint16 payload size,
// a one-byte type, and the payload.
type Message []byte

func newMessage(t MessageType, payload ...[]byte) (Message, error) {
	n := 0
	for _, p := range payload {
		n += len(p)
	}
	if n > maxPayloadSize {
		return nil, errors.Wrapf(errPayloadTooBig, "type %s", t)
	}
	m := make(Message, messageHeaderSize, messageHeaderSize+n)
	binary.LittleEndian.PutUint16(m[:2], uint16(n))
	m[2] = byte(t)
	for _, p := range payload {
		m = append(m, p...)
	}
	return m, nil
}

// Type returns the message's type.
func (m Message) Type() MessageType {
	return MessageType(m[2])
}

// Payload returns the message's payload, without the framing header.
func (m Message) Payload() []byte {
	return m[messageHeaderSize:]
}

// Len returns the encoded size of m, framing header included.
func (m Message) Len() int {
	return len(m)
}
