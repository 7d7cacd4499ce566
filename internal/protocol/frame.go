package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultMaxPayloadSize is the largest datagram the codec produces or accepts
// for sending. 1472 bytes fits a single Ethernet frame without IP fragmentation.
const DefaultMaxPayloadSize = 1472

var (
	// ErrEncoding is wrapped by every encode-side failure.
	ErrEncoding = errors.New("frame encoding failed")

	// ErrPayloadTooLarge is returned when an encoded frame exceeds the size limit.
	ErrPayloadTooLarge = fmt.Errorf("%w: payload too large", ErrEncoding)

	// ErrMalformedFrame is wrapped by every decode-side failure.
	ErrMalformedFrame = errors.New("malformed frame")
)

// Frame is one protocol message: a command tag and its opaque data object.
type Frame struct {
	Cmd  string
	Data json.RawMessage
}

type envelope struct {
	Msg message `json:"msg"`
}

type message struct {
	Cmd  string          `json:"cmd"`
	Data json.RawMessage `json:"data"`
}

var emptyObject = json.RawMessage(`{}`)

// NewFrame builds a frame, marshaling data into the frame's data object.
// A nil data value becomes an empty object.
func NewFrame(cmd string, data any) (*Frame, error) {
	if cmd == "" {
		return nil, fmt.Errorf("%w: missing command", ErrEncoding)
	}
	if data == nil {
		return &Frame{Cmd: cmd, Data: emptyObject}, nil
	}
	if raw, ok := data.(json.RawMessage); ok {
		return &Frame{Cmd: cmd, Data: raw}, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s data: %v", ErrEncoding, cmd, err)
	}
	return &Frame{Cmd: cmd, Data: raw}, nil
}

// String returns a short description of the frame for logs.
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{cmd=%s, data=%d bytes}", f.Cmd, len(f.Data))
}

// Codec encodes and decodes frames with a fixed size limit.
// The zero value uses DefaultMaxPayloadSize.
type Codec struct {
	MaxPayloadSize int
}

// DefaultCodec is the codec used by the package-level helpers.
var DefaultCodec = Codec{MaxPayloadSize: DefaultMaxPayloadSize}

func (c Codec) limit() int {
	if c.MaxPayloadSize <= 0 {
		return DefaultMaxPayloadSize
	}
	return c.MaxPayloadSize
}

// Encode serializes a frame into its wire envelope.
func (c Codec) Encode(f *Frame) ([]byte, error) {
	if f == nil || f.Cmd == "" {
		return nil, fmt.Errorf("%w: missing command", ErrEncoding)
	}

	data := f.Data
	if len(data) == 0 {
		data = emptyObject
	}

	out, err := json.Marshal(envelope{Msg: message{Cmd: f.Cmd, Data: data}})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncoding, f.Cmd, err)
	}
	if err := c.checkSize(out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeBody prepares a caller-supplied envelope for the wire. The body must
// already be shaped like {"msg":{"cmd":...}}; it is validated against the
// envelope schema and compacted, never rewritten.
func (c Codec) EncodeBody(body json.RawMessage) ([]byte, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrEncoding)
	}
	if err := ValidateEnvelope(body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	out := buf.Bytes()
	if err := c.checkSize(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode parses one datagram into a frame.
func (c Codec) Decode(b []byte) (*Frame, error) {
	var outer struct {
		Msg json.RawMessage `json:"msg"`
	}
	if err := json.Unmarshal(b, &outer); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedFrame, err)
	}
	if len(outer.Msg) == 0 || bytes.Equal(outer.Msg, []byte("null")) {
		return nil, fmt.Errorf("%w: missing msg", ErrMalformedFrame)
	}

	var msg message
	if err := json.Unmarshal(outer.Msg, &msg); err != nil {
		return nil, fmt.Errorf("%w: msg: %v", ErrMalformedFrame, err)
	}
	if msg.Cmd == "" {
		return nil, fmt.Errorf("%w: missing msg.cmd", ErrMalformedFrame)
	}

	f := &Frame{Cmd: msg.Cmd}
	if len(msg.Data) > 0 && !bytes.Equal(msg.Data, []byte("null")) {
		f.Data = msg.Data
	}
	return f, nil
}

func (c Codec) checkSize(out []byte) error {
	if maxSize := c.limit(); len(out) > maxSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(out), maxSize)
	}
	return nil
}

// Encode serializes a frame with DefaultCodec.
func Encode(f *Frame) ([]byte, error) {
	return DefaultCodec.Encode(f)
}

// Decode parses a datagram with DefaultCodec.
func Decode(b []byte) (*Frame, error) {
	return DefaultCodec.Decode(b)
}
