package bridge

import (
	"context"
	"encoding/json"

	"github.com/muurk/lightbridge/internal/protocol"
)

// Send transmits a caller-built envelope to a device and returns as soon as
// the datagram is handed to the OS. Devices do not acknowledge commands.
func (b *Bridge) Send(ctx context.Context, host string, port int, body json.RawMessage) error {
	payload, err := b.codec.EncodeBody(body)
	if err != nil {
		return wrapEncoding(err)
	}
	return b.sendPayload(ctx, DeviceAddress{Host: host, Port: port}, payload)
}

// SendCommand transmits a frame built with the protocol builders.
func (b *Bridge) SendCommand(ctx context.Context, addr DeviceAddress, f *protocol.Frame) error {
	payload, err := b.codec.Encode(f)
	if err != nil {
		return wrapEncoding(err)
	}
	return b.sendPayload(ctx, addr, payload)
}

func (b *Bridge) sendPayload(ctx context.Context, addr DeviceAddress, payload []byte) error {
	sock, err := b.ensureOpen()
	if err != nil {
		return err
	}

	dest, err := b.resolve(ctx, addr)
	if err != nil {
		return err
	}

	if err := sock.SendTo(ctx, dest, payload); err != nil {
		return ClassifySendError(err, dest.String())
	}
	return nil
}
