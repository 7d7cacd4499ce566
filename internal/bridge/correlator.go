package bridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/logging"
	"github.com/muurk/lightbridge/internal/protocol"
)

// Request sends req to addr and waits for the first frame tagged expectTag
// from that device. The waiter is registered before the datagram leaves, so a
// fast reply cannot be missed. On timeout or cancellation the waiter is
// removed and a late reply is discarded. A timeout <= 0 uses the configured
// request timeout. There are no retries.
func (b *Bridge) Request(ctx context.Context, addr DeviceAddress, req *protocol.Frame, expectTag string, timeout time.Duration) (*protocol.Frame, error) {
	in, err := b.request(ctx, addr, req, expectTag, timeout)
	if err != nil {
		return nil, err
	}
	return in.frame, nil
}

func (b *Bridge) request(ctx context.Context, addr DeviceAddress, req *protocol.Frame, expectTag string, timeout time.Duration) (inbound, error) {
	if timeout <= 0 {
		timeout = b.cfg.RequestTimeout
	}

	sock, err := b.ensureOpen()
	if err != nil {
		return inbound{}, err
	}

	dest, err := b.resolve(ctx, addr)
	if err != nil {
		return inbound{}, err
	}

	payload, err := b.codec.Encode(req)
	if err != nil {
		return inbound{}, wrapEncoding(err)
	}

	p, err := b.router.register(correlationKey{host: dest.IP.String(), tag: expectTag})
	if err != nil {
		return inbound{}, err
	}

	if err := sock.SendTo(ctx, dest, payload); err != nil {
		b.router.cancel(p)
		return inbound{}, ClassifySendError(err, dest.String())
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-p.done:
		return res.in, res.err

	case <-timer.C:
		if b.router.cancel(p) {
			logging.Debug("Request timed out",
				zap.String("device", dest.String()),
				zap.String("expect", expectTag),
				zap.Duration("timeout", timeout))
			return inbound{}, newTimeoutError(dest.String(), expectTag, timeout)
		}
		res := <-p.done
		return res.in, res.err

	case <-ctx.Done():
		if b.router.cancel(p) {
			return inbound{}, newCancelledError(dest.String(), "request cancelled", ctx.Err())
		}
		res := <-p.done
		return res.in, res.err
	}
}
