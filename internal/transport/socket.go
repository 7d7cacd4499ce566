// Package transport owns the bridge's single UDP endpoint: binding it, sending
// datagrams to unicast or multicast destinations, and running the receive loop.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/logging"
)

// DefaultListenAddr binds the port Govee devices send their responses to.
const DefaultListenAddr = ":4002"

// readBufferSize is larger than any datagram we accept so truncation is detectable.
const readBufferSize = 64 * 1024

// Config configures the socket.
type Config struct {
	// ListenAddr is the local address to bind (default ":4002").
	ListenAddr string
}

// Datagram is one received packet.
type Datagram struct {
	Source     *net.UDPAddr
	Payload    []byte
	ReceivedAt time.Time
}

// BindError reports that the local endpoint could not be acquired.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// SendError reports that the OS refused or failed to route a datagram.
type SendError struct {
	Dest string
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.Dest, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Socket is a bound UDP endpoint shared by all bridge operations.
// SendTo may be called from any goroutine; Receive runs in exactly one.
type Socket struct {
	conn      net.PacketConn
	closeOnce sync.Once
	closed    chan struct{}
	receiving sync.Once
}

// Open binds a UDP endpoint.
func Open(cfg Config) (*Socket, error) {
	addr := cfg.ListenAddr
	if addr == "" {
		addr = DefaultListenAddr
	}

	conn, err := net.ListenPacket("udp4", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}

	logging.Info("UDP socket bound", zap.String("addr", conn.LocalAddr().String()))
	return New(conn), nil
}

// New wraps an existing packet connection.
func New(conn net.PacketConn) *Socket {
	return &Socket{
		conn:   conn,
		closed: make(chan struct{}),
	}
}

// LocalAddr returns the bound address.
func (s *Socket) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// SendTo writes one datagram. A done context returns ctx.Err() without
// writing. The shared socket never carries a write deadline.
func (s *Socket) SendTo(ctx context.Context, dest *net.UDPAddr, payload []byte) error {
	select {
	case <-s.closed:
		return &SendError{Dest: dest.String(), Err: net.ErrClosed}
	default:
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	logging.LogDatagram("out", dest.String(), payload)
	n, err := s.conn.WriteTo(payload, dest)
	if err != nil {
		return &SendError{Dest: dest.String(), Err: err}
	}
	if n != len(payload) {
		return &SendError{Dest: dest.String(), Err: fmt.Errorf("short write: %d of %d bytes", n, len(payload))}
	}
	return nil
}

// Receive runs the receive loop, handing each datagram to handler until the
// socket is closed. It returns nil after Close. Transient read errors are
// logged and the loop continues. Receive may only be called once.
func (s *Socket) Receive(handler func(Datagram)) error {
	started := false
	s.receiving.Do(func() { started = true })
	if !started {
		return errors.New("receive loop already started")
	}

	buf := make([]byte, readBufferSize)
	for {
		n, addr, err := s.conn.ReadFrom(buf)
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			logging.Warn("UDP read failed", zap.Error(err))
			select {
			case <-s.closed:
				return nil
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		logging.LogDatagram("in", addr.String(), payload)

		handler(Datagram{
			Source:     toUDPAddr(addr),
			Payload:    payload,
			ReceivedAt: time.Now(),
		})
	}
}

// Close closes the socket and stops the receive loop. Safe to call repeatedly.
func (s *Socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.conn.Close()
	})
	return err
}

func (s *Socket) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func toUDPAddr(addr net.Addr) *net.UDPAddr {
	if u, ok := addr.(*net.UDPAddr); ok {
		return u
	}
	u, err := net.ResolveUDPAddr("udp", addr.String())
	if err != nil {
		return &net.UDPAddr{}
	}
	return u
}
