package bridge

import (
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muurk/lightbridge/internal/transport"
)

type packet struct {
	data []byte
	addr *net.UDPAddr
}

// fakeConn is an in-memory net.PacketConn. Datagrams injected with deliver
// appear to come from any address, so tests can play several devices.
type fakeConn struct {
	inbox     chan packet
	closed    chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	sent     []packet
	onWrite  func(c *fakeConn, p packet)
	writeErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbox:  make(chan packet, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadFrom(b []byte) (int, net.Addr, error) {
	select {
	case p := <-c.inbox:
		n := copy(b, p.data)
		return n, p.addr, nil
	case <-c.closed:
		return 0, nil, net.ErrClosed
	}
}

func (c *fakeConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	c.mu.Lock()
	if c.writeErr != nil {
		err := c.writeErr
		c.mu.Unlock()
		return 0, err
	}
	p := packet{data: append([]byte(nil), b...), addr: addr.(*net.UDPAddr)}
	c.sent = append(c.sent, p)
	hook := c.onWrite
	c.mu.Unlock()

	if hook != nil {
		hook(c, p)
	}
	return len(b), nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4002}
}

func (c *fakeConn) SetDeadline(time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) deliver(from string, data string) {
	addr, err := net.ResolveUDPAddr("udp4", from)
	if err != nil {
		panic(err)
	}
	c.inbox <- packet{data: []byte(data), addr: addr}
}

func (c *fakeConn) setOnWrite(fn func(c *fakeConn, p packet)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onWrite = fn
}

func (c *fakeConn) setWriteErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

func (c *fakeConn) sentPackets() []packet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]packet(nil), c.sent...)
}

// newTestBridge returns a bridge whose socket is backed by conn and a counter
// of how many times the socket was opened.
func newTestBridge(t *testing.T, conn *fakeConn, cfg Config) (*Bridge, *atomic.Int32) {
	t.Helper()

	b := New(cfg)
	opens := &atomic.Int32{}
	b.open = func(transport.Config) (*transport.Socket, error) {
		opens.Add(1)
		return transport.New(conn), nil
	}
	t.Cleanup(func() { _ = b.Close() })
	return b, opens
}
