package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

func openLoopback(t *testing.T) *Socket {
	t.Helper()
	s, err := Open(Config{ListenAddr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSendAndReceive(t *testing.T) {
	s := openLoopback(t)

	got := make(chan Datagram, 1)
	go func() { _ = s.Receive(func(d Datagram) { got <- d }) }()

	peer, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer peer.Close()

	if _, err := peer.WriteTo([]byte("hello"), s.LocalAddr()); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	select {
	case d := <-got:
		if string(d.Payload) != "hello" {
			t.Errorf("Payload = %q, want hello", d.Payload)
		}
		if d.Source.Port != peer.LocalAddr().(*net.UDPAddr).Port {
			t.Errorf("Source = %v, want %v", d.Source, peer.LocalAddr())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for datagram")
	}

	// And the other direction.
	dest := peer.LocalAddr().(*net.UDPAddr)
	if err := s.SendTo(context.Background(), dest, []byte("pong")); err != nil {
		t.Fatalf("SendTo() unexpected error: %v", err)
	}
	buf := make([]byte, 16)
	_ = peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := peer.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if string(buf[:n]) != "pong" {
		t.Errorf("peer got %q, want pong", buf[:n])
	}
}

func TestReceiveStopsOnClose(t *testing.T) {
	s := openLoopback(t)

	done := make(chan error, 1)
	go func() { done <- s.Receive(func(Datagram) {}) }()

	time.Sleep(20 * time.Millisecond)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Receive() = %v, want nil after close", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("receive loop did not exit after Close")
	}

	// Close is idempotent.
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}

func TestSendAfterClose(t *testing.T) {
	s := openLoopback(t)
	_ = s.Close()

	err := s.SendTo(context.Background(), &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}, []byte("x"))
	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("SendTo() error = %v, want *SendError", err)
	}
}

func TestSendCancelledContext(t *testing.T) {
	s := openLoopback(t)

	peer, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer peer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.SendTo(ctx, peer.LocalAddr().(*net.UDPAddr), []byte("x"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("SendTo() error = %v, want context.Canceled", err)
	}
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		t.Errorf("SendTo() error = %v, should not be a *SendError", err)
	}

	_ = peer.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	if n, _, err := peer.ReadFrom(make([]byte, 16)); err == nil {
		t.Errorf("peer received %d bytes, want nothing", n)
	}
}

func TestConcurrentSendsIgnoreExpiredContexts(t *testing.T) {
	s := openLoopback(t)

	peer, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer peer.Close()
	go func() {
		buf := make([]byte, 64)
		for {
			if _, _, err := peer.ReadFrom(buf); err != nil {
				return
			}
		}
	}()
	dest := peer.LocalAddr().(*net.UDPAddr)

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if err := s.SendTo(expired, dest, []byte("late")); !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("expired SendTo() = %v, want context.DeadlineExceeded", err)
				return
			}
		}
	}()

	failures := 0
	var first error
	for i := 0; i < 20000; i++ {
		if err := s.SendTo(context.Background(), dest, []byte("ok")); err != nil {
			if first == nil {
				first = err
			}
			failures++
		}
	}
	close(stop)
	wg.Wait()

	if failures > 0 {
		t.Fatalf("%d sends failed alongside expired contexts, first: %v", failures, first)
	}
}

func TestOpenBindError(t *testing.T) {
	first := openLoopback(t)

	_, err := Open(Config{ListenAddr: first.LocalAddr().String()})
	var bindErr *BindError
	if !errors.As(err, &bindErr) {
		t.Fatalf("Open() error = %v, want *BindError", err)
	}
	if bindErr.Addr != first.LocalAddr().String() {
		t.Errorf("BindError.Addr = %q, want %q", bindErr.Addr, first.LocalAddr().String())
	}
}

func TestReceiveOnlyOnce(t *testing.T) {
	s := openLoopback(t)
	go func() { _ = s.Receive(func(Datagram) {}) }()
	time.Sleep(20 * time.Millisecond)

	if err := s.Receive(func(Datagram) {}); err == nil {
		t.Error("second Receive() should fail")
	}
}
