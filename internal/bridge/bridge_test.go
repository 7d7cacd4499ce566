package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/lightbridge/internal/protocol"
	"github.com/muurk/lightbridge/internal/transport"
)

func statusReply(brightness int) string {
	return fmt.Sprintf(`{"msg":{"cmd":"devStatus","data":{"onOff":1,"brightness":%d}}}`, brightness)
}

func isStatusRequest(p packet) bool {
	return strings.Contains(string(p.data), `"cmd":"devStatus"`)
}

func TestGetStatus(t *testing.T) {
	conn := newFakeConn()
	conn.setOnWrite(func(c *fakeConn, p packet) {
		if isStatusRequest(p) && p.addr.IP.String() == "192.168.1.50" {
			c.deliver("192.168.1.50:4003", statusReply(42))
		}
	})
	b, _ := newTestBridge(t, conn, Config{})

	st, err := b.GetStatus(context.Background(), "192.168.1.50", 0)
	require.NoError(t, err)
	assert.True(t, st.Online)
	assert.True(t, st.On)
	assert.Equal(t, 42, st.Brightness)
	assert.Nil(t, st.Color)

	sent := conn.sentPackets()
	require.Len(t, sent, 1)
	assert.Equal(t, `{"msg":{"cmd":"devStatus","data":{}}}`, string(sent[0].data))
	assert.Equal(t, 4003, sent[0].addr.Port)
	assert.Equal(t, 0, b.router.pendingCount())
}

func TestGetStatusTimeoutDiscardsLateResponse(t *testing.T) {
	conn := newFakeConn()
	b, _ := newTestBridge(t, conn, Config{RequestTimeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := b.GetStatus(context.Background(), "10.0.0.9", 0)
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "want timeout, got %v", err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, 0, b.router.pendingCount())

	// The reply finally shows up and nobody is waiting for it.
	conn.deliver("10.0.0.9:4003", statusReply(99))
	require.Eventually(t, func() bool { return b.Stats().Unmatched == 1 }, time.Second, 5*time.Millisecond)

	// A later request only sees its own reply.
	conn.setOnWrite(func(c *fakeConn, p packet) {
		if isStatusRequest(p) {
			c.deliver("10.0.0.9:4003", statusReply(7))
		}
	})
	st, err := b.GetStatus(context.Background(), "10.0.0.9", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, st.Brightness)
}

func TestConcurrentRequestsAreIsolated(t *testing.T) {
	conn := newFakeConn()
	conn.setOnWrite(func(c *fakeConn, p packet) {
		if !isStatusRequest(p) {
			return
		}
		switch p.addr.IP.String() {
		case "10.0.0.1":
			// A answers last.
			go func() {
				time.Sleep(40 * time.Millisecond)
				c.deliver("10.0.0.1:4003", statusReply(11))
			}()
		case "10.0.0.2":
			c.deliver("10.0.0.2:4003", statusReply(22))
		}
	})
	b, _ := newTestBridge(t, conn, Config{RequestTimeout: time.Second})

	var wg sync.WaitGroup
	results := make(map[string]int)
	var mu sync.Mutex
	for _, host := range []string{"10.0.0.1", "10.0.0.2"} {
		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			st, err := b.GetStatus(context.Background(), host, 0)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			results[host] = st.Brightness
			mu.Unlock()
		}(host)
	}
	wg.Wait()

	assert.Equal(t, map[string]int{"10.0.0.1": 11, "10.0.0.2": 22}, results)
}

func TestResponseFromOtherDeviceIsNotMatched(t *testing.T) {
	conn := newFakeConn()
	conn.setOnWrite(func(c *fakeConn, p packet) {
		if isStatusRequest(p) {
			c.deliver("10.0.0.7:4003", statusReply(50))
		}
	})
	b, _ := newTestBridge(t, conn, Config{RequestTimeout: 50 * time.Millisecond})

	_, err := b.GetStatus(context.Background(), "10.0.0.8", 0)
	assert.True(t, IsTimeout(err), "want timeout, got %v", err)
}

func TestMalformedDatagramDoesNotStopReceiving(t *testing.T) {
	conn := newFakeConn()
	conn.setOnWrite(func(c *fakeConn, p packet) {
		if isStatusRequest(p) {
			c.deliver("10.0.0.3:4003", `not json at all`)
			c.deliver("10.0.0.3:4003", `{"msg":{"data":{}}}`)
			c.deliver("10.0.0.3:4003", statusReply(64))
		}
	})
	b, _ := newTestBridge(t, conn, Config{})

	st, err := b.GetStatus(context.Background(), "10.0.0.3", 0)
	require.NoError(t, err)
	assert.Equal(t, 64, st.Brightness)
	assert.Equal(t, uint64(2), b.Stats().Malformed)
}

func TestGetStatusMalformedData(t *testing.T) {
	conn := newFakeConn()
	conn.setOnWrite(func(c *fakeConn, p packet) {
		c.deliver("10.0.0.4:4003", `{"msg":{"cmd":"devStatus","data":[1,2]}}`)
	})
	b, _ := newTestBridge(t, conn, Config{})

	_, err := b.GetStatus(context.Background(), "10.0.0.4", 0)
	assert.True(t, IsMalformed(err), "want malformed, got %v", err)
}

func TestRequestContextCancel(t *testing.T) {
	conn := newFakeConn()
	b, _ := newTestBridge(t, conn, Config{RequestTimeout: 5 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		assert.Eventually(t, func() bool { return b.router.pendingCount() == 1 }, time.Second, time.Millisecond)
		cancel()
	}()

	_, err := b.Request(ctx, DeviceAddress{Host: "10.0.0.5"}, protocol.StatusRequest(), protocol.CmdStatus, 0)
	assert.True(t, IsCancelled(err), "want cancelled, got %v", err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, b.router.pendingCount())
}

func TestSendReturnsWithoutWaiting(t *testing.T) {
	conn := newFakeConn()
	b, _ := newTestBridge(t, conn, Config{})

	body := json.RawMessage(`{"msg": {"cmd": "turn", "data": {"value": 1}}}`)
	start := time.Now()
	require.NoError(t, b.Send(context.Background(), "10.0.0.6", 0, body))
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	sent := conn.sentPackets()
	require.Len(t, sent, 1)
	assert.Equal(t, `{"msg":{"cmd":"turn","data":{"value":1}}}`, string(sent[0].data))
	assert.Equal(t, "10.0.0.6:4003", sent[0].addr.String())
	assert.Equal(t, 0, b.router.pendingCount())
}

func TestSendCustomPort(t *testing.T) {
	conn := newFakeConn()
	b, _ := newTestBridge(t, conn, Config{})

	require.NoError(t, b.SendCommand(context.Background(), DeviceAddress{Host: "10.0.0.6", Port: 5000}, protocol.TurnCommand(false)))
	sent := conn.sentPackets()
	require.Len(t, sent, 1)
	assert.Equal(t, 5000, sent[0].addr.Port)
}

func TestSendCancelledContextWritesNothing(t *testing.T) {
	conn := newFakeConn()
	b, _ := newTestBridge(t, conn, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Send(ctx, "10.0.0.6", 0, json.RawMessage(`{"msg":{"cmd":"turn","data":{"value":1}}}`))
	assert.True(t, IsCancelled(err), "want cancelled, got %v", err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, IsSendError(err))
	assert.Empty(t, conn.sentPackets())
}

func TestSendErrors(t *testing.T) {
	tests := []struct {
		name  string
		host  string
		body  string
		setup func(c *fakeConn)
		check func(err error) bool
	}{
		{
			name:  "invalid body",
			host:  "10.0.0.6",
			body:  `{"cmd":"turn"}`,
			check: IsEncodingError,
		},
		{
			name:  "oversized body",
			host:  "10.0.0.6",
			body:  `{"msg":{"cmd":"turn","data":{"pad":"` + strings.Repeat("x", 2000) + `"}}}`,
			check: IsEncodingError,
		},
		{
			name:  "missing host",
			host:  "",
			body:  `{"msg":{"cmd":"turn"}}`,
			check: IsSendError,
		},
		{
			name: "host unreachable",
			host: "10.0.0.6",
			body: `{"msg":{"cmd":"turn"}}`,
			setup: func(c *fakeConn) {
				c.setWriteErr(&net.OpError{Op: "write", Net: "udp", Err: syscall.EHOSTUNREACH})
			},
			check: IsSendError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newFakeConn()
			if tt.setup != nil {
				tt.setup(conn)
			}
			b, _ := newTestBridge(t, conn, Config{})

			err := b.Send(context.Background(), tt.host, 0, json.RawMessage(tt.body))
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
}

func TestClassifySendErrorSubtype(t *testing.T) {
	err := ClassifySendError(&net.OpError{Op: "write", Net: "udp", Err: syscall.EHOSTUNREACH}, "10.0.0.1:4003")
	assert.Equal(t, SendErrorHostUnreachable, err.Subtype)
	assert.Equal(t, "Light unreachable - check network connection", GetShortErrorMessage(err))

	err = ClassifySendError(&net.OpError{Op: "write", Net: "udp", Err: syscall.ENETUNREACH}, "10.0.0.1:4003")
	assert.Equal(t, SendErrorNetworkUnreachable, err.Subtype)

	assert.Nil(t, ClassifySendError(nil, ""))
}

func TestDiscoverZeroTimeout(t *testing.T) {
	conn := newFakeConn()
	b, _ := newTestBridge(t, conn, Config{})

	devices, err := b.Discover(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)

	sent := conn.sentPackets()
	require.Len(t, sent, 1)
	assert.Equal(t, "239.255.255.250:4001", sent[0].addr.String())
	assert.Equal(t, `{"msg":{"cmd":"scan","data":{"account_topic":"reserve"}}}`, string(sent[0].data))
}

func TestDiscoverDeduplicates(t *testing.T) {
	conn := newFakeConn()
	conn.setOnWrite(func(c *fakeConn, p packet) {
		if !strings.Contains(string(p.data), `"cmd":"scan"`) {
			return
		}
		c.deliver("10.0.0.2:4001", `{"msg":{"cmd":"scan","data":{"ip":"10.0.0.2","device":"AA","sku":"H6001"}}}`)
		c.deliver("10.0.0.1:4001", `{"msg":{"cmd":"scan","data":{"ip":"10.0.0.1","device":"BB","sku":"H6001"}}}`)
		c.deliver("10.0.0.1:4001", `{"msg":{"cmd":"scan","data":{"ip":"10.0.0.1","device":"BB","sku":"H6002"}}}`)
		c.deliver("10.0.0.3:4003", statusReply(1))
		c.deliver("10.0.0.4:4001", `garbage`)
	})
	b, _ := newTestBridge(t, conn, Config{})

	devices, err := b.Discover(context.Background(), 150*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "10.0.0.1", devices[0].IP)
	assert.Equal(t, "H6002", devices[0].Model)
	assert.Equal(t, "BB", devices[0].DeviceID)
	assert.Equal(t, 4003, devices[0].Port)
	assert.Equal(t, 4001, devices[0].SourcePort)
	assert.Equal(t, "10.0.0.2", devices[1].IP)
	assert.Equal(t, "H6001", devices[1].Model)
}

func TestDiscoverNothingFound(t *testing.T) {
	conn := newFakeConn()
	b, _ := newTestBridge(t, conn, Config{})

	devices, err := b.Discover(context.Background(), 30*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestDiscoverContextCancel(t *testing.T) {
	conn := newFakeConn()
	b, _ := newTestBridge(t, conn, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := b.Discover(ctx, 10*time.Second)
	assert.True(t, IsCancelled(err), "want cancelled, got %v", err)
}

func TestCloseCancelsInFlight(t *testing.T) {
	conn := newFakeConn()
	b, _ := newTestBridge(t, conn, Config{RequestTimeout: 10 * time.Second})

	statusErr := make(chan error, 1)
	go func() {
		_, err := b.GetStatus(context.Background(), "10.0.0.5", 0)
		statusErr <- err
	}()
	discoverErr := make(chan error, 1)
	go func() {
		_, err := b.Discover(context.Background(), 10*time.Second)
		discoverErr <- err
	}()

	require.Eventually(t, func() bool {
		return b.router.pendingCount() == 1 && len(conn.sentPackets()) == 2
	}, time.Second, time.Millisecond)

	require.NoError(t, b.Close())

	for _, ch := range []chan error{statusErr, discoverErr} {
		select {
		case err := <-ch:
			assert.True(t, IsCancelled(err), "want cancelled, got %v", err)
		case <-time.After(time.Second):
			t.Fatal("operation did not return after Close")
		}
	}

	assert.Equal(t, StateClosed, b.State())
	_, err := b.GetStatus(context.Background(), "10.0.0.5", 0)
	assert.True(t, IsCancelled(err), "want cancelled after close, got %v", err)
	assert.NoError(t, b.Close())
}

func TestLazyOpenExactlyOnce(t *testing.T) {
	conn := newFakeConn()
	b, opens := newTestBridge(t, conn, Config{})
	assert.Equal(t, StateUninitialized, b.State())
	assert.Equal(t, int32(0), opens.Load())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, b.SendCommand(context.Background(), DeviceAddress{Host: "10.0.0.1"}, protocol.TurnCommand(true)))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), opens.Load())
	assert.Equal(t, StateOpen, b.State())
	assert.Len(t, conn.sentPackets(), 20)
}

func TestBindErrorIsSticky(t *testing.T) {
	b := New(Config{})
	opens := 0
	b.open = func(cfg transport.Config) (*transport.Socket, error) {
		opens++
		return nil, &transport.BindError{Addr: cfg.ListenAddr, Err: syscall.EADDRINUSE}
	}

	_, err := b.Discover(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, IsBindError(err), "want bind error, got %v", err)
	assert.Equal(t, StateFailed, b.State())

	err = b.Send(context.Background(), "10.0.0.1", 0, json.RawMessage(`{"msg":{"cmd":"turn"}}`))
	assert.True(t, IsBindError(err))
	assert.Equal(t, 1, opens)
	assert.NoError(t, b.Close())
}

func TestCloseBeforeOpen(t *testing.T) {
	b := New(Config{})
	require.NoError(t, b.Close())
	assert.Equal(t, StateClosed, b.State())
}

// TestLoopbackDevice runs the bridge on a real UDP socket against a fake
// device listening on loopback.
func TestLoopbackDevice(t *testing.T) {
	device, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer device.Close()

	go func() {
		buf := make([]byte, 2048)
		for {
			n, from, err := device.ReadFrom(buf)
			if err != nil {
				return
			}
			f, err := protocol.Decode(buf[:n])
			if err != nil || f.Cmd != protocol.CmdStatus {
				continue
			}
			_, _ = device.WriteTo([]byte(statusReply(42)), from)
		}
	}()

	b := New(Config{ListenAddr: "127.0.0.1:0", RequestTimeout: 2 * time.Second})
	defer b.Close()

	port := device.LocalAddr().(*net.UDPAddr).Port
	st, err := b.GetStatus(context.Background(), "127.0.0.1", port)
	require.NoError(t, err)
	assert.True(t, st.On)
	assert.Equal(t, 42, st.Brightness)
}
