package bridge

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/logging"
	"github.com/muurk/lightbridge/internal/protocol"
	"github.com/muurk/lightbridge/internal/transport"
)

// Default timing for operations whose caller does not pass a timeout.
const (
	DefaultDiscoveryTimeout = 3 * time.Second
	DefaultRequestTimeout   = 2 * time.Second
)

// Config holds the bridge's network constants. The zero value of any field
// selects its default.
type Config struct {
	// ListenAddr is the local UDP address; devices answer to port 4002.
	ListenAddr string
	// MulticastAddr is the discovery destination.
	MulticastAddr string
	// ControlPort is used when a caller does not name a device port.
	ControlPort int
	// DiscoveryTimeout is the window used by DiscoverDefault.
	DiscoveryTimeout time.Duration
	// RequestTimeout applies to requests without an explicit timeout.
	RequestTimeout time.Duration
	// MaxPayloadSize caps outgoing datagrams.
	MaxPayloadSize int
}

// DefaultConfig returns the configuration for Govee LAN-API devices.
func DefaultConfig() Config {
	return Config{
		ListenAddr:       transport.DefaultListenAddr,
		MulticastAddr:    protocol.DefaultMulticastAddr,
		ControlPort:      protocol.DefaultControlPort,
		DiscoveryTimeout: DefaultDiscoveryTimeout,
		RequestTimeout:   DefaultRequestTimeout,
		MaxPayloadSize:   protocol.DefaultMaxPayloadSize,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.MulticastAddr == "" {
		c.MulticastAddr = d.MulticastAddr
	}
	if c.ControlPort == 0 {
		c.ControlPort = d.ControlPort
	}
	if c.DiscoveryTimeout <= 0 {
		c.DiscoveryTimeout = d.DiscoveryTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.MaxPayloadSize <= 0 {
		c.MaxPayloadSize = d.MaxPayloadSize
	}
	return c
}

// State is the socket lifecycle state of a Bridge.
type State int

const (
	StateUninitialized State = iota
	StateOpen
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateOpen:
		return "open"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Stats counts inbound datagrams by outcome.
type Stats struct {
	Received  uint64 `json:"received"`
	Malformed uint64 `json:"malformed"`
	Unmatched uint64 `json:"unmatched"`
}

// Bridge is the facade over the shared UDP socket. The socket is opened
// lazily on first use and shared by every concurrent operation.
type Bridge struct {
	cfg    Config
	codec  protocol.Codec
	router *router

	// open acquires the socket; replaced in tests.
	open func(transport.Config) (*transport.Socket, error)

	mu       sync.Mutex
	state    State
	socket   *transport.Socket
	openErr  error
	recvDone chan struct{}

	received  atomic.Uint64
	malformed atomic.Uint64
	unmatched atomic.Uint64
}

// New creates a bridge. No socket is opened until the first operation.
func New(cfg Config) *Bridge {
	cfg = cfg.withDefaults()
	return &Bridge{
		cfg:    cfg,
		codec:  protocol.Codec{MaxPayloadSize: cfg.MaxPayloadSize},
		router: newRouter(),
		open:   transport.Open,
	}
}

// Config returns the effective configuration.
func (b *Bridge) Config() Config {
	return b.cfg
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns inbound datagram counters.
func (b *Bridge) Stats() Stats {
	return Stats{
		Received:  b.received.Load(),
		Malformed: b.malformed.Load(),
		Unmatched: b.unmatched.Load(),
	}
}

// ensureOpen returns the shared socket, binding it on first use. A bind
// failure is fatal to this bridge: later calls return the same error.
func (b *Bridge) ensureOpen() (*transport.Socket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		return b.socket, nil
	case StateFailed:
		return nil, b.openErr
	case StateClosed:
		return nil, newCancelledError("", "bridge closed", nil)
	}

	sock, err := b.open(transport.Config{ListenAddr: b.cfg.ListenAddr})
	if err != nil {
		b.state = StateFailed
		b.openErr = newBindError(err)
		logging.Error("Failed to open bridge socket", zap.Error(err))
		return nil, b.openErr
	}

	b.socket = sock
	b.state = StateOpen
	b.recvDone = make(chan struct{})
	go b.receiveLoop(sock, b.recvDone)

	logging.Info("Bridge socket open", zap.String("addr", sock.LocalAddr().String()))
	return sock, nil
}

func (b *Bridge) receiveLoop(sock *transport.Socket, done chan struct{}) {
	defer close(done)
	if err := sock.Receive(b.handleDatagram); err != nil {
		logging.Error("Receive loop stopped", zap.Error(err))
	}
}

func (b *Bridge) handleDatagram(d transport.Datagram) {
	b.received.Add(1)

	frame, err := b.codec.Decode(d.Payload)
	if err != nil {
		b.malformed.Add(1)
		logging.Debug("Discarding malformed datagram",
			zap.String("source", d.Source.String()),
			zap.Error(err))
		return
	}

	if !b.router.dispatch(inbound{frame: frame, source: d.Source, received: d.ReceivedAt}) {
		b.unmatched.Add(1)
		logging.Debug("Discarding unmatched frame",
			zap.String("source", d.Source.String()),
			zap.String("cmd", frame.Cmd))
	}
}

// Close fails in-flight requests and discovery windows with a cancellation
// error and releases the socket. Safe to call repeatedly.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.state == StateClosed {
		b.mu.Unlock()
		return nil
	}
	b.state = StateClosed
	sock := b.socket
	done := b.recvDone
	b.mu.Unlock()

	b.router.drain(newCancelledError("", "bridge closed", nil))

	if sock == nil {
		return nil
	}
	err := sock.Close()
	<-done
	logging.Info("Bridge closed")
	return err
}
