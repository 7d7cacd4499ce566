package bridge

import (
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/logging"
	"github.com/muurk/lightbridge/internal/protocol"
)

// collectorBuffer bounds how many unread scan responses a discovery window queues.
const collectorBuffer = 256

// correlationKey identifies the response a pending request waits for.
// Devices answer from their own port, so only the IP is part of the key.
type correlationKey struct {
	host string
	tag  string
}

type inbound struct {
	frame    *protocol.Frame
	source   *net.UDPAddr
	received time.Time
}

type result struct {
	in  inbound
	err error
}

// pendingRequest is a one-shot waiter. done is written at most once, by
// whoever removes the request from the table.
type pendingRequest struct {
	key  correlationKey
	done chan result
}

// collector receives every unmatched frame with its tag for the lifetime of a
// discovery window.
type collector struct {
	tag     string
	ch      chan inbound
	stopped chan struct{}
}

// router is the correlation table. The mutex guards only the maps and is
// never held while sending, receiving or waiting.
type router struct {
	mu         sync.Mutex
	pending    map[correlationKey][]*pendingRequest
	collectors map[*collector]struct{}
	closed     bool
	closeErr   error
}

func newRouter() *router {
	return &router{
		pending:    make(map[correlationKey][]*pendingRequest),
		collectors: make(map[*collector]struct{}),
	}
}

func (r *router) register(key correlationKey) (*pendingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, r.closeErr
	}
	p := &pendingRequest{key: key, done: make(chan result, 1)}
	r.pending[key] = append(r.pending[key], p)
	return p, nil
}

// cancel removes p from the table. It reports false when p was already
// resolved, in which case its result is waiting in p.done.
func (r *router) cancel(p *pendingRequest) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := r.pending[p.key]
	for i, candidate := range q {
		if candidate != p {
			continue
		}
		q = append(q[:i:i], q[i+1:]...)
		if len(q) == 0 {
			delete(r.pending, p.key)
		} else {
			r.pending[p.key] = q
		}
		return true
	}
	return false
}

func (r *router) subscribe(tag string) (*collector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, r.closeErr
	}
	c := &collector{
		tag:     tag,
		ch:      make(chan inbound, collectorBuffer),
		stopped: make(chan struct{}),
	}
	r.collectors[c] = struct{}{}
	return c, nil
}

func (r *router) unsubscribe(c *collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.collectors, c)
}

// dispatch routes one decoded frame. The oldest request waiting on
// (source IP, tag) consumes it; otherwise it fans out to collectors for the
// tag. It reports whether anyone took the frame.
func (r *router) dispatch(in inbound) bool {
	if in.source == nil || in.frame == nil {
		return false
	}
	key := correlationKey{host: in.source.IP.String(), tag: in.frame.Cmd}

	r.mu.Lock()
	if q := r.pending[key]; len(q) > 0 {
		p := q[0]
		if len(q) == 1 {
			delete(r.pending, key)
		} else {
			r.pending[key] = q[1:]
		}
		r.mu.Unlock()

		p.done <- result{in: in}
		return true
	}

	var targets []*collector
	for c := range r.collectors {
		if c.tag == in.frame.Cmd {
			targets = append(targets, c)
		}
	}
	r.mu.Unlock()

	for _, c := range targets {
		select {
		case c.ch <- in:
		default:
			logging.Debug("Discovery collector full, dropping response",
				zap.String("source", in.source.String()))
		}
	}
	return len(targets) > 0
}

// drain fails every pending request and stops every collector with err.
// The router rejects new registrations afterwards.
func (r *router) drain(err error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.closeErr = err
	pending := r.pending
	collectors := r.collectors
	r.pending = make(map[correlationKey][]*pendingRequest)
	r.collectors = make(map[*collector]struct{})
	r.mu.Unlock()

	for _, q := range pending {
		for _, p := range q {
			p.done <- result{err: err}
		}
	}
	for c := range collectors {
		close(c.stopped)
	}
}

// pendingCount returns the number of registered requests.
func (r *router) pendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, q := range r.pending {
		n += len(q)
	}
	return n
}
