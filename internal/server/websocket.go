package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/commands"
	"github.com/muurk/lightbridge/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// RPCRequest is one call on the /ws channel
type RPCRequest struct {
	ID      json.RawMessage `json:"id"`
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// RPCResponse answers the RPCRequest with the same id
type RPCResponse struct {
	ID     json.RawMessage `json:"id"`
	OK     bool            `json:"ok"`
	Result any             `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// session is one WebSocket client. Requests run concurrently; writes are
// serialized by writeMu.
type session struct {
	id         string
	remoteAddr string
	conn       *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc

	writeMu   sync.Mutex
	inflight  sync.WaitGroup
	closeOnce sync.Once
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.config.AllowOrigins) == 0 {
		return true
	}
	for _, allowed := range s.config.AllowOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", c.ClientIP()),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:         uuid.New().String(),
		remoteAddr: c.ClientIP(),
		conn:       conn,
		ctx:        ctx,
		cancel:     cancel,
	}

	if !s.addSession(sess) {
		sess.close()
		return
	}
	defer s.removeSession(sess)

	logging.Info("WebSocket session opened",
		zap.String("session", sess.id),
		zap.String("remote_addr", sess.remoteAddr),
	)
	sess.run(s.registry)
	logging.Info("WebSocket session closed", zap.String("session", sess.id))
}

// run reads requests until the peer goes away, then waits for in-flight
// requests before returning.
func (sess *session) run(registry *commands.Registry) {
	defer func() {
		sess.cancel()
		sess.inflight.Wait()
		sess.close()
	}()

	sess.conn.SetReadLimit(maxMessageSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go sess.keepalive()

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("WebSocket read failed",
					zap.String("session", sess.id),
					zap.Error(err),
				)
			}
			return
		}

		var req RPCRequest
		if err := json.Unmarshal(data, &req); err != nil {
			logging.LogRPCMessage(sess.id, "received", "", data)
			sess.write(RPCResponse{OK: false, Error: "invalid request: " + err.Error()})
			continue
		}
		logging.LogRPCMessage(sess.id, "received", req.Command, data)

		if req.Command == "" {
			sess.write(RPCResponse{ID: req.ID, OK: false, Error: "invalid request: missing command"})
			continue
		}

		sess.inflight.Add(1)
		go func() {
			defer sess.inflight.Done()
			sess.handle(registry, req)
		}()
	}
}

func (sess *session) handle(registry *commands.Registry, req RPCRequest) {
	result, err := registry.Invoke(sess.ctx, req.Command, req.Args)
	if err != nil {
		sess.write(RPCResponse{ID: req.ID, OK: false, Error: commands.ErrorString(err)})
		return
	}
	sess.write(RPCResponse{ID: req.ID, OK: true, Result: result})
}

func (sess *session) write(resp RPCResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(RPCResponse{ID: resp.ID, OK: false, Error: "failed to encode result: " + err.Error()})
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logging.Debug("WebSocket write failed",
			zap.String("session", sess.id),
			zap.Error(err),
		)
		return
	}
	logging.LogRPCMessage(sess.id, "sent", "", data)
}

func (sess *session) keepalive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-sess.ctx.Done():
			return
		}
	}
}

// close cancels in-flight requests and closes the connection. Safe to call
// more than once.
func (sess *session) close() {
	sess.closeOnce.Do(func() {
		sess.cancel()
		_ = sess.conn.Close()
	})
}
