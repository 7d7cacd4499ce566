package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/commands"
	"github.com/muurk/lightbridge/internal/discovery"
	"github.com/muurk/lightbridge/internal/logging"
	"github.com/muurk/lightbridge/internal/version"
)

// DefaultPort is the default HTTP listen port
const DefaultPort = discovery.DefaultPort

// Config holds the server configuration
type Config struct {
	Host string
	Port int

	// Announce registers the server via mDNS so other tools can find it
	Announce bool
	// InstanceName is the mDNS instance name (defaults to lightbridge-<hostname>)
	InstanceName string

	// AllowOrigins lists CORS origins; empty allows any origin
	AllowOrigins []string
}

// HealthSource reports the state of the LAN bridge for /health
type HealthSource interface {
	State() bridge.State
	Stats() bridge.Stats
}

// Server is the HTTP and WebSocket control surface of a bridge
type Server struct {
	config   *Config
	registry *commands.Registry
	health   HealthSource
	engine   *gin.Engine

	httpServer *http.Server
	listener   net.Listener

	wg       sync.WaitGroup
	mu       sync.Mutex
	sessions map[string]*session
	closers  []io.Closer
	shutdown bool
}

// New creates a new Server instance. health may be nil.
func New(config *Config, registry *commands.Registry, health HealthSource) (*Server, error) {
	if registry == nil {
		return nil, errors.New("server requires a command registry")
	}
	if config.Port == 0 {
		config.Port = DefaultPort
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	SetupMiddleware(engine, config.AllowOrigins)

	s := &Server{
		config:   config,
		registry: registry,
		health:   health,
		engine:   engine,
		sessions: make(map[string]*session),
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.engine
}

// RegisterCloser adds a resource closed during Shutdown, after the HTTP
// server has stopped. Closers run in registration order.
func (s *Server) RegisterCloser(c io.Closer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, c)
}

// Addr returns the listen address once the server is listening
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start starts the server and blocks until a shutdown signal or error
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	logging.Info("Starting lightbridge server",
		zap.String("addr", addr),
		zap.Bool("announce", s.config.Announce),
		zap.String("version", version.Full()),
	)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.config.Announce {
		if err := s.announce(listener.Addr()); err != nil {
			logging.Warn("mDNS announcement failed, continuing without it", zap.Error(err))
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Serve serves HTTP on listener until Shutdown. It returns nil after a
// clean shutdown.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	logging.Info("Server listening for connections",
		zap.String("addr", listener.Addr().String()),
	)

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) announce(addr net.Addr) error {
	port := s.config.Port
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = tcp.Port
	}

	instance := s.config.InstanceName
	if instance == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "local"
		}
		instance = "lightbridge-" + host
	}

	ann, err := discovery.Announce(instance, port, map[string]string{
		"version": version.Version,
		"path":    "/api/v1",
		"ws":      "/ws",
	})
	if err != nil {
		return err
	}
	s.RegisterCloser(ann)
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.mu.Lock()
	s.shutdown = true
	srv := s.httpServer
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	var shutdownErr error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			logging.Error("Error stopping HTTP server", zap.Error(err))
			shutdownErr = err
		}
	}

	// Hijacked WebSocket connections are not tracked by http.Server.
	for _, sess := range sessions {
		logging.Info("Closing active session", zap.String("session", sess.id))
		sess.close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All sessions closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	for _, c := range closers {
		if err := c.Close(); err != nil {
			logging.Error("Error closing resource", zap.Error(err))
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	logging.Sync()
	return shutdownErr
}

// GetActiveSessions returns the number of open WebSocket sessions
func (s *Server) GetActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) addSession(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return false
	}
	s.sessions[sess.id] = sess
	s.wg.Add(1)
	return true
}

func (s *Server) removeSession(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.wg.Done()
}
