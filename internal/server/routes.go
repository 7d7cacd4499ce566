package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/cloud"
	"github.com/muurk/lightbridge/internal/commands"
	"github.com/muurk/lightbridge/internal/version"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// CommandInfo describes one command in GET /api/v1/commands
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  version.BuildInfo `json:"version"`
	Bridge   string            `json:"bridge,omitempty"`
	Stats    *bridge.Stats     `json:"stats,omitempty"`
	Sessions int               `json:"sessions"`
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/ws", s.handleWebSocket)

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/health", s.handleHealth)

		v1.GET("/commands", s.handleListCommands)
		v1.POST("/commands/:name", s.handleInvoke)

		lan := v1.Group("/lan")
		{
			lan.POST("/discover", s.invoke("govee_discover"))
			lan.POST("/status", s.invoke("govee_status"))
			lan.POST("/send", s.invoke("govee_send"))
			lan.POST("/turn", s.invoke("govee_turn"))
			lan.POST("/brightness", s.invoke("govee_brightness"))
			lan.POST("/color", s.invoke("govee_color"))
		}

		cl := v1.Group("/cloud")
		{
			cl.POST("/devices", s.invoke("govee_cloud_devices"))
			cl.POST("/control", s.invoke("govee_cloud_control"))
			cl.POST("/state", s.invoke("govee_cloud_state"))
		}

		v1.POST("/radio/scan", s.invoke("roomsense_scan"))
		v1.GET("/network/wifi", s.invoke("is_wifi_connected"))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  version.Info(),
		Sessions: s.GetActiveSessions(),
	}
	if s.health != nil {
		state := s.health.State()
		stats := s.health.Stats()
		resp.Bridge = state.String()
		resp.Stats = &stats
		if state == bridge.StateFailed {
			resp.Status = "degraded"
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListCommands(c *gin.Context) {
	list := s.registry.Commands()
	out := make([]CommandInfo, 0, len(list))
	for _, cmd := range list {
		out = append(out, CommandInfo{Name: cmd.Name, Description: cmd.Description})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleInvoke(c *gin.Context) {
	s.invoke(c.Param("name"))(c)
}

// invoke returns a handler that runs the named command with the request
// body as its arguments.
func (s *Server) invoke(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var args json.RawMessage
		if c.Request.Method != http.MethodGet {
			raw, err := c.GetRawData()
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
				return
			}
			args = raw
		}

		result, err := s.registry.Invoke(c.Request.Context(), name, args)
		if err != nil {
			status, resp := errorResponse(err)
			c.JSON(status, resp)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// errorResponse maps a command error to an HTTP status and body
func errorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Message: commands.ErrorString(err)}

	var argErr *commands.ArgumentError
	switch {
	case errors.As(err, &argErr):
		resp.Error = "invalid_argument"
		return http.StatusBadRequest, resp
	case errors.Is(err, commands.ErrUnknownCommand):
		resp.Error = "unknown_command"
		return http.StatusNotFound, resp
	case errors.Is(err, commands.ErrUnavailable):
		resp.Error = "unavailable"
		return http.StatusServiceUnavailable, resp
	}

	var bridgeErr *bridge.Error
	if errors.As(err, &bridgeErr) {
		resp.Hint = bridge.GetTroubleshootingHint(err)
		switch {
		case bridge.IsTimeout(err):
			resp.Error = "timeout"
			return http.StatusGatewayTimeout, resp
		case bridge.IsEncodingError(err):
			resp.Error = "invalid_payload"
			return http.StatusBadRequest, resp
		case bridge.IsBindError(err):
			resp.Error = "bridge_unavailable"
			return http.StatusServiceUnavailable, resp
		case bridge.IsCancelled(err):
			resp.Error = "cancelled"
			return http.StatusServiceUnavailable, resp
		default:
			resp.Error = "device_error"
			return http.StatusBadGateway, resp
		}
	}

	var apiErr *cloud.APIError
	if errors.As(err, &apiErr) {
		switch {
		case cloud.IsValidationError(err):
			resp.Error = "invalid_argument"
			return http.StatusBadRequest, resp
		case cloud.IsAuthError(err):
			resp.Error = "unauthorized"
			return http.StatusUnauthorized, resp
		case cloud.IsRateLimited(err):
			resp.Error = "rate_limited"
			return http.StatusTooManyRequests, resp
		default:
			resp.Error = "cloud_error"
			return http.StatusBadGateway, resp
		}
	}

	resp.Error = "internal_error"
	return http.StatusInternalServerError, resp
}
