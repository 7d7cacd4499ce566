package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/cloud"
	"github.com/muurk/lightbridge/internal/logging"
	"github.com/muurk/lightbridge/internal/protocol"
	"github.com/muurk/lightbridge/internal/radio"
)

// LAN is the local-network bridge.
type LAN interface {
	Discover(ctx context.Context, timeout time.Duration) ([]bridge.DiscoveredDevice, error)
	GetStatus(ctx context.Context, host string, port int) (*bridge.StatusResponse, error)
	Send(ctx context.Context, host string, port int, body json.RawMessage) error
	SendCommand(ctx context.Context, addr bridge.DeviceAddress, f *protocol.Frame) error
}

// Cloud is the vendor cloud API.
type Cloud interface {
	GetDevices(ctx context.Context, apiKey string) (json.RawMessage, error)
	SendCommand(ctx context.Context, apiKey, device, model string, cmd json.RawMessage) (json.RawMessage, error)
	GetDeviceState(ctx context.Context, apiKey, device, model string) (json.RawMessage, error)
}

// Radio scans for BLE advertisers.
type Radio interface {
	Scan(ctx context.Context, timeout time.Duration) ([]radio.Descriptor, error)
}

// Network reports Wi-Fi connectivity.
type Network interface {
	IsConnectedToWifi() (bool, error)
}

// Dependencies are the collaborators commands dispatch to. A nil
// collaborator makes its commands fail with ErrUnavailable.
type Dependencies struct {
	LAN     LAN
	Cloud   Cloud
	Radio   Radio
	Network Network

	// DiscoveryTimeout is used when govee_discover gets no timeout_ms.
	DiscoveryTimeout time.Duration
	// RadioTimeout is used when roomsense_scan gets no timeout_ms.
	RadioTimeout time.Duration
}

var (
	// ErrUnknownCommand is returned by Invoke for unregistered names.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnavailable is returned when the backing collaborator is not configured.
	ErrUnavailable = errors.New("not available on this bridge")
)

// Handler runs one command with JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Command is a named, documented handler.
type Command struct {
	Name        string
	Description string
	Handler     Handler
}

// Registry maps command names to handlers. It is safe for concurrent use
// once constructed.
type Registry struct {
	deps     Dependencies
	commands map[string]Command
}

// NewRegistry registers every command against deps.
func NewRegistry(deps Dependencies) *Registry {
	if deps.DiscoveryTimeout <= 0 {
		deps.DiscoveryTimeout = bridge.DefaultDiscoveryTimeout
	}
	if deps.RadioTimeout <= 0 {
		deps.RadioTimeout = radio.DefaultScanTimeout
	}

	r := &Registry{deps: deps, commands: make(map[string]Command)}
	r.registerLAN()
	r.registerCloud()
	r.registerSystem()
	return r
}

func (r *Registry) add(name, description string, h Handler) {
	r.commands[name] = Command{Name: name, Description: description, Handler: h}
}

// Commands returns every registered command sorted by name.
func (r *Registry) Commands() []Command {
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Invoke runs the named command.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	cmd, ok := r.commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	start := time.Now()
	result, err := cmd.Handler(ctx, args)
	if err != nil {
		logging.Warn("Command failed",
			zap.String("command", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}
	logging.Debug("Command completed",
		zap.String("command", name),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// ErrorString renders an error for callers on the other side of a transport
// boundary, which only ever see a human-readable string.
func ErrorString(err error) string {
	if err == nil {
		return ""
	}

	var bridgeErr *bridge.Error
	if errors.As(err, &bridgeErr) {
		return bridge.GetShortErrorMessage(err) + ": " + bridgeErr.Message
	}
	var apiErr *cloud.APIError
	if errors.As(err, &apiErr) {
		return cloud.GetShortErrorMessage(err)
	}
	return err.Error()
}

// decodeArgs unmarshals args into v. Empty or null args leave v at its zero value.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &ArgumentError{Err: err}
	}
	return nil
}

// ArgumentError reports invalid command arguments.
type ArgumentError struct {
	Field string
	Err   error
}

func (e *ArgumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid argument %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid arguments: %v", e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

func missing(field string) error {
	return &ArgumentError{Field: field, Err: errors.New("required")}
}

func millis(ms *int64, fallback time.Duration) (time.Duration, error) {
	if ms == nil {
		return fallback, nil
	}
	if *ms < 0 {
		return 0, &ArgumentError{Field: "timeout_ms", Err: errors.New("must not be negative")}
	}
	if *ms > math.MaxInt64/int64(time.Millisecond) {
		return 0, &ArgumentError{Field: "timeout_ms", Err: fmt.Errorf("%d too large", *ms)}
	}
	return time.Duration(*ms) * time.Millisecond, nil
}

func portOrDefault(port *int) (int, error) {
	if port == nil {
		return 0, nil
	}
	if *port < 1 || *port > 65535 {
		return 0, &ArgumentError{Field: "port", Err: fmt.Errorf("%d out of range", *port)}
	}
	return *port, nil
}
