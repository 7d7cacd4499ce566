package commands

import (
	"context"
	"encoding/json"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/protocol"
)

// SendArgs are the arguments of govee_send.
type SendArgs struct {
	Host string          `json:"host"`
	Port *int            `json:"port,omitempty"`
	Body json.RawMessage `json:"body"`
}

// DiscoverArgs are the arguments of govee_discover.
type DiscoverArgs struct {
	TimeoutMs *int64 `json:"timeout_ms,omitempty"`
}

// StatusArgs are the arguments of govee_status.
type StatusArgs struct {
	Host string `json:"host"`
	Port *int   `json:"port,omitempty"`
}

// TurnArgs are the arguments of govee_turn.
type TurnArgs struct {
	Host string `json:"host"`
	Port *int   `json:"port,omitempty"`
	On   bool   `json:"on"`
}

// BrightnessArgs are the arguments of govee_brightness.
type BrightnessArgs struct {
	Host  string `json:"host"`
	Port  *int   `json:"port,omitempty"`
	Value int    `json:"value"`
}

// ColorArgs are the arguments of govee_color.
type ColorArgs struct {
	Host   string `json:"host"`
	Port   *int   `json:"port,omitempty"`
	R      uint8  `json:"r"`
	G      uint8  `json:"g"`
	B      uint8  `json:"b"`
	Kelvin int    `json:"kelvin,omitempty"`
}

// SendResult acknowledges a fire-and-forget command.
type SendResult struct {
	Sent bool `json:"sent"`
}

func (r *Registry) registerLAN() {
	r.add("govee_discover", "Discover lights on the local network", r.discover)
	r.add("govee_status", "Query a light's power, brightness and color", r.status)
	r.add("govee_send", "Send a raw {\"msg\":{...}} command to a light without waiting", r.send)
	r.add("govee_turn", "Turn a light on or off", r.turn)
	r.add("govee_brightness", "Set a light's brightness (1-100)", r.brightness)
	r.add("govee_color", "Set a light's RGB color or white temperature", r.color)
}

func (r *Registry) discover(ctx context.Context, raw json.RawMessage) (any, error) {
	if r.deps.LAN == nil {
		return nil, ErrUnavailable
	}
	var args DiscoverArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	timeout, err := millis(args.TimeoutMs, r.deps.DiscoveryTimeout)
	if err != nil {
		return nil, err
	}
	return r.deps.LAN.Discover(ctx, timeout)
}

func (r *Registry) status(ctx context.Context, raw json.RawMessage) (any, error) {
	if r.deps.LAN == nil {
		return nil, ErrUnavailable
	}
	var args StatusArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Host == "" {
		return nil, missing("host")
	}
	port, err := portOrDefault(args.Port)
	if err != nil {
		return nil, err
	}
	return r.deps.LAN.GetStatus(ctx, args.Host, port)
}

func (r *Registry) send(ctx context.Context, raw json.RawMessage) (any, error) {
	if r.deps.LAN == nil {
		return nil, ErrUnavailable
	}
	var args SendArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Host == "" {
		return nil, missing("host")
	}
	if len(args.Body) == 0 {
		return nil, missing("body")
	}
	port, err := portOrDefault(args.Port)
	if err != nil {
		return nil, err
	}
	if err := r.deps.LAN.Send(ctx, args.Host, port, args.Body); err != nil {
		return nil, err
	}
	return SendResult{Sent: true}, nil
}

func (r *Registry) turn(ctx context.Context, raw json.RawMessage) (any, error) {
	var args TurnArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return r.sendFrame(ctx, args.Host, args.Port, protocol.TurnCommand(args.On))
}

func (r *Registry) brightness(ctx context.Context, raw json.RawMessage) (any, error) {
	var args BrightnessArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	f, err := protocol.BrightnessCommand(args.Value)
	if err != nil {
		return nil, &ArgumentError{Field: "value", Err: err}
	}
	return r.sendFrame(ctx, args.Host, args.Port, f)
}

func (r *Registry) color(ctx context.Context, raw json.RawMessage) (any, error) {
	var args ColorArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	f, err := protocol.ColorCommand(protocol.RGB{R: args.R, G: args.G, B: args.B}, args.Kelvin)
	if err != nil {
		return nil, &ArgumentError{Field: "kelvin", Err: err}
	}
	return r.sendFrame(ctx, args.Host, args.Port, f)
}

func (r *Registry) sendFrame(ctx context.Context, host string, portArg *int, f *protocol.Frame) (any, error) {
	if r.deps.LAN == nil {
		return nil, ErrUnavailable
	}
	if host == "" {
		return nil, missing("host")
	}
	port, err := portOrDefault(portArg)
	if err != nil {
		return nil, err
	}
	if err := r.deps.LAN.SendCommand(ctx, bridge.DeviceAddress{Host: host, Port: port}, f); err != nil {
		return nil, err
	}
	return SendResult{Sent: true}, nil
}
