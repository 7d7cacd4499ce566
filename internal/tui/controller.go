package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/commands"
	"github.com/muurk/lightbridge/internal/protocol"
)

// Controller is what the dashboard needs from the bridge.
type Controller interface {
	Discover(ctx context.Context, window time.Duration) ([]bridge.DiscoveredDevice, error)
	Status(ctx context.Context, host string, port int) (*bridge.StatusResponse, error)
	Turn(ctx context.Context, host string, port int, on bool) error
	Brightness(ctx context.Context, host string, port int, value int) error
	Color(ctx context.Context, host string, port int, c protocol.RGB, kelvin int) error
}

// Invoker runs a named command with JSON arguments.
type Invoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (any, error)
}

// RegistryController drives lights through the command registry so the
// dashboard gets the same argument validation as every other surface.
type RegistryController struct {
	inv Invoker
}

// NewRegistryController wraps an Invoker such as *commands.Registry.
func NewRegistryController(inv Invoker) *RegistryController {
	return &RegistryController{inv: inv}
}

func (c *RegistryController) call(ctx context.Context, name string, args any) (any, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s arguments: %w", name, err)
	}
	return c.inv.Invoke(ctx, name, raw)
}

func portPtr(port int) *int {
	if port == 0 {
		return nil
	}
	return &port
}

// Discover scans for lights for the given window.
func (c *RegistryController) Discover(ctx context.Context, window time.Duration) ([]bridge.DiscoveredDevice, error) {
	ms := window.Milliseconds()
	result, err := c.call(ctx, "govee_discover", commands.DiscoverArgs{TimeoutMs: &ms})
	if err != nil {
		return nil, err
	}
	devices, ok := result.([]bridge.DiscoveredDevice)
	if !ok && result != nil {
		return nil, fmt.Errorf("unexpected discover result %T", result)
	}
	return devices, nil
}

// Status queries a light's state.
func (c *RegistryController) Status(ctx context.Context, host string, port int) (*bridge.StatusResponse, error) {
	result, err := c.call(ctx, "govee_status", commands.StatusArgs{Host: host, Port: portPtr(port)})
	if err != nil {
		return nil, err
	}
	status, ok := result.(*bridge.StatusResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected status result %T", result)
	}
	return status, nil
}

// Turn switches a light on or off.
func (c *RegistryController) Turn(ctx context.Context, host string, port int, on bool) error {
	_, err := c.call(ctx, "govee_turn", commands.TurnArgs{Host: host, Port: portPtr(port), On: on})
	return err
}

// Brightness sets a light's brightness.
func (c *RegistryController) Brightness(ctx context.Context, host string, port int, value int) error {
	_, err := c.call(ctx, "govee_brightness", commands.BrightnessArgs{Host: host, Port: portPtr(port), Value: value})
	return err
}

// Color sets a light's RGB color, or its white temperature when kelvin is set.
func (c *RegistryController) Color(ctx context.Context, host string, port int, rgb protocol.RGB, kelvin int) error {
	_, err := c.call(ctx, "govee_color", commands.ColorArgs{
		Host:   host,
		Port:   portPtr(port),
		R:      rgb.R,
		G:      rgb.G,
		B:      rgb.B,
		Kelvin: kelvin,
	})
	return err
}
