package commands

import (
	"context"
	"encoding/json"
)

// CloudDevicesArgs are the arguments of govee_cloud_devices.
type CloudDevicesArgs struct {
	APIKey string `json:"api_key"`
}

// CloudControlArgs are the arguments of govee_cloud_control.
type CloudControlArgs struct {
	APIKey string          `json:"api_key"`
	Device string          `json:"device"`
	Model  string          `json:"model"`
	Cmd    json.RawMessage `json:"cmd"`
}

// CloudStateArgs are the arguments of govee_cloud_state.
type CloudStateArgs struct {
	APIKey string `json:"api_key"`
	Device string `json:"device"`
	Model  string `json:"model"`
}

func (r *Registry) registerCloud() {
	r.add("govee_cloud_devices", "List devices on a Govee cloud account", r.cloudDevices)
	r.add("govee_cloud_control", "Send a control command through the Govee cloud", r.cloudControl)
	r.add("govee_cloud_state", "Query a device's state through the Govee cloud", r.cloudState)
}

func (r *Registry) cloudDevices(ctx context.Context, raw json.RawMessage) (any, error) {
	if r.deps.Cloud == nil {
		return nil, ErrUnavailable
	}
	var args CloudDevicesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.APIKey == "" {
		return nil, missing("api_key")
	}
	return r.deps.Cloud.GetDevices(ctx, args.APIKey)
}

func (r *Registry) cloudControl(ctx context.Context, raw json.RawMessage) (any, error) {
	if r.deps.Cloud == nil {
		return nil, ErrUnavailable
	}
	var args CloudControlArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	switch {
	case args.APIKey == "":
		return nil, missing("api_key")
	case args.Device == "":
		return nil, missing("device")
	case args.Model == "":
		return nil, missing("model")
	case len(args.Cmd) == 0:
		return nil, missing("cmd")
	}
	return r.deps.Cloud.SendCommand(ctx, args.APIKey, args.Device, args.Model, args.Cmd)
}

func (r *Registry) cloudState(ctx context.Context, raw json.RawMessage) (any, error) {
	if r.deps.Cloud == nil {
		return nil, ErrUnavailable
	}
	var args CloudStateArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	switch {
	case args.APIKey == "":
		return nil, missing("api_key")
	case args.Device == "":
		return nil, missing("device")
	case args.Model == "":
		return nil, missing("model")
	}
	return r.deps.Cloud.GetDeviceState(ctx, args.APIKey, args.Device, args.Model)
}
