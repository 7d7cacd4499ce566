package commands

import (
	"context"
	"encoding/json"
)

// RadioScanArgs are the arguments of roomsense_scan.
type RadioScanArgs struct {
	TimeoutMs *int64 `json:"timeout_ms,omitempty"`
}

func (r *Registry) registerSystem() {
	r.add("roomsense_scan", "Scan for nearby Bluetooth LE devices", r.radioScan)
	r.add("is_wifi_connected", "Report whether this machine is on a Wi-Fi network", r.wifi)
}

func (r *Registry) radioScan(ctx context.Context, raw json.RawMessage) (any, error) {
	if r.deps.Radio == nil {
		return nil, ErrUnavailable
	}
	var args RadioScanArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	timeout, err := millis(args.TimeoutMs, r.deps.RadioTimeout)
	if err != nil {
		return nil, err
	}
	return r.deps.Radio.Scan(ctx, timeout)
}

func (r *Registry) wifi(_ context.Context, _ json.RawMessage) (any, error) {
	if r.deps.Network == nil {
		return nil, ErrUnavailable
	}
	return r.deps.Network.IsConnectedToWifi()
}
