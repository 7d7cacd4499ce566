package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/logging"
	"github.com/muurk/lightbridge/internal/protocol"
)

// DiscoveredDevice is one light that answered a scan.
type DiscoveredDevice struct {
	IP         string          `json:"ip"`
	Port       int             `json:"port"`
	SourcePort int             `json:"source_port"`
	DeviceID   string          `json:"device_id,omitempty"`
	Model      string          `json:"model,omitempty"`
	ReportedIP string          `json:"reported_ip,omitempty"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
	LastSeen   time.Time       `json:"last_seen"`
}

// Address returns the device's control address.
func (d DiscoveredDevice) Address() DeviceAddress {
	return DeviceAddress{Host: d.IP, Port: d.Port}
}

// DiscoverDefault runs Discover with the configured discovery window.
func (b *Bridge) DiscoverDefault(ctx context.Context) ([]DiscoveredDevice, error) {
	return b.Discover(ctx, b.cfg.DiscoveryTimeout)
}

// Discover multicasts one scan request and collects responses for timeout.
// Devices are deduplicated by source address, the latest response winning,
// and returned sorted by address. A zero timeout sends the scan and returns
// an empty list at once. Finding nothing is not an error.
func (b *Bridge) Discover(ctx context.Context, timeout time.Duration) ([]DiscoveredDevice, error) {
	if timeout < 0 {
		timeout = 0
	}

	sock, err := b.ensureOpen()
	if err != nil {
		return nil, err
	}

	dest, err := net.ResolveUDPAddr("udp4", b.cfg.MulticastAddr)
	if err != nil {
		return nil, newResolveError(b.cfg.MulticastAddr, err)
	}

	payload, err := b.codec.Encode(protocol.ScanRequest())
	if err != nil {
		return nil, wrapEncoding(err)
	}

	c, err := b.router.subscribe(protocol.CmdScan)
	if err != nil {
		return nil, err
	}
	defer b.router.unsubscribe(c)

	if err := sock.SendTo(ctx, dest, payload); err != nil {
		return nil, ClassifySendError(err, dest.String())
	}

	if timeout == 0 {
		return []DiscoveredDevice{}, nil
	}

	found := make(map[string]DiscoveredDevice)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case in := <-c.ch:
			b.collect(found, in)

		case <-timer.C:
			// Take whatever was queued before the window closed.
		queued:
			for {
				select {
				case in := <-c.ch:
					b.collect(found, in)
				default:
					break queued
				}
			}
			devices := sortDevices(found)
			logging.Info("Discovery finished",
				zap.Int("devices", len(devices)),
				zap.Duration("window", timeout))
			return devices, nil

		case <-ctx.Done():
			return nil, newCancelledError("", "discovery cancelled", ctx.Err())

		case <-c.stopped:
			return nil, newCancelledError("", "bridge closed", nil)
		}
	}
}

func (b *Bridge) collect(found map[string]DiscoveredDevice, in inbound) {
	info, err := protocol.ParseScanResponse(in.frame)
	if err != nil {
		logging.Debug("Ignoring unreadable scan response",
			zap.String("source", in.source.String()),
			zap.Error(err))
		return
	}

	ip := in.source.IP.String()
	found[ip] = DiscoveredDevice{
		IP:         ip,
		Port:       b.cfg.ControlPort,
		SourcePort: in.source.Port,
		DeviceID:   info.Device,
		Model:      info.SKU,
		ReportedIP: info.IP,
		Attributes: info.Raw,
		LastSeen:   in.received,
	}
}

func sortDevices(found map[string]DiscoveredDevice) []DiscoveredDevice {
	devices := make([]DiscoveredDevice, 0, len(found))
	for _, d := range found {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool {
		a, b := net.ParseIP(devices[i].IP), net.ParseIP(devices[j].IP)
		if a == nil || b == nil {
			return devices[i].IP < devices[j].IP
		}
		return bytes.Compare(a.To16(), b.To16()) < 0
	})
	return devices
}
