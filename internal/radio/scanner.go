// Package radio scans for nearby Bluetooth Low Energy devices, such as
// RoomSense presence sensors, and reports each advertiser once.
package radio

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/logging"
)

// DefaultScanTimeout is the scan window when the caller gives none.
const DefaultScanTimeout = 5 * time.Second

// Advertisement is one received advertising packet.
type Advertisement struct {
	Address          string
	Name             string
	RSSI             int16
	ManufacturerData map[uint16][]byte
}

// Adapter is the subset of a BLE adapter the scanner needs. Scan blocks,
// invoking fn per advertisement, until StopScan is called.
type Adapter interface {
	Enable() error
	Scan(fn func(Advertisement)) error
	StopScan() error
}

// Descriptor is a deduplicated advertiser.
type Descriptor struct {
	Address          string            `json:"address"`
	Name             string            `json:"name,omitempty"`
	RSSI             int               `json:"rssi"`
	ManufacturerData map[string]string `json:"manufacturer_data,omitempty"`
	LastSeen         time.Time         `json:"last_seen"`
}

// Options configures a Scanner.
type Options struct {
	// NamePrefix keeps only advertisers whose name starts with it (case-insensitive).
	NamePrefix string
	// Timeout is the default scan window.
	Timeout time.Duration
}

// Scanner runs bounded BLE scans. One scan runs at a time per scanner.
type Scanner struct {
	adapter Adapter
	opts    Options

	enableOnce sync.Once
	enableErr  error

	mu sync.Mutex
}

// NewScanner creates a scanner on the system's default adapter.
func NewScanner(opts Options) *Scanner {
	return NewScannerWithAdapter(defaultAdapter(), opts)
}

// NewScannerWithAdapter creates a scanner on a specific adapter.
func NewScannerWithAdapter(adapter Adapter, opts Options) *Scanner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultScanTimeout
	}
	return &Scanner{adapter: adapter, opts: opts}
}

// Scan listens for advertisements for timeout (the configured default when
// timeout <= 0) and returns each advertiser once, strongest signal first.
func (s *Scanner) Scan(ctx context.Context, timeout time.Duration) ([]Descriptor, error) {
	if timeout <= 0 {
		timeout = s.opts.Timeout
	}

	s.enableOnce.Do(func() {
		s.enableErr = s.adapter.Enable()
	})
	if s.enableErr != nil {
		return nil, fmt.Errorf("bluetooth init failed: %w", s.enableErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var fmu sync.Mutex
	found := make(map[string]*Descriptor)
	prefix := strings.ToLower(s.opts.NamePrefix)

	scanDone := make(chan error, 1)
	go func() {
		scanDone <- s.adapter.Scan(func(adv Advertisement) {
			if prefix != "" && !strings.HasPrefix(strings.ToLower(adv.Name), prefix) {
				return
			}
			fmu.Lock()
			merge(found, adv)
			fmu.Unlock()
		})
	}()

	var err error
	select {
	case err = <-scanDone:
	case <-scanCtx.Done():
		err = s.stop(scanDone)
	}

	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil, ctx.Err()
	}

	fmu.Lock()
	defer fmu.Unlock()
	result := make([]Descriptor, 0, len(found))
	for _, d := range found {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RSSI != result[j].RSSI {
			return result[i].RSSI > result[j].RSSI
		}
		return result[i].Address < result[j].Address
	})

	logging.Info("BLE scan finished",
		zap.Int("devices", len(result)),
		zap.Duration("window", timeout))
	return result, nil
}

// stop ends a running scan. StopScan is repeated because it is a no-op when
// the adapter has not started scanning yet.
func (s *Scanner) stop(scanDone <-chan error) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		_ = s.adapter.StopScan()
		select {
		case err := <-scanDone:
			return err
		case <-ticker.C:
		}
	}
}

func merge(found map[string]*Descriptor, adv Advertisement) {
	d, ok := found[adv.Address]
	if !ok {
		d = &Descriptor{Address: adv.Address}
		found[adv.Address] = d
	}
	if adv.Name != "" {
		d.Name = adv.Name
	}
	d.RSSI = int(adv.RSSI)
	d.LastSeen = time.Now()
	for id, data := range adv.ManufacturerData {
		if d.ManufacturerData == nil {
			d.ManufacturerData = make(map[string]string)
		}
		d.ManufacturerData[fmt.Sprintf("0x%04x", id)] = hex.EncodeToString(data)
	}
}
