package config

import (
	"time"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/cloud"
	"github.com/muurk/lightbridge/internal/discovery"
	"github.com/muurk/lightbridge/internal/radio"
	"github.com/muurk/lightbridge/internal/server"
)

// Registry represents the entire user configuration file.
// This stores transport settings and user-defined metadata for lights.
type Registry struct {
	Version  int                `yaml:"version" json:"version"`
	LogLevel string             `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	LAN      *LANConfig         `yaml:"lan,omitempty" json:"lan,omitempty"`
	Cloud    *CloudConfig       `yaml:"cloud,omitempty" json:"cloud,omitempty"`
	Radio    *RadioConfig       `yaml:"radio,omitempty" json:"radio,omitempty"`
	Server   *ServerConfig      `yaml:"server,omitempty" json:"server,omitempty"`
	Devices  map[string]*Device `yaml:"devices,omitempty" json:"devices,omitempty"` // Keyed by device ID (e.g., "AA:BB:CC:DD:EE:FF:00:11")
}

// LANConfig holds the local-network transport settings.
type LANConfig struct {
	ListenAddr         string `yaml:"listen_addr" json:"listen_addr"`                   // Local UDP address (devices answer to port 4002)
	MulticastAddr      string `yaml:"multicast_addr" json:"multicast_addr"`             // Discovery destination
	ControlPort        int    `yaml:"control_port" json:"control_port"`                 // Default device control port
	DiscoveryTimeoutMs int64  `yaml:"discovery_timeout_ms" json:"discovery_timeout_ms"` // Discovery collection window
	RequestTimeoutMs   int64  `yaml:"request_timeout_ms" json:"request_timeout_ms"`     // Status request timeout
	MaxPayloadSize     int    `yaml:"max_payload_size" json:"max_payload_size"`         // Largest outgoing datagram
}

// CloudConfig holds the vendor cloud API settings.
// Note: API keys are NEVER stored - they come from flags or the environment.
type CloudConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	TimeoutMs int64  `yaml:"timeout_ms" json:"timeout_ms"`
}

// RadioConfig holds the Bluetooth LE scanner settings.
type RadioConfig struct {
	NamePrefix    string `yaml:"name_prefix,omitempty" json:"name_prefix,omitempty"` // Only report advertisers whose name starts with this
	ScanTimeoutMs int64  `yaml:"scan_timeout_ms" json:"scan_timeout_ms"`
}

// ServerConfig holds the control server settings.
type ServerConfig struct {
	Host         string   `yaml:"host" json:"host"`
	Port         int      `yaml:"port" json:"port"`
	Announce     bool     `yaml:"announce" json:"announce"`                               // Advertise via mDNS
	InstanceName string   `yaml:"instance_name,omitempty" json:"instance_name,omitempty"` // mDNS instance name
	AllowOrigins []string `yaml:"allow_origins,omitempty" json:"allow_origins,omitempty"` // CORS origins; empty allows any
}

// Device represents user-defined metadata for a single light.
type Device struct {
	Nickname string    `yaml:"nickname,omitempty" json:"nickname,omitempty"`   // User-friendly name
	Model    string    `yaml:"model,omitempty" json:"model,omitempty"`         // SKU reported by discovery
	LastIP   string    `yaml:"last_ip,omitempty" json:"last_ip,omitempty"`     // Last known IP address
	LastSeen time.Time `yaml:"last_seen,omitempty" json:"last_seen,omitempty"` // Last discovery time
}

func defaultLAN() *LANConfig {
	d := bridge.DefaultConfig()
	return &LANConfig{
		ListenAddr:         d.ListenAddr,
		MulticastAddr:      d.MulticastAddr,
		ControlPort:        d.ControlPort,
		DiscoveryTimeoutMs: d.DiscoveryTimeout.Milliseconds(),
		RequestTimeoutMs:   d.RequestTimeout.Milliseconds(),
		MaxPayloadSize:     d.MaxPayloadSize,
	}
}

func defaultCloud() *CloudConfig {
	return &CloudConfig{
		BaseURL:   cloud.DefaultBaseURL,
		TimeoutMs: cloud.DefaultTimeout.Milliseconds(),
	}
}

func defaultRadio() *RadioConfig {
	return &RadioConfig{ScanTimeoutMs: radio.DefaultScanTimeout.Milliseconds()}
}

func defaultServer() *ServerConfig {
	return &ServerConfig{
		Port:     discovery.DefaultPort,
		Announce: true,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		LAN:     defaultLAN(),
		Cloud:   defaultCloud(),
		Radio:   defaultRadio(),
		Server:  defaultServer(),
		Devices: make(map[string]*Device),
	}
}

// fillDefaults initializes sections missing from a loaded file.
func (r *Registry) fillDefaults() {
	if r.LAN == nil {
		r.LAN = defaultLAN()
	}
	if r.Cloud == nil {
		r.Cloud = defaultCloud()
	}
	if r.Radio == nil {
		r.Radio = defaultRadio()
	}
	if r.Server == nil {
		r.Server = defaultServer()
	}
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// ToBridgeConfig converts the lan section. Zero values fall back to the
// bridge defaults.
func (r *Registry) ToBridgeConfig() bridge.Config {
	lan := r.LAN
	if lan == nil {
		lan = defaultLAN()
	}
	return bridge.Config{
		ListenAddr:       lan.ListenAddr,
		MulticastAddr:    lan.MulticastAddr,
		ControlPort:      lan.ControlPort,
		DiscoveryTimeout: millis(lan.DiscoveryTimeoutMs),
		RequestTimeout:   millis(lan.RequestTimeoutMs),
		MaxPayloadSize:   lan.MaxPayloadSize,
	}
}

// ToCloudClient builds a cloud API client from the cloud section.
func (r *Registry) ToCloudClient() *cloud.Client {
	c := r.Cloud
	if c == nil {
		c = defaultCloud()
	}
	return cloud.NewClient(c.BaseURL, millis(c.TimeoutMs))
}

// ToRadioOptions converts the radio section.
func (r *Registry) ToRadioOptions() radio.Options {
	rc := r.Radio
	if rc == nil {
		rc = defaultRadio()
	}
	return radio.Options{NamePrefix: rc.NamePrefix, Timeout: millis(rc.ScanTimeoutMs)}
}

// ToServerConfig converts the server section.
func (r *Registry) ToServerConfig() *server.Config {
	sc := r.Server
	if sc == nil {
		sc = defaultServer()
	}
	return &server.Config{
		Host:         sc.Host,
		Port:         sc.Port,
		Announce:     sc.Announce,
		InstanceName: sc.InstanceName,
		AllowOrigins: append([]string(nil), sc.AllowOrigins...),
	}
}

// GetDevice retrieves device metadata by device ID.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(id string) *Device {
	return r.Devices[id]
}

// EnsureDevice ensures a device entry exists in the registry.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(id string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[id]; exists {
		return device
	}

	device := &Device{}
	r.Devices[id] = device
	return device
}

// RecordDiscovered updates the registry from a discovery result.
// Devices that reported no ID are skipped.
func (r *Registry) RecordDiscovered(devices []bridge.DiscoveredDevice) int {
	n := 0
	for _, d := range devices {
		if d.DeviceID == "" {
			continue
		}
		device := r.EnsureDevice(d.DeviceID)
		device.LastIP = d.IP
		device.LastSeen = d.LastSeen
		if d.Model != "" {
			device.Model = d.Model
		}
		n++
	}
	return n
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(id, nickname string) {
	device := r.EnsureDevice(id)
	device.Nickname = nickname
}

// ResolveHost maps a nickname or device ID to the device's last known IP.
// Anything else is returned unchanged so addresses pass straight through.
func (r *Registry) ResolveHost(nameOrHost string) string {
	if d, ok := r.Devices[nameOrHost]; ok && d.LastIP != "" {
		return d.LastIP
	}
	for _, d := range r.Devices {
		if d.Nickname != "" && d.Nickname == nameOrHost && d.LastIP != "" {
			return d.LastIP
		}
	}
	return nameOrHost
}
