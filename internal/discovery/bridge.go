package discovery

import (
	"fmt"
	"strings"
	"time"
)

// Bridge represents a running lightbridge server found on the network
type Bridge struct {
	// Instance is the advertised instance name (e.g., "lightbridge-livingroom")
	Instance string `json:"instance"`

	// Hostname is the mDNS hostname (e.g., "livingroom.local.")
	Hostname string `json:"hostname"`

	// IP is the IPv4 address, or IPv6 if the bridge advertised no IPv4
	IP string `json:"ip"`

	// Port is the HTTP control port
	Port int `json:"port"`

	// Metadata contains the TXT record data
	// Common fields: "version=v1.2.0", "path=/api/v1", "ws=/ws"
	Metadata map[string]string `json:"metadata,omitempty"`

	// DiscoveredAt is when the bridge was discovered
	DiscoveredAt time.Time `json:"discovered_at"`
}

// String returns a human-readable string representation of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("Lightbridge %s (%s) at %s:%d", b.Instance, b.Hostname, b.IP, b.Port)
}

// BaseURL returns the HTTP base URL for the bridge
func (b *Bridge) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", b.hostPort(), b.Port)
}

// WebSocketURL returns the URL of the bridge's RPC endpoint
func (b *Bridge) WebSocketURL() string {
	path := b.GetMetadata("ws")
	if path == "" {
		path = "/ws"
	}
	return fmt.Sprintf("ws://%s:%d%s", b.hostPort(), b.Port, path)
}

func (b *Bridge) hostPort() string {
	if strings.Contains(b.IP, ":") {
		return "[" + b.IP + "]"
	}
	return b.IP
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
