package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/muurk/lightbridge/internal/logging"
)

// Zero values are valid throughout: the converters replace them with the
// package defaults.

// ValidatePort validates a UDP or TCP port number.
func ValidatePort(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", port)
	}
	return nil
}

// ValidateTimeoutMs validates a millisecond timeout.
func ValidateTimeoutMs(ms int64) error {
	if ms < 0 {
		return fmt.Errorf("timeout must not be negative, got %dms", ms)
	}
	return nil
}

// ValidateUDPAddr validates a host:port address. The host may be empty.
func ValidateUDPAddr(addr string) error {
	if addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return nil
}

// ValidateBaseURL validates an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}

// Validate checks every section of the registry and returns all problems
// joined, or nil.
func (r *Registry) Validate() error {
	var errs []error
	field := func(name string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if r.LogLevel != "" {
		_, err := logging.ParseLevel(r.LogLevel)
		field("log_level", err)
	}

	if lan := r.LAN; lan != nil {
		field("lan.listen_addr", ValidateUDPAddr(lan.ListenAddr))
		field("lan.multicast_addr", ValidateUDPAddr(lan.MulticastAddr))
		field("lan.control_port", ValidatePort(lan.ControlPort))
		field("lan.discovery_timeout_ms", ValidateTimeoutMs(lan.DiscoveryTimeoutMs))
		field("lan.request_timeout_ms", ValidateTimeoutMs(lan.RequestTimeoutMs))
		if lan.MaxPayloadSize < 0 {
			field("lan.max_payload_size", fmt.Errorf("must not be negative, got %d", lan.MaxPayloadSize))
		}
	}

	if c := r.Cloud; c != nil {
		field("cloud.base_url", ValidateBaseURL(c.BaseURL))
		field("cloud.timeout_ms", ValidateTimeoutMs(c.TimeoutMs))
	}

	if rc := r.Radio; rc != nil {
		field("radio.scan_timeout_ms", ValidateTimeoutMs(rc.ScanTimeoutMs))
	}

	if s := r.Server; s != nil {
		field("server.port", ValidatePort(s.Port))
	}

	return errors.Join(errs...)
}
