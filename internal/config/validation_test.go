package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateDefaults(t *testing.T) {
	if err := NewRegistry().Validate(); err != nil {
		t.Errorf("default registry should be valid: %v", err)
	}
	if err := (&Registry{Version: 1}).Validate(); err != nil {
		t.Errorf("empty sections should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Registry)
		wantErr string
	}{
		{"log level", func(r *Registry) { r.LogLevel = "loud" }, "log_level"},
		{"listen addr", func(r *Registry) { r.LAN.ListenAddr = "4002" }, "lan.listen_addr"},
		{"multicast addr", func(r *Registry) { r.LAN.MulticastAddr = "239.255.255.250" }, "lan.multicast_addr"},
		{"control port", func(r *Registry) { r.LAN.ControlPort = 70000 }, "lan.control_port"},
		{"discovery timeout", func(r *Registry) { r.LAN.DiscoveryTimeoutMs = -1 }, "lan.discovery_timeout_ms"},
		{"payload size", func(r *Registry) { r.LAN.MaxPayloadSize = -5 }, "lan.max_payload_size"},
		{"cloud url", func(r *Registry) { r.Cloud.BaseURL = "developer-api.govee.com" }, "cloud.base_url"},
		{"cloud scheme", func(r *Registry) { r.Cloud.BaseURL = "ftp://example.com" }, "cloud.base_url"},
		{"radio timeout", func(r *Registry) { r.Radio.ScanTimeoutMs = -100 }, "radio.scan_timeout_ms"},
		{"server port", func(r *Registry) { r.Server.Port = -1 }, "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			tt.mutate(r)
			err := r.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	r := NewRegistry()
	r.LogLevel = "loud"
	r.Server.Port = 99999

	err := r.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	for _, want := range []string{"log_level", "server.port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %v, missing %s", err, want)
		}
	}
}

func TestLoadFromRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "version: 1\nlan:\n  control_port: 123456\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil || !strings.Contains(err.Error(), "lan.control_port") {
		t.Errorf("LoadFrom() error = %v, want control_port problem", err)
	}
}
