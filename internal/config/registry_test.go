package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/cloud"
	"github.com/muurk/lightbridge/internal/radio"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "lightbridge") {
		t.Errorf("GetConfigDir() = %v, should contain 'lightbridge'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}

	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	configPath, err = GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if configPath != "/tmp/custom.yaml" {
		t.Errorf("GetConfigPath() = %v, want override", configPath)
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("LIGHTBRIDGE_GOVEE_API_KEY", "")
	t.Setenv("GOVEE_API_KEY", "")
	if got := APIKeyFromEnv(); got != "" {
		t.Errorf("APIKeyFromEnv() = %q, want empty", got)
	}

	t.Setenv("GOVEE_API_KEY", "fallback")
	if got := APIKeyFromEnv(); got != "fallback" {
		t.Errorf("APIKeyFromEnv() = %q, want fallback", got)
	}

	t.Setenv("LIGHTBRIDGE_GOVEE_API_KEY", " primary ")
	if got := APIKeyFromEnv(); got != "primary" {
		t.Errorf("APIKeyFromEnv() = %q, want primary", got)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}
	if reg.LAN == nil || reg.Cloud == nil || reg.Radio == nil || reg.Server == nil {
		t.Fatal("NewRegistry() should populate every section")
	}
	if reg.LAN.ListenAddr != ":4002" {
		t.Errorf("LAN.ListenAddr = %v, want :4002", reg.LAN.ListenAddr)
	}
	if reg.LAN.ControlPort != 4003 {
		t.Errorf("LAN.ControlPort = %v, want 4003", reg.LAN.ControlPort)
	}
	if reg.LAN.MulticastAddr != "239.255.255.250:4001" {
		t.Errorf("LAN.MulticastAddr = %v", reg.LAN.MulticastAddr)
	}
}

func TestToBridgeConfigMatchesDefaults(t *testing.T) {
	got := NewRegistry().ToBridgeConfig()
	want := bridge.DefaultConfig()

	if got != want {
		t.Errorf("ToBridgeConfig() = %+v, want %+v", got, want)
	}
}

func TestConverters(t *testing.T) {
	reg := NewRegistry()
	reg.LAN.RequestTimeoutMs = 750
	reg.Cloud.BaseURL = "http://127.0.0.1:9999"
	reg.Cloud.TimeoutMs = 1500
	reg.Radio.NamePrefix = "ihoment"
	reg.Server.Port = 9000
	reg.Server.AllowOrigins = []string{"tauri://localhost"}

	if got := reg.ToBridgeConfig().RequestTimeout; got != 750*time.Millisecond {
		t.Errorf("RequestTimeout = %v, want 750ms", got)
	}

	client := reg.ToCloudClient()
	if client.BaseURL != "http://127.0.0.1:9999" {
		t.Errorf("cloud BaseURL = %v", client.BaseURL)
	}
	if client.HTTPClient.Timeout != 1500*time.Millisecond {
		t.Errorf("cloud timeout = %v, want 1.5s", client.HTTPClient.Timeout)
	}

	opts := reg.ToRadioOptions()
	if opts.NamePrefix != "ihoment" || opts.Timeout != radio.DefaultScanTimeout {
		t.Errorf("ToRadioOptions() = %+v", opts)
	}

	sc := reg.ToServerConfig()
	if sc.Port != 9000 || !sc.Announce || len(sc.AllowOrigins) != 1 {
		t.Errorf("ToServerConfig() = %+v", sc)
	}

	// Converters tolerate missing sections.
	empty := &Registry{Version: 1}
	if empty.ToBridgeConfig() != bridge.DefaultConfig() {
		t.Error("ToBridgeConfig() on empty registry should equal defaults")
	}
	if empty.ToCloudClient().BaseURL != cloud.DefaultBaseURL {
		t.Error("ToCloudClient() on empty registry should use the default URL")
	}
}

func TestRegistryEnsureDevice(t *testing.T) {
	reg := NewRegistry()

	device1 := reg.EnsureDevice("AA:BB")
	if device1 == nil {
		t.Fatal("EnsureDevice() returned nil")
	}

	device2 := reg.EnsureDevice("AA:BB")
	if device1 != device2 {
		t.Error("EnsureDevice() should return same instance for same ID")
	}

	device3 := reg.EnsureDevice("CC:DD")
	if device1 == device3 {
		t.Error("EnsureDevice() should create new instance for different ID")
	}
}

func TestRecordDiscoveredAndResolve(t *testing.T) {
	reg := NewRegistry()
	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	n := reg.RecordDiscovered([]bridge.DiscoveredDevice{
		{IP: "192.168.1.42", DeviceID: "AA:BB", Model: "H6160", LastSeen: seen},
		{IP: "192.168.1.43"},
	})
	if n != 1 {
		t.Errorf("RecordDiscovered() = %d, want 1", n)
	}

	device := reg.GetDevice("AA:BB")
	if device == nil {
		t.Fatal("device should be recorded")
	}
	if device.LastIP != "192.168.1.42" || device.Model != "H6160" || !device.LastSeen.Equal(seen) {
		t.Errorf("recorded device = %+v", device)
	}

	reg.SetDeviceNickname("AA:BB", "desk")

	tests := []struct {
		in, want string
	}{
		{"desk", "192.168.1.42"},
		{"AA:BB", "192.168.1.42"},
		{"10.0.0.9", "10.0.0.9"},
		{"unknown-name", "unknown-name"},
	}
	for _, tt := range tests {
		if got := reg.ResolveHost(tt.in); got != tt.want {
			t.Errorf("ResolveHost(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.LogLevel = "debug"
	reg.LAN.ControlPort = 4100
	reg.SetDeviceNickname("AA:BB", "desk")
	reg.EnsureDevice("AA:BB").LastIP = "192.168.1.42"

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# lightbridge configuration") {
		t.Error("saved file should start with the header comment")
	}
	if strings.Contains(strings.ToLower(string(data)), "api_key:") {
		t.Error("saved file must not contain an API key field")
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", loaded.LogLevel)
	}
	if loaded.LAN.ControlPort != 4100 {
		t.Errorf("LAN.ControlPort = %v, want 4100", loaded.LAN.ControlPort)
	}
	if d := loaded.GetDevice("AA:BB"); d == nil || d.Nickname != "desk" || d.LastIP != "192.168.1.42" {
		t.Errorf("loaded device = %+v", d)
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	reg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if reg.ToBridgeConfig() != bridge.DefaultConfig() {
		t.Error("missing file should load defaults")
	}
}

func TestLoadFromPartialFileFillsSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nserver:\n  port: 9100\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if reg.Server.Port != 9100 {
		t.Errorf("Server.Port = %v, want 9100", reg.Server.Port)
	}
	if reg.LAN == nil || reg.LAN.ControlPort != 4003 {
		t.Errorf("LAN section should default, got %+v", reg.LAN)
	}
	if reg.Devices == nil {
		t.Error("Devices should be initialized")
	}
}

func TestLoadFromRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"wrong version", "version: 2\n"},
		{"missing version", "log_level: info\n"},
		{"invalid yaml", "version: [1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("LoadFrom() should fail")
			}
		})
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := CreateDefaultConfig(path, false); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if _, err := LoadFrom(path); err != nil {
		t.Errorf("written default config does not load: %v", err)
	}

	err := CreateDefaultConfig(path, false)
	if !errors.Is(err, ErrConfigExists) {
		t.Errorf("second CreateDefaultConfig() error = %v, want ErrConfigExists", err)
	}
	if err := CreateDefaultConfig(path, true); err != nil {
		t.Errorf("CreateDefaultConfig(overwrite) error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("config directory has %d entries, want only config.yaml", len(entries))
	}
}

func BenchmarkEnsureDevice(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.EnsureDevice("AA:BB")
	}
}
