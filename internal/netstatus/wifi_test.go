package netstatus

import (
	"errors"
	"testing"
	"testing/fstest"
)

func staticInterfaces(ifaces ...Interface) func() ([]Interface, error) {
	return func() ([]Interface, error) { return ifaces, nil }
}

func TestIsConnectedToWifiLinux(t *testing.T) {
	sysfs := fstest.MapFS{
		"wlan0/wireless/.keep": {},
		"wlan1/wireless/.keep": {},
		"wlp3s0/phy80211/name": {Data: []byte("phy0")},
		"eth0/operstate":       {Data: []byte("up")},
		"docker0/bridge/.keep": {},
		"lo/operstate":         {Data: []byte("unknown")},
	}

	tests := []struct {
		name   string
		ifaces []Interface
		want   bool
	}{
		{
			name:   "wireless interface with address",
			ifaces: []Interface{{Name: "wlan0", Up: true, HasIPv4: true}},
			want:   true,
		},
		{
			name:   "phy80211 marker",
			ifaces: []Interface{{Name: "wlp3s0", Up: true, HasIPv4: true}},
			want:   true,
		},
		{
			name:   "wired only",
			ifaces: []Interface{{Name: "eth0", Up: true, HasIPv4: true}, {Name: "docker0", Up: true, HasIPv4: true}},
			want:   false,
		},
		{
			name:   "wireless without address",
			ifaces: []Interface{{Name: "wlan0", Up: true}},
			want:   false,
		},
		{
			name:   "wireless down",
			ifaces: []Interface{{Name: "wlan1", HasIPv4: true}},
			want:   false,
		},
		{
			name:   "loopback ignored",
			ifaces: []Interface{{Name: "lo", Up: true, Loop: true, HasIPv4: true}},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Probe{SysFS: sysfs, GOOS: "linux", Interfaces: staticInterfaces(tt.ifaces...)}
			got, err := p.IsConnectedToWifi()
			if err != nil {
				t.Fatalf("IsConnectedToWifi() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsConnectedToWifi() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsConnectedToWifiByName(t *testing.T) {
	tests := []struct {
		goos  string
		iface string
		want  bool
	}{
		{"darwin", "en0", true},
		{"darwin", "en1", false},
		{"windows", "Wi-Fi", true},
		{"windows", "Ethernet", false},
		{"freebsd", "wlan0", true},
		{"freebsd", "em0", false},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.iface, func(t *testing.T) {
			p := &Probe{GOOS: tt.goos, Interfaces: staticInterfaces(Interface{Name: tt.iface, Up: true, HasIPv4: true})}
			got, err := p.IsConnectedToWifi()
			if err != nil {
				t.Fatalf("IsConnectedToWifi() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsConnectedToWifi() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsConnectedToWifiError(t *testing.T) {
	p := &Probe{GOOS: "linux", Interfaces: func() ([]Interface, error) { return nil, errors.New("boom") }}
	if _, err := p.IsConnectedToWifi(); err == nil {
		t.Error("IsConnectedToWifi() should propagate interface errors")
	}
}
