// Package netstatus reports whether this machine is connected to a Wi-Fi
// network, which the local-network bridge needs to reach any light.
package netstatus

import (
	"io/fs"
	"net"
	"os"
	"runtime"
	"strings"
)

// Interface is the part of a network interface the probe looks at.
type Interface struct {
	Name    string
	Up      bool
	Loop    bool
	HasIPv4 bool
}

// Probe inspects network interfaces. Both sources are replaceable for tests.
type Probe struct {
	// SysFS is /sys/class/net on Linux; nil on other systems.
	SysFS fs.FS
	// GOOS selects the interface naming rules.
	GOOS string
	// Interfaces lists the machine's interfaces.
	Interfaces func() ([]Interface, error)
}

// NewProbe returns a probe for the running system.
func NewProbe() *Probe {
	p := &Probe{GOOS: runtime.GOOS, Interfaces: systemInterfaces}
	if runtime.GOOS == "linux" {
		p.SysFS = os.DirFS("/sys/class/net")
	}
	return p
}

// IsConnectedToWifi reports whether an up, non-loopback wireless interface
// has an IPv4 address.
func (p *Probe) IsConnectedToWifi() (bool, error) {
	ifaces, err := p.Interfaces()
	if err != nil {
		return false, err
	}

	for _, iface := range ifaces {
		if !iface.Up || iface.Loop || !iface.HasIPv4 {
			continue
		}
		if p.isWireless(iface.Name) {
			return true, nil
		}
	}
	return false, nil
}

func (p *Probe) isWireless(name string) bool {
	if p.SysFS != nil {
		for _, marker := range []string{"wireless", "phy80211"} {
			if _, err := fs.Stat(p.SysFS, name+"/"+marker); err == nil {
				return true
			}
		}
		return false
	}

	lower := strings.ToLower(name)
	switch p.GOOS {
	case "darwin":
		// en0 is the built-in Wi-Fi port on laptops.
		return lower == "en0"
	case "windows":
		return strings.Contains(lower, "wi-fi") || strings.Contains(lower, "wireless") || strings.Contains(lower, "wlan")
	default:
		return strings.HasPrefix(lower, "wl") || strings.HasPrefix(lower, "ath") || strings.HasPrefix(lower, "ra")
	}
}

func systemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	result := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		entry := Interface{
			Name: iface.Name,
			Up:   iface.Flags&net.FlagUp != 0,
			Loop: iface.Flags&net.FlagLoopback != 0,
		}
		if addrs, err := iface.Addrs(); err == nil {
			for _, addr := range addrs {
				if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.To4() != nil {
					entry.HasIPv4 = true
					break
				}
			}
		}
		result = append(result, entry)
	}
	return result, nil
}
