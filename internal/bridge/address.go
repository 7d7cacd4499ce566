package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
)

// DeviceAddress is a device host and port. A zero port selects the
// configured control port.
type DeviceAddress struct {
	Host string `json:"host"`
	Port int    `json:"port,omitempty"`
}

func (a DeviceAddress) String() string {
	if a.Port == 0 {
		return a.Host
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// resolve turns a device address into an IPv4 UDP destination.
func (b *Bridge) resolve(ctx context.Context, addr DeviceAddress) (*net.UDPAddr, error) {
	if addr.Host == "" {
		return nil, newResolveError("", nil)
	}

	port := addr.Port
	if port == 0 {
		port = b.cfg.ControlPort
	}
	if port < 1 || port > 65535 {
		return nil, newResolveError(addr.Host, fmt.Errorf("invalid port %d", port))
	}

	if ip := net.ParseIP(addr.Host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			ip = ip4
		}
		return &net.UDPAddr{IP: ip, Port: port}, nil
	}

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", addr.Host)
	if err != nil {
		return nil, newResolveError(addr.Host, err)
	}
	if len(ips) == 0 {
		return nil, newResolveError(addr.Host, errors.New("no IPv4 address"))
	}
	return &net.UDPAddr{IP: ips[0], Port: port}, nil
}
