// Package discovery advertises and finds lightbridge servers with mDNS.
//
// A running server registers itself as a "_lightbridge._tcp" service so that
// other tools on the network (the lightbridge CLI, a desktop webview, home
// automation scripts) can find its HTTP and WebSocket endpoints without
// configuration. This is unrelated to light discovery, which uses the lights'
// own UDP multicast scan (see package bridge).
//
// # Usage Example
//
//	// Advertise
//	ann, err := discovery.Announce("lightbridge-den", 8420, map[string]string{
//	    "version": version.Version,
//	    "ws":      "/ws",
//	})
//	if err != nil {
//	    return err
//	}
//	defer ann.Close()
//
//	// Browse
//	bridges, err := discovery.ScanForBridges(ctx, 3*time.Second)
//	for _, b := range bridges {
//	    fmt.Println(b.String(), b.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Firewall must allow mDNS (UDP port 5353)
package discovery
