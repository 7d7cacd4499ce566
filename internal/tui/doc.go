// Package tui implements the interactive lightbridge dashboard.
//
// The dashboard is a full-screen Bubble Tea application with two screens:
//
//   - Discovery: scans the LAN for Govee lights (spinner and progress bar
//     over the scan window), lists them as cards, and accepts a manually
//     entered address for lights that do not answer scans.
//   - Light: shows one light's power, brightness and color and sends
//     turn, brightness and colorwc commands from single key presses.
//
// Commands are fire-and-forget, so after each one the light's state is
// re-read with a devStatus request.
//
// All light I/O goes through the Controller interface. RegistryController
// implements it on top of the command registry; tests use a fake.
//
// Usage:
//
//	ctrl := tui.NewRegistryController(registry)
//	err := tui.Run(ctx, ctrl, tui.Options{Window: 5 * time.Second})
package tui
