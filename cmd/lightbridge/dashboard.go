package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/muurk/lightbridge/internal/tui"
	"github.com/muurk/lightbridge/internal/ui"
)

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// dashboardCmd opens the interactive light dashboard
var dashboardCmd = &cobra.Command{
	Use:   "dashboard [device]",
	Short: "Control lights interactively",
	Long: `Open a full-screen dashboard to find and control lights.

Without arguments the dashboard scans the network and lists every light
that answers. Pick one to switch it on or off, step its brightness, or
set its color and white temperature from the keyboard.

With a device (IP address, nickname or device ID) it opens that light's
controls directly.`,
	Example: `  lightbridge dashboard
  lightbridge dashboard desk
  lightbridge dashboard --timeout 10s`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal(cmd.OutOrStdout()) {
		return errors.New("the dashboard needs an interactive terminal; use 'lightbridge discover' or 'lightbridge status' instead")
	}

	o := tui.Options{
		Window:   app.bridge.Config().DiscoveryTimeout,
		Nickname: nickname,
	}
	if len(args) == 1 {
		light := lightFromConfig(args[0])
		o.Light = &light
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	return tui.Run(ctx, tui.NewRegistryController(app.registry), o)
}

// lightFromConfig fills in what the config remembers about a device given
// by nickname, device ID or address.
func lightFromConfig(nameOrHost string) tui.Light {
	light := tui.Light{Host: resolveHost(nameOrHost), Port: devicePort}
	for id, d := range app.cfg.Devices {
		if id == nameOrHost || d.Nickname == nameOrHost || (d.LastIP != "" && d.LastIP == light.Host) {
			light.DeviceID = id
			light.Model = d.Model
			light.Nickname = d.Nickname
			break
		}
	}
	return light
}
