package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/commands"
	"github.com/muurk/lightbridge/internal/logging"
	"github.com/muurk/lightbridge/internal/protocol"
	"github.com/muurk/lightbridge/internal/ui"
	"github.com/muurk/lightbridge/internal/urls"
)

// LAN command flags
var (
	devicePort int
	saveFound  bool
	kelvin     int
)

func init() {
	for _, c := range []*cobra.Command{statusCmd, sendCmd, turnCmd, brightnessCmd, colorCmd, dashboardCmd} {
		c.Flags().IntVar(&devicePort, "port", 0, "Device control port (default 4003)")
	}
	discoverCmd.Flags().BoolVar(&saveFound, "save", false, "Remember found lights in the config file")
	colorCmd.Flags().IntVar(&kelvin, "kelvin", 0, "White color temperature in kelvin (2000-9000); overrides the RGB value")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(turnCmd)
	rootCmd.AddCommand(brightnessCmd)
	rootCmd.AddCommand(colorCmd)
}

func portArg() *int {
	if devicePort == 0 {
		return nil
	}
	p := devicePort
	return &p
}

func deviceParams(host string) map[string]string {
	params := map[string]string{"Device": host}
	if devicePort != 0 {
		params["Port"] = strconv.Itoa(devicePort)
	}
	return params
}

// discoverCmd finds lights on the network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover Govee lights on the local network",
	Long: `Discover Govee lights using the LAN API's multicast scan.

A scan request is sent to 239.255.255.250:4001 and every light that
answers within the window is listed once, keyed by its address.
Lights only answer when "LAN Control" is enabled in the Govee Home app.`,
	Example: `  # Scan with the default 3-second window
  lightbridge discover

  # Longer scan, remembering the results for nicknames
  lightbridge discover --timeout 10s --save`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	window := app.bridge.Config().DiscoveryTimeout
	ms := window.Milliseconds()

	result, runner, err := invoke(cmd, invocation{
		Title:   "Device Discovery",
		Command: "lightbridge discover",
		Params:  map[string]string{"Window": window.String(), "Listen": app.bridge.Config().ListenAddr},
		Label:   "Listening for lights",
		Window:  window,
		Name:    "govee_discover",
		Args:    commands.DiscoverArgs{TimeoutMs: &ms},
	})
	if err != nil {
		return err
	}
	devices, _ := result.([]bridge.DiscoveredDevice)

	if saveFound && len(devices) > 0 {
		n := app.cfg.RecordDiscovered(devices)
		if err := app.cfg.SaveTo(app.cfgPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		logging.Debug(fmt.Sprintf("remembered %d lights in %s", n, app.cfgPath))
	}

	if opts.format == formatJSON {
		if devices == nil {
			devices = []bridge.DiscoveredDevice{}
		}
		return printJSON(cmd, devices)
	}

	p := runner.Printer()
	p.Newline()
	if len(devices) == 0 {
		p.PrintWarning("No lights answered", map[string]string{
			"Hint":  `Enable "LAN Control" in the Govee Home app`,
			"Next":  "Try a longer --timeout",
			"Guide": urls.LANGuide,
		})
		return nil
	}

	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{d.IP, strconv.Itoa(d.Port), d.Model, d.DeviceID, nickname(d.DeviceID)})
	}
	p.PrintTable([]string{"IP", "PORT", "MODEL", "DEVICE ID", "NICKNAME"}, rows, "")

	details := map[string]string{"Lights": strconv.Itoa(len(devices))}
	if saveFound {
		details["Saved to"] = app.cfgPath
	}
	runner.Success(fmt.Sprintf("Found %d light(s)", len(devices)), details)
	return nil
}

func nickname(deviceID string) string {
	if d := app.cfg.GetDevice(deviceID); d != nil {
		return d.Nickname
	}
	return ""
}

// statusCmd queries a light's state
var statusCmd = &cobra.Command{
	Use:   "status <device>",
	Short: "Show a light's power, brightness and color",
	Long: `Query a light's state with a devStatus request and wait for its reply.

<device> is an IP address, or a nickname or device ID remembered with
'lightbridge discover --save' and 'lightbridge config name'.`,
	Example: `  lightbridge status 192.168.1.42
  lightbridge status desk --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	host := resolveHost(args[0])

	result, runner, err := invoke(cmd, invocation{
		Title:   "Device Status",
		Command: "lightbridge status " + args[0],
		Params:  deviceParams(host),
		Label:   "Waiting for " + host,
		Name:    "govee_status",
		Args:    commands.StatusArgs{Host: host, Port: portArg()},
	})
	if err != nil {
		return err
	}
	status, _ := result.(*bridge.StatusResponse)

	if opts.format == formatJSON {
		return printJSON(cmd, status)
	}
	if status == nil {
		return fmt.Errorf("no status returned")
	}

	details := map[string]string{
		"Power":      ui.PowerMarker(status.On),
		"Brightness": fmt.Sprintf("%d%%", status.Brightness),
	}
	if status.Color != nil {
		details["Color"] = status.Color.Hex()
	}
	if status.ColorTemKelvin != nil {
		details["White temp"] = fmt.Sprintf("%dK", *status.ColorTemKelvin)
	}
	runner.Success(host+" is online", details)
	runner.Raw("Attributes", status.Attributes)
	return nil
}

// sendCmd sends a raw command body
var sendCmd = &cobra.Command{
	Use:   "send <device> <json>",
	Short: "Send a raw LAN API command",
	Long: `Send a raw {"msg":{"cmd":...,"data":{...}}} body to a light.

The command is fire-and-forget: it returns once the datagram is sent and
does not wait for any reply.`,
	Example: `  lightbridge send 192.168.1.42 '{"msg":{"cmd":"turn","data":{"value":1}}}'`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := resolveHost(args[0])
		if !json.Valid([]byte(args[1])) {
			return fmt.Errorf("body is not valid JSON: %s", args[1])
		}
		return runCommand(cmd, "Send Command", "lightbridge send "+args[0], host, "govee_send",
			commands.SendArgs{Host: host, Port: portArg(), Body: json.RawMessage(args[1])})
	},
}

// turnCmd switches a light on or off
var turnCmd = &cobra.Command{
	Use:       "turn <device> <on|off>",
	Short:     "Turn a light on or off",
	Example:   `  lightbridge turn desk off`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseOnOff(args[1])
		if err != nil {
			return err
		}
		host := resolveHost(args[0])
		return runCommand(cmd, "Power", "lightbridge turn "+strings.Join(args, " "), host, "govee_turn",
			commands.TurnArgs{Host: host, Port: portArg(), On: on})
	},
}

// brightnessCmd sets brightness
var brightnessCmd = &cobra.Command{
	Use:     "brightness <device> <1-100>",
	Short:   "Set a light's brightness",
	Example: `  lightbridge brightness desk 40`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid brightness %q: %w", args[1], err)
		}
		host := resolveHost(args[0])
		return runCommand(cmd, "Brightness", "lightbridge brightness "+strings.Join(args, " "), host, "govee_brightness",
			commands.BrightnessArgs{Host: host, Port: portArg(), Value: value})
	},
}

// colorCmd sets RGB color or white temperature
var colorCmd = &cobra.Command{
	Use:   "color <device> [#rrggbb|r,g,b]",
	Short: "Set a light's color",
	Long: `Set a light's RGB color, or with --kelvin its white color temperature.

Colors are given as #rrggbb hex or as r,g,b decimal components.`,
	Example: `  lightbridge color desk '#ff8800'
  lightbridge color desk 255,136,0
  lightbridge color desk --kelvin 2700`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 && kelvin == 0 {
			return fmt.Errorf("give a color or --kelvin")
		}
		colorArgs := commands.ColorArgs{Host: resolveHost(args[0]), Port: portArg(), Kelvin: kelvin}
		if len(args) == 2 {
			r, g, b, err := parseColor(args[1])
			if err != nil {
				return err
			}
			colorArgs.R, colorArgs.G, colorArgs.B = r, g, b
		}
		return runCommand(cmd, "Color", "lightbridge color "+strings.Join(args, " "), colorArgs.Host, "govee_color", colorArgs)
	},
}

// runCommand invokes a fire-and-forget command and reports it was sent.
func runCommand(cmd *cobra.Command, title, command, host, name string, args any) error {
	result, runner, err := invoke(cmd, invocation{
		Title:   title,
		Command: command,
		Params:  deviceParams(host),
		Label:   "Sending to " + host,
		Name:    name,
		Args:    args,
	})
	if err != nil {
		return err
	}
	if opts.format == formatJSON {
		return printJSON(cmd, result)
	}
	runner.Success("Command sent", map[string]string{"Device": host})
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid power state %q (expected on or off)", s)
}

// parseColor accepts #rrggbb, rrggbb or r,g,b.
func parseColor(s string) (r, g, b uint8, err error) {
	c, err := protocol.ParseRGB(s)
	if err != nil {
		return 0, 0, 0, err
	}
	return c.R, c.G, c.B, nil
}
