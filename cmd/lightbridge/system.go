package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/lightbridge/internal/commands"
	"github.com/muurk/lightbridge/internal/discovery"
	"github.com/muurk/lightbridge/internal/radio"
	"github.com/muurk/lightbridge/internal/ui"
)

func init() {
	radioCmd.AddCommand(radioScanCmd)
	rootCmd.AddCommand(radioCmd)
	rootCmd.AddCommand(wifiCmd)
	rootCmd.AddCommand(bridgesCmd)
}

var radioCmd = &cobra.Command{
	Use:   "radio",
	Short: "Bluetooth LE commands",
}

var radioScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for nearby Bluetooth LE devices",
	Long: `Listen for Bluetooth LE advertisements for the scan window and list
each advertiser once, with its strongest signal.

Set radio.name_prefix in the config file to only list matching names.`,
	Example: `  lightbridge radio scan --timeout 10s`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		window := app.cfg.ToRadioOptions().Timeout
		if opts.timeout > 0 {
			window = opts.timeout
		}
		ms := window.Milliseconds()

		result, runner, err := invoke(cmd, invocation{
			Title:   "Radio Scan",
			Command: "lightbridge radio scan",
			Params:  map[string]string{"Window": window.String()},
			Label:   "Listening for advertisements",
			Window:  window,
			Name:    "roomsense_scan",
			Args:    commands.RadioScanArgs{TimeoutMs: &ms},
		})
		if err != nil {
			return err
		}
		found, _ := result.([]radio.Descriptor)

		if opts.format == formatJSON {
			if found == nil {
				found = []radio.Descriptor{}
			}
			return printJSON(cmd, found)
		}

		rows := make([][]string, 0, len(found))
		for _, d := range found {
			rows = append(rows, []string{d.Address, d.Name, strconv.Itoa(d.RSSI)})
		}
		p := runner.Printer()
		p.Newline()
		p.PrintTable([]string{"ADDRESS", "NAME", "RSSI"}, rows, "No advertisements heard")
		runner.Success(fmt.Sprintf("Heard %d device(s)", len(found)), nil)
		return nil
	},
}

var wifiCmd = &cobra.Command{
	Use:   "wifi",
	Short: "Report whether this machine is connected to Wi-Fi",
	Long: `Check whether any interface with an IPv4 address is a wireless one.

LAN control only reaches lights on the same network, so this is a quick
first check when discovery finds nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, runner, err := invoke(cmd, invocation{
			Title:   "Network Status",
			Command: "lightbridge wifi",
			Name:    "is_wifi_connected",
		})
		if err != nil {
			return err
		}
		connected, _ := result.(bool)

		if opts.format == formatJSON {
			return printJSON(cmd, map[string]bool{"connected": connected})
		}
		if connected {
			runner.Success("Connected to Wi-Fi", nil)
			return nil
		}
		p := runner.Printer()
		p.Newline()
		p.PrintWarning("Not connected to Wi-Fi", map[string]string{
			"Hint": "Lights are only reachable on the same network",
		})
		return nil
	},
}

var bridgesCmd = &cobra.Command{
	Use:   "bridges",
	Short: "Find running lightbridge servers via mDNS",
	Long: `Browse for _lightbridge._tcp services announced by lightbridge-server
and list their HTTP and WebSocket endpoints.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		window := discovery.DefaultScanTimeout
		if opts.timeout > 0 {
			window = opts.timeout
		}
		scanner := &discovery.Scanner{Timeout: window}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		op := func(ctx context.Context) (any, error) { return scanner.ScanForBridges(ctx) }

		if opts.format == formatJSON {
			found, err := scanner.ScanForBridges(ctx)
			if err != nil {
				return err
			}
			if found == nil {
				found = []*discovery.Bridge{}
			}
			return printJSON(cmd, found)
		}

		runner := ui.NewRunner(ui.RunnerConfig{
			Title:   "Bridge Discovery",
			Command: "lightbridge bridges",
			Params:  map[string]string{"Service": discovery.ServiceType, "Window": window.String()},
			Label:   "Browsing mDNS",
			Window:  window,
			Verbose: opts.verbose,
			Output:  cmd.OutOrStdout(),
			Hints: func(error) []string {
				return []string{"Check that multicast DNS (UDP 5353) is allowed on this network"}
			},
		})
		result, err := runner.Run(ctx, op)
		if err != nil {
			return &shownError{err: err}
		}
		found, _ := result.([]*discovery.Bridge)

		rows := make([][]string, 0, len(found))
		for _, b := range found {
			rows = append(rows, []string{b.Instance, b.BaseURL(), b.WebSocketURL(), b.GetMetadata("version"), age(b.DiscoveredAt)})
		}
		p := runner.Printer()
		p.Newline()
		p.PrintTable([]string{"INSTANCE", "HTTP", "WEBSOCKET", "VERSION", "SEEN"}, rows, "No bridges found")
		runner.Success(fmt.Sprintf("Found %d bridge(s)", len(found)), nil)
		return nil
	},
}

func age(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return time.Since(t).Round(time.Second).String() + " ago"
}
