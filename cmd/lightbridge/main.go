// Lightbridge is a command-line controller for Govee lights.
//
// It talks to lights directly over the Govee LAN API (UDP multicast
// discovery plus unicast control), and optionally through the Govee cloud
// API for lights without LAN control. Every command is a thin wrapper over
// the same command registry the lightbridge-server exposes over HTTP,
// WebSocket and MCP.
//
// Usage:
//
//	lightbridge [command] [flags]
//
// See 'lightbridge --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/lightbridge/internal/version"
)

func main() {
	err := rootCmd.Execute()
	closeApp()
	if err != nil {
		// Failures already rendered as a styled box are not repeated.
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lightbridge",
	Short: "Govee Light Controller",
	Long: `A command-line controller for Govee lights.

Discovers lights on the local network, queries their state and sends
power, brightness and color commands over the Govee LAN API. Lights
without LAN control can be reached through the Govee cloud API with an
API key.

Enable "LAN Control" for each light in the Govee Home app first.

Note: To expose these commands over HTTP, WebSocket or MCP, use the
separate 'lightbridge-server' utility.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupApp,
	Example: `  # Find lights on the network and remember them
  lightbridge discover --save

  # Switch a light on by address or by nickname
  lightbridge turn 192.168.1.42 on
  lightbridge turn desk on

  # Query state as JSON for scripting
  lightbridge status desk --format json`,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Config file path (default: OS config dir)")
	f.StringVar(&opts.listen, "listen", "", "Local UDP address to receive replies on (default :4002)")
	f.DurationVar(&opts.timeout, "timeout", 0, "Discovery window or request timeout (default from config)")
	f.StringVar(&opts.apiKey, "api-key", "", "Govee cloud API key (default: $LIGHTBRIDGE_GOVEE_API_KEY)")
	f.StringVar(&opts.format, "format", "text", "Output format (text, json)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Show raw payloads")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); silent by default")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Version needs no bridge or config.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.format == formatJSON {
			return printJSON(cmd, version.Info())
		}
		fmt.Printf("lightbridge %s\n", version.Full())
		return nil
	},
}
