// Lightbridge-server exposes Govee light control to other programs.
//
// It owns the LAN bridge socket and serves the same commands as the
// lightbridge CLI over three surfaces:
//
//   - REST mirrors under /api/v1 and a health endpoint (gin)
//   - A WebSocket RPC endpoint at /ws for desktop and webview front-ends
//   - A Model Context Protocol server on stdio for AI assistants
//
// The HTTP server announces itself via mDNS as _lightbridge._tcp so that
// 'lightbridge bridges' can find it.
//
// Usage:
//
//	lightbridge-server server [flags]
//	lightbridge-server mcp [flags]
//
// See 'lightbridge-server --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/commands"
	"github.com/muurk/lightbridge/internal/config"
	"github.com/muurk/lightbridge/internal/logging"
	"github.com/muurk/lightbridge/internal/mcp"
	"github.com/muurk/lightbridge/internal/netstatus"
	"github.com/muurk/lightbridge/internal/radio"
	"github.com/muurk/lightbridge/internal/server"
	"github.com/muurk/lightbridge/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lightbridge-server",
	Short: "Lightbridge Control Server",
	Long: `A control server for Govee lights.

Owns the LAN bridge socket and exposes discovery, status and control
commands over HTTP, WebSocket RPC, or the Model Context Protocol.

Note: For one-off commands from a terminal, use the separate
'lightbridge' utility.`,
	Version:      version.Version,
	SilenceUsage: true,
}

// Shared flags
var (
	configPath string
	listenAddr string
	logLevel   string
	apiKeyFlag string
)

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Config file path (default: OS config dir)")
	f.StringVar(&listenAddr, "listen", "", "Local UDP address for the LAN bridge (default :4002)")
	f.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

// Server command flags
var (
	host         string
	port         int
	noAnnounce   bool
	instanceName string
	allowOrigins []string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP and WebSocket server",
	Long: `Start the lightbridge HTTP server.

Routes:
  GET  /health                 bridge state, socket counters and version
  GET  /ws                     WebSocket RPC ({"id","command","args"})
  GET  /api/v1/commands        list commands
  POST /api/v1/commands/:name  invoke any command with a JSON body
  POST /api/v1/lan/...         discover, status, send, turn, brightness, color
  POST /api/v1/cloud/...       devices, control, state
  POST /api/v1/radio/scan
  GET  /api/v1/network/wifi

The server shuts down gracefully on SIGINT or SIGTERM, closing sessions,
the mDNS announcement and the bridge socket.`,
	Example: `  # Start on the default port with mDNS announcement
  lightbridge-server server

  # Local-only, for a desktop app's webview
  lightbridge-server server --host 127.0.0.1 --no-announce --allow-origin tauri://localhost

  # Debug logging of every datagram
  lightbridge-server server --log-level debug`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&host, "host", "", "Server hostname (empty = listen on all interfaces)")
	serverCmd.Flags().IntVar(&port, "port", 0, fmt.Sprintf("Server port (default %d)", server.DefaultPort))
	serverCmd.Flags().BoolVar(&noAnnounce, "no-announce", false, "Do not advertise the server via mDNS")
	serverCmd.Flags().StringVar(&instanceName, "name", "", "mDNS instance name (default lightbridge-<hostname>)")
	serverCmd.Flags().StringSliceVar(&allowOrigins, "allow-origin", nil, "Allowed CORS/WebSocket origins (repeatable; default any)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := setup("stdout")
	if err != nil {
		return err
	}

	b, registry := buildRegistry(cfg)

	sc := cfg.ToServerConfig()
	if host != "" {
		sc.Host = host
	}
	if port != 0 {
		sc.Port = port
	}
	if noAnnounce {
		sc.Announce = false
	}
	if instanceName != "" {
		sc.InstanceName = instanceName
	}
	if len(allowOrigins) > 0 {
		sc.AllowOrigins = allowOrigins
	}

	srv, err := server.New(sc, registry, b)
	if err != nil {
		_ = b.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}
	srv.RegisterCloser(b)

	return srv.Start()
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve commands as MCP tools over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout.

Every lightbridge command is exposed as a tool. Cloud tools use the
api_key argument when given, otherwise --api-key or the
LIGHTBRIDGE_GOVEE_API_KEY environment variable. Logs go to stderr so
stdout carries only the protocol stream.`,
	Example: `  # Claude Desktop / other MCP clients: command "lightbridge-server", args ["mcp"]
  lightbridge-server mcp --log-level info`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "Govee cloud API key for cloud tools (default: $LIGHTBRIDGE_GOVEE_API_KEY)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := setup("stderr")
	if err != nil {
		return err
	}

	b, registry := buildRegistry(cfg)
	defer func() { _ = b.Close() }()

	key := apiKeyFlag
	if key == "" {
		key = config.APIKeyFromEnv()
	}

	s := mcp.NewServer(registry, mcp.WithCloudAPIKey(key))
	logging.Info("Starting MCP server on stdio", zap.Strings("tools", s.Tools()))

	err = s.ServeStdio()
	logging.Sync()
	return err
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lightbridge-server %s\n", version.Full())
	},
}

// setup initializes logging to output and loads the configuration file.
func setup(output string) (*config.Registry, error) {
	var (
		cfg *config.Registry
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.LoadRegistry()
	}
	if err != nil {
		return nil, err
	}

	level := logLevel
	if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		level = cfg.LogLevel
		if level == "" && output == "stdout" {
			// The server logs requests at info unless told otherwise
			level = "info"
		}
	}
	if err := logging.InitializeWithOutput(level, output); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildRegistry(cfg *config.Registry) (*bridge.Bridge, *commands.Registry) {
	bcfg := cfg.ToBridgeConfig()
	if listenAddr != "" {
		bcfg.ListenAddr = listenAddr
	}
	radioOpts := cfg.ToRadioOptions()

	b := bridge.New(bcfg)
	registry := commands.NewRegistry(commands.Dependencies{
		LAN:              b,
		Cloud:            cfg.ToCloudClient(),
		Radio:            radio.NewScanner(radioOpts),
		Network:          netstatus.NewProbe(),
		DiscoveryTimeout: bcfg.DiscoveryTimeout,
		RadioTimeout:     radioOpts.Timeout,
	})
	return b, registry
}
