package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/cloud"
	"github.com/muurk/lightbridge/internal/commands"
	"github.com/muurk/lightbridge/internal/config"
	"github.com/muurk/lightbridge/internal/logging"
	"github.com/muurk/lightbridge/internal/netstatus"
	"github.com/muurk/lightbridge/internal/radio"
	"github.com/muurk/lightbridge/internal/ui"
	"github.com/muurk/lightbridge/internal/urls"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// Global flags
var opts struct {
	configPath string
	listen     string
	timeout    time.Duration
	apiKey     string
	format     string
	verbose    bool
	logLevel   string
}

// app holds what a command needs once flags are parsed.
var app struct {
	cfg      *config.Registry
	cfgPath  string
	bridge   *bridge.Bridge
	registry *commands.Registry
}

// shownError marks a failure already rendered to the user.
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

func setupApp(cmd *cobra.Command, _ []string) error {
	if opts.format != formatText && opts.format != formatJSON {
		return fmt.Errorf("invalid --format %q (expected text or json)", opts.format)
	}

	// Silent unless --log-level or LIGHTBRIDGE_LOG_LEVEL is set
	if err := logging.Initialize(opts.logLevel); err != nil {
		return err
	}

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.logLevel == "" && os.Getenv(logging.LogLevelEnvVar) == "" && cfg.LogLevel != "" {
		if err := logging.Initialize(cfg.LogLevel); err != nil {
			return err
		}
	}

	bcfg := cfg.ToBridgeConfig()
	if opts.listen != "" {
		bcfg.ListenAddr = opts.listen
	}
	if opts.timeout > 0 {
		bcfg.DiscoveryTimeout = opts.timeout
		bcfg.RequestTimeout = opts.timeout
	}

	radioOpts := cfg.ToRadioOptions()
	if opts.timeout > 0 {
		radioOpts.Timeout = opts.timeout
	}

	app.cfg = cfg
	app.cfgPath = path
	app.bridge = bridge.New(bcfg)
	app.registry = commands.NewRegistry(commands.Dependencies{
		LAN:              app.bridge,
		Cloud:            cfg.ToCloudClient(),
		Radio:            radio.NewScanner(radioOpts),
		Network:          netstatus.NewProbe(),
		DiscoveryTimeout: bcfg.DiscoveryTimeout,
		RadioTimeout:     radioOpts.Timeout,
	})

	logging.Debug("lightbridge ready",
		zap.String("config", path),
		zap.String("listen", bcfg.ListenAddr))
	return nil
}

func loadConfig() (*config.Registry, string, error) {
	if opts.configPath != "" {
		cfg, err := config.LoadFrom(opts.configPath)
		return cfg, opts.configPath, err
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadRegistry()
	return cfg, path, err
}

func closeApp() {
	if app.bridge != nil {
		_ = app.bridge.Close()
	}
	logging.Sync()
}

// commandContext cancels on SIGINT/SIGTERM so pending requests are withdrawn.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func apiKey() string {
	if opts.apiKey != "" {
		return opts.apiKey
	}
	return config.APIKeyFromEnv()
}

// resolveHost maps a remembered nickname or device ID to its address.
func resolveHost(nameOrHost string) string {
	if app.cfg == nil {
		return nameOrHost
	}
	return app.cfg.ResolveHost(nameOrHost)
}

// invocation describes one registry call made by a CLI command.
type invocation struct {
	Title   string
	Command string
	Params  map[string]string
	Label   string
	Window  time.Duration
	Name    string // registry command name
	Args    any
}

// invoke runs a registry command. In text mode it draws the header and wait
// indicator and renders failures; in json mode output is left to the caller.
func invoke(cmd *cobra.Command, inv invocation) (any, *ui.Runner, error) {
	args, err := json.Marshal(inv.Args)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode arguments: %w", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	op := func(ctx context.Context) (any, error) {
		return app.registry.Invoke(ctx, inv.Name, args)
	}

	if opts.format == formatJSON {
		result, err := op(ctx)
		if err != nil {
			return nil, nil, errors.New(commands.ErrorString(err))
		}
		return result, nil, nil
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   inv.Title,
		Command: inv.Command,
		Params:  inv.Params,
		Label:   inv.Label,
		Window:  inv.Window,
		Verbose: opts.verbose,
		Output:  cmd.OutOrStdout(),
		Hints:   hints,
	})

	result, err := runner.Run(ctx, op)
	if err != nil {
		return nil, runner, &shownError{err: err}
	}
	return result, runner, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	return ui.NewPrinter(cmd.OutOrStdout()).PrintJSON(v)
}

// hints turns an error into troubleshooting bullet points.
func hints(err error) []string {
	var be *bridge.Error
	if errors.As(err, &be) {
		var tips []string
		for _, line := range strings.Split(bridge.GetTroubleshootingHint(err), "\n") {
			if tip, ok := strings.CutPrefix(line, "  • "); ok {
				tips = append(tips, tip)
			}
		}
		if bridge.IsTimeout(err) {
			tips = append(tips, "LAN API guide: "+urls.LANGuide)
		}
		return tips
	}

	switch {
	case cloud.IsAuthError(err):
		return []string{
			"Check the API key (request one at " + urls.DeveloperPortal + ")",
			"Pass it with --api-key or set LIGHTBRIDGE_GOVEE_API_KEY",
		}
	case cloud.IsRateLimited(err):
		return []string{"The Govee cloud allows a limited number of calls per minute; wait and retry"}
	case cloud.IsNetworkError(err):
		return []string{"Check this computer's internet connection"}
	case errors.Is(err, commands.ErrUnavailable):
		return []string{"This feature is not supported on this machine"}
	}

	var ae *commands.ArgumentError
	if errors.As(err, &ae) {
		return []string{fmt.Sprintf("Check the %q argument; see --help for examples", ae.Field)}
	}
	return nil
}

// requireAPIKey fails early with a styled box when no key is configured.
func requireAPIKey(cmd *cobra.Command) (string, error) {
	key := apiKey()
	if key != "" {
		return key, nil
	}
	err := errors.New("no Govee cloud API key configured")
	if opts.format == formatJSON {
		return "", err
	}
	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintError("Cloud request not sent", err, []string{
		"Pass --api-key <key>",
		"Or set LIGHTBRIDGE_GOVEE_API_KEY in the environment",
	})
	return "", &shownError{err: err}
}
