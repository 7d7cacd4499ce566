package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/lightbridge/internal/config"
	"github.com/muurk/lightbridge/internal/ui"
)

var forceInit bool

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file without asking")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configNameCmd)
	configCmd.AddCommand(configDevicesCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the lightbridge configuration file",
	Long: `Manage the YAML configuration file holding transport settings and
remembered lights. Cloud API keys are never stored in it.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), app.cfgPath)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.format == formatJSON {
			return printJSON(cmd, app.cfg)
		}
		data, err := yaml.Marshal(app.cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := ui.NewPrinter(cmd.OutOrStdout())

		err := config.CreateDefaultConfig(app.cfgPath, forceInit)
		if errors.Is(err, config.ErrConfigExists) {
			ok := ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Config file exists",
				[]string{app.cfgPath, "Settings and remembered lights will be reset to defaults"},
				"Overwrite it?")
			if !ok {
				return nil
			}
			err = config.CreateDefaultConfig(app.cfgPath, true)
		}
		if err != nil {
			p.PrintError("Config not written", err, []string{"Check permissions on the config directory"})
			return &shownError{err: err}
		}
		p.PrintSuccess("Config written", map[string]string{"Path": app.cfgPath})
		return nil
	},
}

var configNameCmd = &cobra.Command{
	Use:   "name <device-id> <nickname>",
	Short: "Give a light a nickname usable in place of its address",
	Long: `Attach a nickname to a device ID found by 'lightbridge discover --save'.
Commands taking <device> then accept the nickname.`,
	Example: `  lightbridge config name AA:BB:CC:DD:EE:FF:00:11 desk
  lightbridge turn desk on`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app.cfg.SetDeviceNickname(args[0], args[1])
		if err := app.cfg.SaveTo(app.cfgPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		details := map[string]string{"Device": args[0], "Nickname": args[1]}
		if d := app.cfg.GetDevice(args[0]); d != nil && d.LastIP == "" {
			details["Note"] = "address unknown until the next discover --save"
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Nickname saved", details)
		return nil
	},
}

var configDevicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List remembered lights",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.format == formatJSON {
			return printJSON(cmd, app.cfg.Devices)
		}

		ids := make([]string, 0, len(app.cfg.Devices))
		for id := range app.cfg.Devices {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		rows := make([][]string, 0, len(ids))
		for _, id := range ids {
			d := app.cfg.Devices[id]
			seen := ""
			if !d.LastSeen.IsZero() {
				seen = d.LastSeen.Local().Format("2006-01-02 15:04")
			}
			rows = append(rows, []string{id, d.Nickname, d.Model, d.LastIP, seen})
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintTable(
			[]string{"DEVICE ID", "NICKNAME", "MODEL", "LAST IP", "LAST SEEN"}, rows,
			"No lights remembered; run 'lightbridge discover --save'")
		return nil
	},
}
