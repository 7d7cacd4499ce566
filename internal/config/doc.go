// Package config loads and saves the lightbridge settings file.
//
// The file is YAML with a version number, per-transport sections (lan,
// cloud, radio, server), a log level, and a devices map of nicknames and
// last known addresses that `lightbridge discover --save` and
// `lightbridge config name` maintain. It lives at
// $XDG_CONFIG_HOME/lightbridge/config.yaml (~/.config/lightbridge on macOS,
// %LOCALAPPDATA%\lightbridge on Windows) unless LIGHTBRIDGE_CONFIG names
// another path.
//
// Sections are converted into the options of the packages they configure:
//
//	reg, err := config.LoadRegistry()
//	if err != nil {
//		return err
//	}
//	b := bridge.New(reg.ToBridgeConfig())
//	host := reg.ResolveHost("desk")
//
// Cloud API keys never appear in the file; see APIKeyFromEnv.
package config
