package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "lightbridge"
	configFile = "config.yaml"

	// EnvConfigPath overrides the configuration file location
	EnvConfigPath = "LIGHTBRIDGE_CONFIG"
)

// Environment variables holding the cloud API key, in lookup order
var apiKeyEnv = []string{"LIGHTBRIDGE_GOVEE_API_KEY", "GOVEE_API_KEY"}

var (
	loadOnce   sync.Once
	loaded     *Registry
	loadErr    error
	writeMutex sync.Mutex
)

const fileHeader = `# lightbridge configuration
#
# Zero or missing values use the built-in defaults. Govee cloud API keys
# are not read from this file: pass --api-key or set
# LIGHTBRIDGE_GOVEE_API_KEY.

`

// GetConfigDir returns the per-user configuration directory:
// %LOCALAPPDATA%\lightbridge on Windows, otherwise $XDG_CONFIG_HOME/lightbridge
// or ~/.config/lightbridge (macOS included).
func GetConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
		profile := os.Getenv("USERPROFILE")
		if profile == "" {
			return "", errors.New("cannot locate config directory: LOCALAPPDATA and USERPROFILE are unset")
		}
		return filepath.Join(profile, "AppData", "Local", appName), nil
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && runtime.GOOS != "darwin" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate config directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// GetConfigPath returns $LIGHTBRIDGE_CONFIG, or config.yaml in GetConfigDir.
func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// APIKeyFromEnv returns the cloud API key from the environment, or "".
func APIKeyFromEnv() string {
	for _, name := range apiKeyEnv {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// LoadRegistry loads the file at GetConfigPath once per process and returns
// the same registry on later calls.
func LoadRegistry() (*Registry, error) {
	loadOnce.Do(func() {
		path, err := GetConfigPath()
		if err != nil {
			loadErr = err
			return
		}
		loaded, loadErr = LoadFrom(path)
	})
	return loaded, loadErr
}

// LoadFrom reads and validates the file at path. A missing file yields
// NewRegistry.
func LoadFrom(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	r := new(Registry)
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if r.Version != 1 {
		return nil, fmt.Errorf("unsupported config version %d in %s (expected 1)", r.Version, path)
	}

	r.fillDefaults()
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return r, nil
}

// SaveTo writes the registry to path through a temporary file in the same
// directory, so readers never observe a partial file.
func (r *Registry) SaveTo(path string) error {
	writeMutex.Lock()
	defer writeMutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+configFile+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary config file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.WriteString(fileHeader); err == nil {
		_, err = tmp.Write(body)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

// ErrConfigExists is returned by CreateDefaultConfig when it would overwrite.
var ErrConfigExists = errors.New("config file already exists")

// CreateDefaultConfig writes NewRegistry to path. An existing file is only
// replaced when overwrite is set.
func CreateDefaultConfig(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	return NewRegistry().SaveTo(path)
}
