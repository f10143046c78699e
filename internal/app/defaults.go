package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults are the locations used when no config file overrides them.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults resolves default paths. SALLI_CONFIG_PATH replaces
// ~/.config/salli.toml and SALLI_HOME replaces ~/.local/share/salli.
func GetDefaults() (*Defaults, error) {
	configPath, err := envOrHome("SALLI_CONFIG_PATH", ".config", "salli.toml")
	if err != nil {
		return nil, err
	}
	baseDir, err := envOrHome("SALLI_HOME", ".local", "share", "salli")
	if err != nil {
		return nil, err
	}

	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

func envOrHome(env string, rel ...string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{home}, rel...)...), nil
}
