package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in
// ~/.config/bibmerge/config.yml.
type GlobalConfig struct {
	RootPath      string `yaml:"root_path,omitempty"`
	ScholarAPIKey string `yaml:"scholar_api_key,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bibmerge"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file. Respects
// XDG_CONFIG_HOME, defaults to ~/.config/bibmerge/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file. Returns an empty
// config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.RootPath != "" {
		cfg.RootPath = ExpandPath(cfg.RootPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config. Useful for
// testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetRootPath returns the configured repository root from global config.
func GetRootPath() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.RootPath
}

// GetScholarAPIKey returns the metadata API key from global config.
func GetScholarAPIKey() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.ScholarAPIKey
}

// HelpfulConfigMessage returns a helpful message when no repository can
// be found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No bibmerge repository found.

Tip: run 'bib init' in a working directory, or create %s to set a default root:
  mkdir -p %s
  echo 'root_path: /path/to/your/repo' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
