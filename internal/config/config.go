package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tgienger/projman/internal/db"
)

// Config is the full projman configuration
type Config struct {
	Data DataConfig `yaml:"data" mapstructure:"data"`
	Log  LogConfig  `yaml:"log" mapstructure:"log"`
}

// DataConfig says where the project collection lives
type DataConfig struct {
	// Path of the projects file. A .yaml or .yml extension selects the YAML
	// format, anything else SQLite.
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures the log file
type LogConfig struct {
	// Path of the log file; empty disables logging
	Path  string `yaml:"path" mapstructure:"path"`
	Level string `yaml:"level" mapstructure:"level"`
}

// envKeys are the settings that PROJMAN_* environment variables can override
var envKeys = []string{"data.path", "log.path", "log.level"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{
		Log: LogConfig{Level: "info"},
	}
	if path, err := db.DefaultPath(); err == nil {
		cfg.Data.Path = path
	}
	if path, err := defaultLogPath(); err == nil {
		cfg.Log.Path = path
	}
	return cfg
}

// Load merges the defaults, the global config file, the project config file
// and the environment, later sources winning. When explicit is set only
// that file is read and it must exist.
func Load(explicit string) (*Config, error) {
	cfg := DefaultConfig()

	if explicit != "" {
		if err := loadFile(explicit, cfg); err != nil {
			return nil, err
		}
	} else {
		for _, path := range []string{GlobalConfigPath(), ProjectConfigPath()} {
			if path == "" {
				continue
			}
			if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, err
	}

	cfg.Data.Path = expandHome(cfg.Data.Path)
	cfg.Log.Path = expandHome(cfg.Log.Path)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

func loadEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix("projman")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	return v.Unmarshal(cfg)
}

// GlobalConfigPath returns the path to the per-user config file
func GlobalConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "projman", "config.yaml")
}

// ProjectConfigPath returns the path to the config file in the working directory
func ProjectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".projman.yaml")
}

func defaultLogPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "projman", "projman.log"), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
