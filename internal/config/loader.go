package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".drishti.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/drishti"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix namespaces environment overrides (DRISHTI_API_URL, ...).
	EnvPrefix = "DRISHTI"
	// LegacyURLEnv is the front-end's base URL variable, honoured as a fallback.
	LegacyURLEnv = "VITE_API_URL"
)

// Load reads config from path, with environment overrides applied on top.
// An empty path yields defaults plus environment.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'drishti init' to create a config file, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .drishti.yaml in current directory
// 3. .drishti.yaml in parent directories (stops at git root or home)
// 4. ~/.config/drishti/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	if path := findUpwards(cwd); path != "" {
		return path, nil
	}

	if home, _ := os.UserHomeDir(); home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// findUpwards checks dir and its parents for ConfigFileName, stopping at a
// git root or the home directory.
func findUpwards(dir string) string {
	home, _ := os.UserHomeDir()
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		if isGitRoot(dir) || (home != "" && dir == home) {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Resolve finds and loads the config. It returns the path that was used,
// empty when running on defaults and environment only.
func Resolve(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newViper returns a viper instance with defaults and env bindings set.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short aliases and the legacy front-end variable. BindEnv takes the
	// first non-empty variable in order.
	_ = v.BindEnv("api.url", EnvPrefix+"_API_URL", LegacyURLEnv)
	_ = v.BindEnv("poll.interval", EnvPrefix+"_POLL_INTERVAL", EnvPrefix+"_INTERVAL")
	return v
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("api.url", d.API.URL)
	v.SetDefault("api.stats_path", d.API.StatsPath)
	v.SetDefault("poll.interval", d.Poll.Interval.String())
	v.SetDefault("fetch.timeout", d.Fetch.Timeout.String())
	v.SetDefault("fetch.retries", d.Fetch.Retries)
	v.SetDefault("fetch.retry_delay", d.Fetch.RetryDelay.String())
	v.SetDefault("scales.categories", d.Scales.Categories)
	v.SetDefault("scales.languages", d.Scales.Languages)
	v.SetDefault("scales.regions", d.Scales.Regions)
	v.SetDefault("scales.fixed_max", d.Scales.FixedMax)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("telemetry.metrics_addr", d.Telemetry.MetricsAddr)
	v.SetDefault("telemetry.trace_file", d.Telemetry.TraceFile)
}

// parseConfig converts viper config to our Config struct.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "your environment overrides"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+where+" (durations look like 5s or 500ms)")
	}

	cfg.Log.File = ExpandTilde(cfg.Log.File)
	cfg.Telemetry.TraceFile = ExpandTilde(cfg.Telemetry.TraceFile)

	return cfg, nil
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
