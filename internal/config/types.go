package config

import (
	"time"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/projector"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// DefaultInterval is the dashboard refresh period.
const DefaultInterval = 5 * time.Second

// Config represents the complete .drishti.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	API       APIConfig       `yaml:"api" mapstructure:"api"`
	Poll      PollConfig      `yaml:"poll" mapstructure:"poll"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Scales    ScalesConfig    `yaml:"scales" mapstructure:"scales"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// APIConfig locates the statistics endpoint.
type APIConfig struct {
	// URL is the API base, e.g. http://localhost:8001.
	URL string `yaml:"url" mapstructure:"url"`

	// StatsPath is appended to URL.
	StatsPath string `yaml:"stats_path" mapstructure:"stats_path"`
}

// PollConfig controls the refresh schedule.
type PollConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// FetchConfig bounds a single poll cycle.
type FetchConfig struct {
	// Timeout covers the whole cycle, retries included. Must not exceed the
	// poll interval.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Retries is the number of extra attempts after a network failure.
	Retries int `yaml:"retries" mapstructure:"retries"`

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
}

// ScalesConfig picks the bar-width denominator per section:
// "share", "max", "total" or "fixed".
type ScalesConfig struct {
	Categories string `yaml:"categories" mapstructure:"categories"`
	Languages  string `yaml:"languages" mapstructure:"languages"`
	Regions    string `yaml:"regions" mapstructure:"regions"`

	// FixedMax is the denominator for the "fixed" scale.
	FixedMax int64 `yaml:"fixed_max" mapstructure:"fixed_max"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	// Level: "debug", "info", "warn" or "error".
	Level string `yaml:"level" mapstructure:"level"`

	// File receives logs while the dashboard owns the terminal. Empty
	// discards them.
	File string `yaml:"file" mapstructure:"file"`
}

// TelemetryConfig enables optional metrics and tracing outputs.
type TelemetryConfig struct {
	// MetricsAddr serves /metrics and /healthz when set, e.g. ":9464".
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`

	// TraceFile receives OpenTelemetry spans as JSON when set.
	TraceFile string `yaml:"trace_file" mapstructure:"trace_file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	scales := projector.DefaultOptions()
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			URL:       stats.DefaultBaseURL,
			StatsPath: stats.DefaultStatsPath,
		},
		Poll: PollConfig{
			Interval: DefaultInterval,
		},
		Fetch: FetchConfig{
			Timeout:    stats.DefaultTimeout,
			Retries:    0,
			RetryDelay: 250 * time.Millisecond,
		},
		Scales: ScalesConfig{
			Categories: string(scales.Categories),
			Languages:  string(scales.Languages),
			Regions:    string(scales.Regions),
			FixedMax:   0,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ProjectorOptions converts the scales section. Call Validate first; unknown
// names fall back to the defaults here.
func (c *Config) ProjectorOptions() projector.Options {
	opts := projector.Options{FixedMax: c.Scales.FixedMax}
	opts.Categories, _ = projector.ParseScale(c.Scales.Categories)
	opts.Languages, _ = projector.ParseScale(c.Scales.Languages)
	opts.Regions, _ = projector.ParseScale(c.Scales.Regions)
	return opts
}

// Endpoint returns the full stats URL.
func (c *Config) Endpoint() (string, error) {
	return stats.JoinURL(c.API.URL, c.API.StatsPath)
}
