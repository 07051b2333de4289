package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/projector"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
)

const (
	// MinInterval is the fastest allowed refresh.
	MinInterval = 500 * time.Millisecond
	// MaxRetries caps in-cycle retries.
	MaxRetries = 5
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but drishti only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade drishti or lower the version field.")
	}

	if _, err := stats.JoinURL(cfg.API.URL, cfg.API.StatsPath); err != nil {
		return err
	}

	if err := validatePolling(cfg.Poll, cfg.Fetch); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'poll' and 'fetch' sections in your .drishti.yaml.")
	}

	if err := validateScales(cfg.Scales); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'scales' section in your .drishti.yaml.")
	}

	if err := validateLog(cfg.Log); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'log' section in your .drishti.yaml.")
	}

	return nil
}

// validatePolling keeps one fetch inside one refresh window.
func validatePolling(p PollConfig, f FetchConfig) error {
	if p.Interval < MinInterval {
		return fmt.Errorf("poll interval %s is too short (minimum %s)", p.Interval, MinInterval)
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", f.Timeout)
	}
	if f.Timeout > p.Interval {
		return fmt.Errorf("fetch timeout %s is longer than the poll interval %s", f.Timeout, p.Interval)
	}
	if f.Retries < 0 || f.Retries > MaxRetries {
		return fmt.Errorf("fetch retries must be between 0 and %d, got %d", MaxRetries, f.Retries)
	}
	if f.RetryDelay < 0 {
		return fmt.Errorf("fetch retry_delay can't be negative, got %s", f.RetryDelay)
	}
	return nil
}

func validateScales(s ScalesConfig) error {
	fixed := false
	for _, entry := range []struct{ section, value string }{
		{"categories", s.Categories},
		{"languages", s.Languages},
		{"regions", s.Regions},
	} {
		scale, err := projector.ParseScale(entry.value)
		if err != nil {
			return fmt.Errorf("scales.%s: %w", entry.section, err)
		}
		if scale == projector.ScaleFixed {
			fixed = true
		}
	}
	if fixed && s.FixedMax <= 0 {
		return fmt.Errorf("scales.fixed_max must be positive when a section uses the fixed scale")
	}
	if s.FixedMax < 0 {
		return fmt.Errorf("scales.fixed_max can't be negative, got %d", s.FixedMax)
	}
	return nil
}

func validateLog(l LogConfig) error {
	if _, err := log.ParseLevel(strings.ToLower(l.Level)); err != nil {
		return fmt.Errorf("unknown log level %q (want debug, info, warn or error)", l.Level)
	}
	return nil
}
