package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/config"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
)

// EndpointFlags holds the flags that override where and how often drishti
// polls. Empty values leave the config untouched.
type EndpointFlags struct {
	URL      string
	Interval string
	Timeout  string
	Retries  int
}

// AddEndpointFlags registers --url, --timeout and --retries on a command,
// plus --interval when the command polls repeatedly.
func AddEndpointFlags(cmd *cobra.Command, flags *EndpointFlags, withInterval bool) {
	cmd.Flags().StringVar(&flags.URL, "url", "", "API base URL (overrides api.url)")
	cmd.Flags().StringVar(&flags.Timeout, "timeout", "", "fetch timeout, retries included (e.g., 3s)")
	cmd.Flags().IntVar(&flags.Retries, "retries", -1, "extra attempts after a network failure")
	if withInterval {
		cmd.Flags().StringVarP(&flags.Interval, "interval", "i", "", "refresh interval (e.g., 2s, 500ms)")
	}
}

// ParseDurationFlag parses a duration flag value. Returns zero duration if
// the flag is empty.
func ParseDurationFlag(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid --%s", value, name),
			"Try something like 5s, 2m, or 500ms.")
	}
	if duration <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s must be positive, got %s", name, value),
			"Try something like 5s, 2m, or 500ms.")
	}
	return duration, nil
}

// Apply writes the flag overrides into cfg. When only the interval is
// overridden and the configured timeout no longer fits inside it, the
// timeout shrinks to the interval.
func (f EndpointFlags) Apply(cfg *config.Config) error {
	if f.URL != "" {
		cfg.API.URL = f.URL
	}

	interval, err := ParseDurationFlag("interval", f.Interval)
	if err != nil {
		return err
	}
	timeout, err := ParseDurationFlag("timeout", f.Timeout)
	if err != nil {
		return err
	}

	if interval > 0 {
		cfg.Poll.Interval = interval
		if timeout == 0 && cfg.Fetch.Timeout > interval {
			cfg.Fetch.Timeout = interval
		}
	}
	if timeout > 0 {
		cfg.Fetch.Timeout = timeout
	}
	if f.Retries >= 0 {
		cfg.Fetch.Retries = f.Retries
	}
	return nil
}
