package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/config"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/ui"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/util"
)

// settableKeys are the dotted keys 'config set' accepts.
var settableKeys = map[string]string{
	"api.url":                "API base URL",
	"api.stats_path":         "statistics route appended to api.url",
	"poll.interval":          "refresh interval",
	"fetch.timeout":          "upper bound on one poll cycle",
	"fetch.retries":          "extra attempts after a network failure",
	"fetch.retry_delay":      "pause between attempts",
	"scales.categories":      "bar scale for threat categories",
	"scales.languages":       "bar scale for languages",
	"scales.regions":         "bar scale for regions",
	"scales.fixed_max":       "denominator for the fixed scale",
	"log.level":              "debug, info, warn or error",
	"log.file":               "log destination while the dashboard runs",
	"telemetry.metrics_addr": "serve Prometheus metrics on this address",
	"telemetry.trace_file":   "write OpenTelemetry spans here",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change drishti configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration drishti would run with: the config file,
environment overrides and defaults merged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig(cmd.OutOrStdout(), cfgFile)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print which config file is in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No config file found, using defaults")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting in the config file",
	Long: fmt.Sprintf(`Change one setting in the config file, keeping its comments and layout.
The result is validated and the file is left unchanged if it wouldn't load.

Keys:
%s
Examples:
  drishti config set poll.interval 2s
  drishti config set scales.regions share`, keyHelp()),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			return errors.New(errors.ErrConfig,
				"No config file to change",
				"Run 'drishti init' first")
		}
		if err := setConfigValue(path, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s = %s in %s\n", ui.SymbolSuccess, args[0], args[1], path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func sortedKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func keyHelp() string {
	var b strings.Builder
	for _, k := range sortedKeys() {
		fmt.Fprintf(&b, "  %-24s %s\n", k, settableKeys[k])
	}
	return b.String()
}

func showConfig(w io.Writer, explicit string) error {
	cfg, path, err := config.Resolve(explicit)
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(w, "# defaults (no config file found)")
	} else {
		fmt.Fprintf(w, "# %s\n", path)
	}
	_, err = w.Write(data)
	return err
}

// setConfigValue writes key=value into path and rolls back if the file no
// longer validates.
func setConfigValue(path, key, value string) error {
	if _, ok := settableKeys[key]; !ok {
		suggestion := util.DidYouMean(key, sortedKeys())
		if suggestion == "" {
			suggestion = "Run 'drishti config set --help' for the list of keys"
		}
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown config key '%s'", key),
			suggestion)
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Can't read "+path, "")
	}

	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Can't update "+path, "")
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if restoreErr := os.WriteFile(path, original, 0644); restoreErr != nil {
			return errors.WrapWithCode(restoreErr, errors.ErrConfig,
				"Can't restore "+path+" after a bad value",
				"Fix the file by hand")
		}
		return err
	}
	return nil
}
