package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/ui"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/util"
)

// Global flags, shared by every subcommand.
var (
	cfgFile  string
	logLevel string
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "drishti",
	Short: "Live content-moderation metrics in your terminal",
	Long: `drishti polls the governance statistics endpoint and shows what the
moderation pipeline is seeing: how much content was analyzed, how much of it
was high risk, and how that breaks down by threat category, language and
region.

Get started:
  drishti init                  # write .drishti.yaml
  drishti dashboard             # full-screen live view
  drishti snapshot --json       # one fetch, machine readable
  drishti fixture               # local demo endpoint`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .drishti.yaml, then ~/.config/drishti/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command. Errors are printed to stderr and the
// process exits with status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !stderrors.Is(err, errReported) {
			fmt.Fprint(os.Stderr, formatError(err))
		}
		os.Exit(1)
	}
}

// formatError renders err for the terminal. Structured errors already carry
// their own layout; cobra's usage errors get a pointer to --help.
func formatError(err error) string {
	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" {
			if hint := util.DidYouMean(name, commandNames()); hint != "" {
				return fmt.Sprintf("✗ Unknown command %q\n\n  %s\n", name, hint)
			}
			return fmt.Sprintf("✗ Unknown command %q\n\n  Run 'drishti --help' to see the available commands.\n", name)
		}
		return fmt.Sprintf("✗ %s\n\n  Run 'drishti --help' for usage.\n", err)
	}

	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	return msg
}

// commandNames lists the visible subcommands and their aliases.
func commandNames() []string {
	var names []string
	for _, c := range rootCmd.Commands() {
		if c.Hidden {
			continue
		}
		names = append(names, c.Name())
		names = append(names, c.Aliases...)
	}
	return names
}

// isUnknownCommandError reports whether err is cobra's unknown command or
// unknown flag error.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the command name out of
// `unknown command "foo" for "drishti"`.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
