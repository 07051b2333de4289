package cli

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/monitor"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/poller"
)

var dashboardFlags = EndpointFlags{Retries: -1}

// dashboardCmd runs the full-screen live view
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"monitor"},
	Short:   "Live moderation metrics dashboard",
	Long: `Open a full-screen dashboard that polls the statistics endpoint and
redraws on every response.

The last good data stays on screen when a poll fails; the header shows how
long ago it arrived. Press r to refresh now, tab to move between sections,
enter to open one, ? for help and q to quit.

Examples:
  drishti dashboard
  drishti dashboard --interval 2s
  drishti dashboard --url http://localhost:8080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(dashboardFlags)
	},
}

func init() {
	AddEndpointFlags(dashboardCmd, &dashboardFlags, true)
	rootCmd.AddCommand(dashboardCmd)
}

// dashboardCommand wires config, fetcher, telemetry and the Bubble Tea model
// together and runs the program until the user quits.
func dashboardCommand(flags EndpointFlags) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrConfig,
			"The dashboard needs an interactive terminal",
			"Use 'drishti snapshot' (or 'drishti snapshot --json') for scripts and pipes.")
	}

	cfg, _, err := loadConfig(flags)
	if err != nil {
		return err
	}

	log, closer, err := openDashboardLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	metrics, stopTelemetry, err := startTelemetry(cfg, log)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	client, err := newStatsClient(cfg, log)
	if err != nil {
		return err
	}

	model := monitor.NewModel(monitor.Options{
		Endpoint: client.URL(),
		Fetch:    client.Fetch,
		Poller: poller.Options{
			Interval: cfg.Poll.Interval,
			Logger:   log,
			Metrics:  metrics,
		},
		Projector: cfg.ProjectorOptions(),
		Logger:    log,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, runErr := p.Run()

	// Quitting tears the controller down already; this covers a program that
	// ended any other way.
	if m, ok := final.(monitor.Model); ok {
		m.Teardown()
	} else {
		model.Teardown()
	}

	if runErr != nil {
		return errors.WrapWithCode(runErr, errors.ErrConfig,
			"The dashboard stopped unexpectedly",
			"Check that your terminal supports full-screen programs.")
	}
	return nil
}
