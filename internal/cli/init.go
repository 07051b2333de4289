package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/config"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/projector"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/ui"
)

// probeTimeout bounds the endpoint check init runs before saving.
const probeTimeout = 3 * time.Second

var (
	initURLFlag        string
	initIntervalFlag   string
	initForce          bool
	initSkipProbe      bool
	initNonInteractive bool
)

// initCmd creates a new .drishti.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .drishti.yaml configuration",
	Long: `Write a .drishti.yaml in the current directory.

Prompts for the API URL, refresh interval and bar scales when run in a
terminal; otherwise uses flags, then DRISHTI_API_URL / VITE_API_URL and
DRISHTI_INTERVAL, then defaults. The endpoint is fetched once before the
file is saved.

Examples:
  drishti init
  drishti init --url http://localhost:8001 --interval 5s
  drishti init --force --skip-probe`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd.OutOrStdout())
	},
}

func init() {
	initCmd.Flags().StringVar(&initURLFlag, "url", "", "API base URL")
	initCmd.Flags().StringVar(&initIntervalFlag, "interval", "", "refresh interval (e.g., 5s)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config")
	initCmd.Flags().BoolVar(&initSkipProbe, "skip-probe", false, "save without checking the endpoint")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "never prompt")
	rootCmd.AddCommand(initCmd)
}

// InitOptions holds options for the init command.
type InitOptions struct {
	URL            string // Pre-specified API base URL
	Interval       string // Pre-specified refresh interval
	Path           string // Where to write; defaults to ./.drishti.yaml
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use flags/env/defaults
	SkipProbe      bool   // Don't fetch the endpoint before saving
	Out            io.Writer

	// HTTPTimeout overrides probeTimeout.
	HTTPTimeout time.Duration
}

// initDefaults holds values picked up from the environment.
type initDefaults struct {
	URL            string
	Interval       string
	NonInteractive bool
}

// getInitDefaults reads DRISHTI_* overrides; VITE_API_URL is the front-end's
// variable and only used when DRISHTI_API_URL is unset. CI implies
// non-interactive.
func getInitDefaults() initDefaults {
	d := initDefaults{
		URL:      os.Getenv(config.EnvPrefix + "_API_URL"),
		Interval: os.Getenv(config.EnvPrefix + "_INTERVAL"),
	}
	if d.URL == "" {
		d.URL = os.Getenv(config.LegacyURLEnv)
	}
	switch strings.ToLower(os.Getenv(config.EnvPrefix + "_NON_INTERACTIVE")) {
	case "1", "true", "yes":
		d.NonInteractive = true
	}
	if os.Getenv("CI") != "" {
		d.NonInteractive = true
	}
	return d
}

// initAnswers are the values the file is built from.
type initAnswers struct {
	URL        string
	Interval   string
	Categories string
	Languages  string
	Regions    string
}

// Init creates a new .drishti.yaml configuration file.
func Init(opts InitOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	configPath := opts.Path
	if configPath == "" {
		configPath = filepath.Join(".", config.ConfigFileName)
	}

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	defaults := config.DefaultConfig()
	answers := initAnswers{
		URL:        firstNonEmpty(opts.URL, defaults.API.URL),
		Interval:   firstNonEmpty(opts.Interval, defaults.Poll.Interval.String()),
		Categories: defaults.Scales.Categories,
		Languages:  defaults.Scales.Languages,
		Regions:    defaults.Scales.Regions,
	}

	if !opts.NonInteractive {
		if err := promptInit(&answers); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive")
		}
	}

	cfg, err := buildInitConfig(answers)
	if err != nil {
		return err
	}

	if !opts.SkipProbe {
		if err := probeEndpoint(cfg, opts, out); err != nil {
			return err
		}
	}

	header := `# drishti configuration
# Run 'drishti dashboard' for the live view or 'drishti snapshot' for one fetch.
# Environment overrides: DRISHTI_API_URL, DRISHTI_INTERVAL, DRISHTI_LOG_LEVEL, ...

`
	if err := config.Write(configPath, cfg, header); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  drishti dashboard   - Live metrics")
	fmt.Fprintln(out, "  drishti snapshot    - Fetch once and print")
	fmt.Fprintln(out, "  drishti fixture     - Demo endpoint if the API isn't running")

	return nil
}

// promptInit asks for each answer, prefilled with the current value.
func promptInit(a *initAnswers) error {
	scaleOptions := make([]huh.Option[string], 0, len(projector.Scales))
	for _, s := range projector.Scales {
		scaleOptions = append(scaleOptions, huh.NewOption(string(s), string(s)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Where the governance API listens").
				Placeholder(stats.DefaultBaseURL).
				Value(&a.URL).
				Validate(func(s string) error {
					_, err := stats.JoinURL(s, "")
					if err != nil {
						return fmt.Errorf("enter an absolute http(s) URL")
					}
					return nil
				}),
			huh.NewInput().
				Title("Refresh interval").
				Description(fmt.Sprintf("How often the dashboard polls (minimum %s)", config.MinInterval)).
				Placeholder(config.DefaultInterval.String()).
				Value(&a.Interval).
				Validate(validateIntervalInput),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Threat category bars").
				Description("share: part of all flagged items, max: relative to the largest").
				Options(scaleOptions...).
				Value(&a.Categories),
			huh.NewSelect[string]().
				Title("Language bars").
				Description("total: part of all analyzed content").
				Options(scaleOptions...).
				Value(&a.Languages),
			huh.NewSelect[string]().
				Title("Region bars").
				Options(scaleOptions...).
				Value(&a.Regions),
		),
	)
	return form.Run()
}

func validateIntervalInput(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("use a duration like 5s or 500ms")
	}
	if d < config.MinInterval {
		return fmt.Errorf("minimum is %s", config.MinInterval)
	}
	return nil
}

// buildInitConfig turns answers into a validated config.
func buildInitConfig(a initAnswers) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.API.URL = strings.TrimSpace(a.URL)

	interval, err := ParseDurationFlag("interval", strings.TrimSpace(a.Interval))
	if err != nil {
		return nil, err
	}
	if interval > 0 {
		cfg.Poll.Interval = interval
	}
	if cfg.Fetch.Timeout > cfg.Poll.Interval {
		cfg.Fetch.Timeout = cfg.Poll.Interval
	}

	cfg.Scales.Categories = a.Categories
	cfg.Scales.Languages = a.Languages
	cfg.Scales.Regions = a.Regions

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// probeEndpoint fetches once so a typo in the URL shows up now rather than
// on the first dashboard run.
func probeEndpoint(cfg *config.Config, opts InitOptions, out io.Writer) error {
	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = probeTimeout
	}
	client, err := stats.NewClient(cfg.API.URL, cfg.API.StatsPath, stats.WithTimeout(timeout))
	if err != nil {
		return err
	}

	spinner := ui.NewSpinnerTo(out, "Checking "+client.URL())
	spinner.Start()
	_, err = client.Fetch(context.Background())
	if err == nil {
		spinner.SetLabel("Reached " + client.URL())
		spinner.Success()
		fmt.Fprintln(out)
		return nil
	}
	spinner.SetLabel("Couldn't reach " + client.URL())
	spinner.Fail()

	if opts.NonInteractive {
		return errors.WrapWithCode(err, errors.ErrNetwork,
			fmt.Sprintf("Couldn't fetch %s", client.URL()),
			"Start the API (or 'drishti fixture'), or pass --skip-probe to save anyway")
	}

	fmt.Fprintf(out, "\n%s %s\n\n", ui.SymbolFail, errors.ShortMessage(err))
	var saveAnyway bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save config anyway? (You can start the API later)").
				Value(&saveAnyway),
		),
	)
	if formErr := form.Run(); formErr != nil || !saveAnyway {
		return errors.WrapWithCode(err, errors.ErrNetwork,
			fmt.Sprintf("Couldn't fetch %s", client.URL()),
			"Check that the API is running, then run 'drishti init' again")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// initCommand is the implementation called by the cobra command.
func initCommand(out io.Writer) error {
	defaults := getInitDefaults()
	return Init(InitOptions{
		URL:            firstNonEmpty(initURLFlag, defaults.URL),
		Interval:       firstNonEmpty(initIntervalFlag, defaults.Interval),
		Overwrite:      initForce,
		NonInteractive: initNonInteractive || defaults.NonInteractive || !term.IsTerminal(int(os.Stdin.Fd())),
		SkipProbe:      initSkipProbe,
		Out:            out,
	})
}
