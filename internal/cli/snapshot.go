package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/logger"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/poller"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/projector"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/ui"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/util"
)

var (
	snapshotFlags = EndpointFlags{Retries: -1}
	snapshotJSON  bool
)

// snapshotCmd runs one poll cycle and prints the result
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch the statistics once and print them",
	Long: `Run a single poll cycle against the statistics endpoint: fetch, derive the
same percentages the dashboard shows, print them and exit.

Use --json for scripts. Fetch failures exit with status 1; data that arrived
with problems (dropped fields, contradictory counts) is printed along with
the issues.

Examples:
  drishti snapshot
  drishti snapshot --json | jq .data.headline
  drishti snapshot --url http://localhost:8080 --timeout 2s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		machineMode = snapshotJSON
		return snapshotCommand(cmd.Context(), cmd.OutOrStdout(), snapshotFlags)
	},
}

func init() {
	AddEndpointFlags(snapshotCmd, &snapshotFlags, false)
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "print a JSON envelope instead of tables")
	rootCmd.AddCommand(snapshotCmd)
}

// snapshotOptions configures runSnapshot.
type snapshotOptions struct {
	Endpoint  string
	Fetch     poller.FetchFunc
	Projector projector.Options
	JSON      bool
	// Progress shows a spinner on stderr while fetching.
	Progress bool
	Logger   logger.Logger
}

func snapshotCommand(ctx context.Context, w io.Writer, flags EndpointFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, _, err := loadConfig(flags)
	if err != nil {
		if machineMode {
			_ = WriteJSONFromError(w, err)
			return errReported
		}
		return err
	}

	log := logger.New(os.Stderr, "drishti", cfg.Log.Level)
	client, err := newStatsClient(cfg, log)
	if err != nil {
		return err
	}

	if !machineMode && !term.IsTerminal(int(os.Stdout.Fd())) {
		ui.DisableColors()
	}

	return runSnapshot(ctx, w, snapshotOptions{
		Endpoint:  client.URL(),
		Fetch:     client.Fetch,
		Projector: cfg.ProjectorOptions(),
		JSON:      machineMode,
		Progress:  !machineMode && term.IsTerminal(int(os.Stderr.Fd())),
		Logger:    log,
	})
}

// runSnapshot performs one fetch and writes the projection to w.
func runSnapshot(ctx context.Context, w io.Writer, opts snapshotOptions) error {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}

	var spin *ui.Spinner
	if opts.Progress {
		spin = ui.NewSpinner("Fetching " + opts.Endpoint)
		spin.Start()
	}

	snap, err := opts.Fetch(ctx)
	if spin != nil {
		if err != nil {
			spin.Fail()
		} else {
			spin.Success()
		}
	}
	if err != nil {
		opts.Logger.Debug("snapshot fetch failed: %s", errors.ShortMessage(err))
		if opts.JSON {
			if werr := WriteJSONFromError(w, err); werr != nil {
				return werr
			}
			return errReported
		}
		return err
	}

	proj := projector.Project(snap, opts.Projector)
	if issues := allIssues(snap, proj); len(issues) > 0 {
		opts.Logger.Warn("snapshot has %d data %s", len(issues), util.Pluralize(len(issues), "issue", "issues"))
		for _, issue := range issues {
			opts.Logger.Debug("snapshot issue: %s", errors.ShortMessage(issue))
		}
	}

	if opts.JSON {
		return WriteJSONSuccess(w, buildSnapshotReport(opts.Endpoint, snap, proj))
	}
	_, err = io.WriteString(w, renderSnapshotText(opts.Endpoint, snap, proj))
	return err
}

// allIssues lists decode issues followed by projection issues.
func allIssues(snap *stats.Snapshot, proj projector.Projection) []error {
	var issues []error
	if snap != nil {
		issues = append(issues, snap.Issues...)
	}
	return append(issues, proj.Issues...)
}

// snapshotReport is the --json data payload.
type snapshotReport struct {
	Endpoint     string          `json:"endpoint"`
	CapturedAt   *time.Time      `json:"captured_at"`
	ZeroActivity bool            `json:"zero_activity"`
	Partial      bool            `json:"partial"`
	Headline     *headlineReport `json:"headline"`
	Categories   *sectionReport  `json:"threat_categories"`
	Languages    *sectionReport  `json:"languages"`
	Regions      *sectionReport  `json:"regions"`
	Issues       []issueReport   `json:"issues,omitempty"`
}

type headlineReport struct {
	TotalAnalyzed    int64        `json:"total_analyzed"`
	ReportsGenerated int64        `json:"reports_generated"`
	FalsePositives   int64        `json:"false_positives"`
	HighRisk         metricReport `json:"high_risk"`
	Safe             metricReport `json:"safe"`
}

type sectionReport struct {
	Scale       string         `json:"scale"`
	Denominator int64          `json:"denominator"`
	Rows        []metricReport `json:"rows"`
}

type metricReport struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int64  `json:"count"`
	// Percent is null when the metric is invalid.
	Percent    *float64 `json:"percent"`
	BarPercent float64  `json:"bar_percent"`
	Tier       string   `json:"tier,omitempty"`
	Clamped    bool     `json:"clamped,omitempty"`
	Invalid    bool     `json:"invalid,omitempty"`
}

type issueReport struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// buildSnapshotReport converts a projection for JSON output. Absent sections
// are null; present but empty sections have no rows.
func buildSnapshotReport(endpoint string, snap *stats.Snapshot, proj projector.Projection) snapshotReport {
	r := snapshotReport{
		Endpoint:     endpoint,
		ZeroActivity: proj.ZeroActivity,
		Partial:      snap.Partial(),
	}
	if !proj.CapturedAt.IsZero() {
		at := proj.CapturedAt.UTC()
		r.CapturedAt = &at
	}

	if h := proj.Headline; h.Present {
		r.Headline = &headlineReport{
			TotalAnalyzed:    h.TotalAnalyzed,
			ReportsGenerated: h.ReportsGenerated,
			FalsePositives:   h.FalsePositives,
			HighRisk:         toMetricReport(h.HighRisk),
			Safe:             toMetricReport(h.Safe),
		}
	}
	r.Categories = toSectionReport(proj.Categories)
	r.Languages = toSectionReport(proj.Languages)
	r.Regions = toSectionReport(proj.Regions)

	for _, issue := range allIssues(snap, proj) {
		r.Issues = append(r.Issues, issueReport{
			Code:    errors.CodeOf(issue),
			Message: errors.ShortMessage(issue),
		})
	}
	return r
}

func toSectionReport(s projector.Section) *sectionReport {
	if !s.Present {
		return nil
	}
	rows := make([]metricReport, 0, len(s.Metrics))
	for _, m := range s.Metrics {
		rows = append(rows, toMetricReport(m))
	}
	return &sectionReport{
		Scale:       string(s.Scale),
		Denominator: s.Denominator,
		Rows:        rows,
	}
}

func toMetricReport(m projector.DerivedMetric) metricReport {
	r := metricReport{
		Key:        m.Key,
		Label:      m.Label,
		Count:      m.Count,
		BarPercent: round2(m.BarWidthPercent),
		Tier:       string(m.Tier),
		Clamped:    m.Clamped,
		Invalid:    m.Invalid,
	}
	if !m.Invalid {
		p := round2(m.Percentage)
		r.Percent = &p
	}
	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Placeholders shared with the dashboard's wording.
const (
	snapshotNoData     = "no data"
	snapshotNoActivity = "no activity"
	snapshotInvalid    = "n/a"
)

var (
	snapshotTitleStyle = lipgloss.NewStyle().Bold(true)
	snapshotMutedStyle = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	snapshotWarnStyle  = lipgloss.NewStyle().Foreground(ui.ColorWarning)
)

// renderSnapshotText renders the projection as titled tables.
func renderSnapshotText(endpoint string, snap *stats.Snapshot, proj projector.Projection) string {
	var b strings.Builder

	captured := "N/A"
	if !proj.CapturedAt.IsZero() {
		captured = proj.CapturedAt.Local().Format("2006-01-02 15:04:05")
	}
	b.WriteString(snapshotTitleStyle.Render("drishti snapshot") + " " + snapshotMutedStyle.Render(endpoint) + "\n")
	b.WriteString(snapshotMutedStyle.Render("captured "+captured) + "\n\n")

	if proj.ZeroActivity {
		b.WriteString(snapshotWarnStyle.Render("zero activity: the endpoint reports nothing analyzed yet") + "\n\n")
	}

	b.WriteString(renderHeadlineText(proj.Headline))
	b.WriteString(renderSectionText("Threat categories", "Category", proj.Categories, false))
	b.WriteString(renderSectionText("Languages", "Language", proj.Languages, false))
	b.WriteString(renderSectionText("Regions", "Region", proj.Regions, true))

	if issues := allIssues(snap, proj); len(issues) > 0 {
		b.WriteString(snapshotTitleStyle.Render("Issues") + "\n")
		for _, issue := range issues {
			b.WriteString(snapshotWarnStyle.Render(ui.SymbolWarning+" "+errors.ShortMessage(issue)) + "\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func renderHeadlineText(h projector.Headline) string {
	title := snapshotTitleStyle.Render("Overview") + "\n"
	if !h.Present {
		return title + snapshotMutedStyle.Render(snapshotNoData) + "\n\n"
	}

	rows := [][]string{
		{"Analyzed", humanize.Comma(h.TotalAnalyzed), ""},
		{h.HighRisk.Label, humanize.Comma(h.HighRisk.Count), percentText(h.HighRisk)},
		{h.Safe.Label, humanize.Comma(h.Safe.Count), percentText(h.Safe)},
		{"Reports generated", humanize.Comma(h.ReportsGenerated), ""},
		{"False positives", humanize.Comma(h.FalsePositives), ""},
	}
	if h.Safe.Invalid {
		rows[2][1] = snapshotInvalid
	}
	return title + renderRows([]string{"Metric", "Count", "Percent"}, rows) + "\n\n"
}

func renderSectionText(title, keyTitle string, s projector.Section, withTier bool) string {
	heading := snapshotTitleStyle.Render(title)
	if !s.Present {
		return heading + "\n" + snapshotMutedStyle.Render(snapshotNoData) + "\n\n"
	}
	heading += " " + snapshotMutedStyle.Render(fmt.Sprintf("(scale %s, denominator %s)", s.Scale, humanize.Comma(s.Denominator)))
	if s.Empty() {
		return heading + "\n" + snapshotMutedStyle.Render(snapshotNoActivity) + "\n\n"
	}

	titles := []string{keyTitle, "Count", "Share", "Bar"}
	if withTier {
		titles = append(titles, "Tier")
	}
	rows := make([][]string, 0, len(s.Metrics))
	for _, m := range s.Metrics {
		bar := fmt.Sprintf("%.1f%%", m.BarWidthPercent)
		if m.Clamped {
			bar += " (clamped)"
		}
		row := []string{m.Label, humanize.Comma(m.Count), percentText(m), bar}
		if withTier {
			row = append(row, string(m.Tier))
		}
		rows = append(rows, row)
	}
	return heading + "\n" + renderRows(titles, rows) + "\n\n"
}

func renderRows(titles []string, rows [][]string) string {
	columns := make([]ui.TableColumn, len(titles))
	for i, t := range titles {
		columns[i] = ui.TableColumn{Title: t, Width: ui.ColumnWidth(t, rows, i)}
	}
	return ui.RenderSimpleTable(columns, rows)
}

func percentText(m projector.DerivedMetric) string {
	if m.Invalid {
		return snapshotInvalid
	}
	return fmt.Sprintf("%.1f%%", m.Percentage)
}
