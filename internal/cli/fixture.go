package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/fixture"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/logger"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/ui"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/util"
)

var (
	fixtureScenario string
	fixtureAddr     string
	fixtureLatency  string
	fixturePath     string
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Serve a canned statistics endpoint",
	Long: fmt.Sprintf(`Serve a stand-in for the governance statistics endpoint so the dashboard
can be tried without the backend.

Scenarios: %s

Examples:
  drishti fixture
  drishti fixture --scenario flaky --latency 300ms
  drishti fixture --addr 127.0.0.1:9000
  drishti dashboard --url http://127.0.0.1:9000`, scenarioNames()),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return fixtureCommand(ctx, cmd.OutOrStdout())
	},
}

func init() {
	fixtureCmd.Flags().StringVar(&fixtureScenario, "scenario", string(fixture.ScenarioDemo), "payload to serve ("+scenarioNames()+")")
	fixtureCmd.Flags().StringVar(&fixtureAddr, "addr", "127.0.0.1:8001", "listen address")
	fixtureCmd.Flags().StringVar(&fixtureLatency, "latency", "", "delay every response (e.g., 300ms)")
	fixtureCmd.Flags().StringVar(&fixturePath, "path", stats.DefaultStatsPath, "route for the statistics payload")
	rootCmd.AddCommand(fixtureCmd)
}

func scenarioList() []string {
	names := make([]string, len(fixture.Scenarios))
	for i, s := range fixture.Scenarios {
		names[i] = string(s)
	}
	return names
}

func scenarioNames() string {
	return util.JoinOrDefault(scenarioList(), "none")
}

// fixtureServeOptions configures runFixture.
type fixtureServeOptions struct {
	Scenario fixture.Scenario
	Latency  time.Duration
	Path     string
	Logger   logger.Logger
}

func fixtureCommand(ctx context.Context, out io.Writer) error {
	scenario, err := fixture.ParseScenario(fixtureScenario)
	if err != nil {
		suggestion := util.DidYouMean(fixtureScenario, scenarioList())
		if suggestion == "" {
			suggestion = "Pick one of: " + scenarioNames()
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Unknown scenario '%s'", fixtureScenario),
			suggestion)
	}
	latency, err := ParseDurationFlag("latency", fixtureLatency)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fixtureAddr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't listen on "+fixtureAddr,
			"Pick a free address with --addr")
	}

	level := logLevel
	if level == "" {
		level = "info"
	}
	log := logger.New(os.Stderr, "fixture", level)

	base := "http://" + ln.Addr().String()
	endpoint, _ := stats.JoinURL(base, fixturePath)
	fmt.Fprintf(out, "%s Serving %s scenario at %s\n", ui.SymbolSuccess, scenario, endpoint)
	fmt.Fprintf(out, "  drishti dashboard --url %s\n\n", base)

	return runFixture(ctx, ln, fixtureServeOptions{
		Scenario: scenario,
		Latency:  latency,
		Path:     fixturePath,
		Logger:   log,
	})
}

// runFixture serves on ln until ctx is cancelled, then drains in-flight
// requests for up to shutdownGrace.
func runFixture(ctx context.Context, ln net.Listener, opts fixtureServeOptions) error {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	handler := fixture.NewServer(opts.Scenario, opts.Latency).Router(opts.Path)
	srv := &http.Server{
		Handler:           otelhttp.NewHandler(requestLog(log, handler), "fixture"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return errors.WrapWithCode(err, errors.ErrNetwork, "Fixture server stopped", "")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("fixture shutdown: %v", err)
	}
	<-serveErr
	return nil
}

// requestLog writes one debug line per request.
func requestLog(log logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}
