package stats

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/logger"
)

const (
	// DefaultBaseURL is where the governance API listens in local setups.
	DefaultBaseURL = "http://localhost:8001"
	// DefaultStatsPath is the dashboard statistics route.
	DefaultStatsPath = "/governance/stats/dashboard"
	// DefaultTimeout bounds a single poll cycle, retries included.
	DefaultTimeout = 4 * time.Second

	maxBodyBytes = 4 << 20
)

// StatusError is the cause attached to a NETWORK error when the endpoint
// answered with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Client fetches snapshots from the stats endpoint.
type Client struct {
	url        string
	http       *http.Client
	timeout    time.Duration
	retries    uint
	retryDelay time.Duration
	log        logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the upper bound for one Fetch call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets how many extra attempts a Fetch makes after a network
// failure. Zero means a single attempt.
func WithRetries(n uint, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.retryDelay = delay
	}
}

// WithHTTPClient replaces the HTTP client. The client's transport is used as
// is; no tracing wrapper is added.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient builds a client for baseURL joined with statsPath.
func NewClient(baseURL, statsPath string, opts ...Option) (*Client, error) {
	endpoint, err := JoinURL(baseURL, statsPath)
	if err != nil {
		return nil, err
	}

	c := &Client{
		url: endpoint,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout:    DefaultTimeout,
		retryDelay: 250 * time.Millisecond,
		log:        logger.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// JoinURL validates baseURL and appends statsPath to it.
func JoinURL(baseURL, statsPath string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a usable API URL", baseURL),
			"Use an absolute http(s) URL like http://localhost:8001")
	}
	if statsPath == "" {
		statsPath = DefaultStatsPath
	}
	return strings.TrimRight(u.String(), "/") + "/" + strings.TrimLeft(statsPath, "/"), nil
}

// URL returns the full endpoint this client polls.
func (c *Client) URL() string {
	return c.url
}

// Timeout returns the per-fetch upper bound.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Fetch performs one poll cycle: a GET of the stats endpoint bounded by the
// client timeout. Network failures may be retried within that bound; decode
// failures never are.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body []byte
	err := retry.Do(
		func() error {
			b, err := c.get(ctx)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Attempts(c.retries+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug("retrying stats fetch (attempt %d): %s", n+2, errors.ShortMessage(err))
		}),
	)
	if err != nil {
		return nil, c.classify(ctx, err)
	}

	return Decode(body)
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Can't build stats request", "")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// classify turns a transport failure into a NETWORK error with a useful message.
func (c *Client) classify(ctx context.Context, err error) error {
	var statusErr *StatusError
	switch {
	case stderrors.As(err, &statusErr):
		return errors.WrapWithCode(statusErr, errors.ErrNetwork,
			fmt.Sprintf("Stats endpoint returned %d", statusErr.StatusCode),
			"Check the API logs; the dashboard keeps showing the last good data")
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded):
		return errors.WrapWithCode(err, errors.ErrNetwork,
			fmt.Sprintf("Stats request timed out after %s", c.timeout),
			"The API may be overloaded; raise fetch.timeout if this persists")
	case stderrors.Is(err, context.Canceled):
		return errors.WrapWithCode(err, errors.ErrNetwork, "Stats request cancelled", "")
	default:
		return errors.WrapWithCode(err, errors.ErrNetwork,
			fmt.Sprintf("Can't reach %s", c.url),
			"Check that the API is running and DRISHTI_API_URL is correct")
	}
}

// isRetryable allows retries for transport errors and 5xx responses only.
func isRetryable(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if stderrors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return true
}
