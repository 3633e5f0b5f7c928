// Package jellyfin implements the HTTP client for Jellyfin and Emby-derived
// media servers. It exposes the small set of read-only catalog operations
// the resolution pipeline needs: item queries, season/episode listings and
// playback info. Every call is a single GET returning parsed JSON; transient
// upstream failures are retried, everything else is surfaced as an error the
// caller treats as a soft lookup miss.
package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/opd-ai/go-jf-stremio/internal/metrics"
)

// Options tunes client behavior. The zero value gets sensible defaults.
type Options struct {
	// Timeout bounds each individual request, including retries of it.
	Timeout time.Duration
	// RetryAttempts is the number of additional attempts after a transient
	// failure.
	RetryAttempts int
	// RequestsPerSecond caps outbound calls to the remote server. Zero
	// disables the limiter.
	RequestsPerSecond float64

	// HTTPClient and Limiter override the internally constructed ones so
	// several per-request clients can share a connection pool and budget.
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

// Client talks to one remote server as one user. It is cheap to construct
// per request when given a shared HTTPClient and Limiter via Options.
type Client struct {
	creds   Credentials
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	retries int
}

// retryDelay is the base pause between retry attempts, scaled linearly by
// attempt number.
const retryDelay = 500 * time.Millisecond

// New creates a client bound to the given credentials. The credentials are
// not validated here; callers check Credentials.Validate before resolving.
func New(creds Credentials, opts Options, logger *slog.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := opts.Limiter
	if limiter == nil && opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), int(opts.RequestsPerSecond)+1)
	}

	return &Client{
		creds:   creds,
		http:    httpClient,
		limiter: limiter,
		logger:  logger,
		retries: opts.RetryAttempts,
	}
}

// Items queries the user's library with the given query parameters and
// returns the matching items.
func (c *Client) Items(ctx context.Context, query url.Values) ([]Item, error) {
	var page ItemsPage
	path := fmt.Sprintf("/Users/%s/Items", url.PathEscape(c.creds.UserID))
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Seasons lists the seasons of a series.
func (c *Client) Seasons(ctx context.Context, seriesID string) ([]Item, error) {
	var page ItemsPage
	path := fmt.Sprintf("/Shows/%s/Seasons", url.PathEscape(seriesID))
	query := url.Values{"userId": {c.creds.UserID}}
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Episodes lists the episodes of one season of a series.
func (c *Client) Episodes(ctx context.Context, seriesID, seasonID string) ([]Item, error) {
	var page ItemsPage
	path := fmt.Sprintf("/Shows/%s/Episodes", url.PathEscape(seriesID))
	query := url.Values{
		"userId":   {c.creds.UserID},
		"seasonId": {seasonID},
	}
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// PlaybackInfoFor returns every playable MediaSource for an item.
func (c *Client) PlaybackInfoFor(ctx context.Context, itemID string) (*PlaybackInfo, error) {
	var info PlaybackInfo
	path := fmt.Sprintf("/Items/%s/PlaybackInfo", url.PathEscape(itemID))
	query := url.Values{"UserId": {c.creds.UserID}}
	if err := c.get(ctx, path, query, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// get performs one GET against the server, retrying transient failures, and
// decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.creds.baseURL() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("Retrying server request",
				"path", path,
				"attempt", attempt,
				"error", lastErr)
			if err := sleepCtx(ctx, time.Duration(attempt)*retryDelay); err != nil {
				return err
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		retryable, err := c.do(ctx, target, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

// do executes a single request attempt. The bool result reports whether the
// failure is worth retrying.
func (c *Client) do(ctx context.Context, target string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	c.creds.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(metrics.StatusClass(0)).Inc()
		// Network errors are typically transient.
		return true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequests.WithLabelValues(metrics.StatusClass(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("failed to decode response: %w", err)
		}
		return false, nil
	default:
		io.Copy(io.Discard, resp.Body)
		err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		return isRetryableStatus(resp.StatusCode), err
	}
}

// isRetryableStatus classifies HTTP statuses for retry purposes. Client
// errors are permanent; rate limiting and server errors are temporary.
func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500
}

// sleepCtx pauses for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
