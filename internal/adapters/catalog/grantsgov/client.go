// Package grantsgov searches the public Grants.gov search2 API
package grantsgov

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"grantwise/internal/core/version"
	perr "grantwise/internal/platform/errors"
	"grantwise/internal/platform/logger"
)

const (
	baseURLDefault   = "https://api.grants.gov/v1/api"
	defaultRetryBase = 250 * time.Millisecond
	maxBody          = 4 << 20
)

// Options configures the Client. The aggregator bounds each call with its own
// deadline, so there is no client-level timeout here
type Options struct {
	BaseURL    string
	MaxRetries int // retries after the first attempt; 0 sends exactly once
	RetryBase  time.Duration
	Rows       int
	HTTP       *http.Client
}

// Client is a small search2 client with retry on transient failures
type Client struct {
	http *http.Client
	opts Options
	log  *logger.Logger
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient applies defaults to o
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.Rows <= 0 {
		o.Rows = 50
	}
	hc := o.HTTP
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{http: hc, opts: o, log: logger.Named("grantsgov"), wait: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// post sends body as JSON to path and decodes the reply into out. Transport
// errors and 502/503/504 are retried with exponential backoff
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "grantsgov encode request")
	}
	url := c.opts.BaseURL + path

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "grantsgov new request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", version.UserAgent())

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil || attempt >= c.opts.MaxRetries {
				return perr.FromUpstream(err, "grantsgov request failed")
			}
			if werr := c.backoff(ctx, attempt, "transport error"); werr != nil {
				return perr.FromUpstream(werr, "grantsgov request failed")
			}
			continue
		}

		c.log.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Dur("latency", time.Since(start)).
			Msg("grantsgov http response")

		switch {
		case resp.StatusCode == http.StatusOK:
			defer resp.Body.Close()
			b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
			if err != nil {
				return perr.FromUpstream(err, "grantsgov read body")
			}
			if err := json.Unmarshal(b, out); err != nil {
				return perr.Wrapf(err, perr.ErrorCodeUpstreamShape, "grantsgov decode reply")
			}
			return nil
		case resp.StatusCode == http.StatusBadGateway,
			resp.StatusCode == http.StatusServiceUnavailable,
			resp.StatusCode == http.StatusGatewayTimeout:
			drainAndClose(resp.Body)
			if attempt >= c.opts.MaxRetries {
				return perr.Newf(perr.ErrorCodeUpstreamUnavailable, "grantsgov status %d", resp.StatusCode)
			}
			if werr := c.backoff(ctx, attempt, "transient status"); werr != nil {
				return perr.FromUpstream(werr, "grantsgov request failed")
			}
		default:
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			_ = resp.Body.Close()
			return perr.Newf(perr.ErrorCodeUpstreamUnavailable, "grantsgov status %d: %s", resp.StatusCode, tail)
		}
	}
}

func (c *Client) backoff(ctx context.Context, attempt int, why string) error {
	d := c.opts.RetryBase << uint(attempt)
	d = min(d, 5*time.Second)
	c.log.Warn().Str("reason", why).Dur("retry_in", d).Int("attempt", attempt).Msg("grantsgov retrying")
	return c.wait(ctx, d)
}

func drainAndClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	_ = rc.Close()
}
