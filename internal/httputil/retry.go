// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the remote catalog and the
// remote analysis backend.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseDelay is the first backoff delay when a policy does not set one.
// Tests override it to avoid real sleeps.
var DefaultBaseDelay = 500 * time.Millisecond

const (
	defaultMaxRetries = 3
	maxRetryAfter     = 30 * time.Second
)

// RetryPolicy controls retries on throttling responses.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt. Zero
	// uses the default (3).
	MaxRetries int

	// BaseDelay starts the exponential backoff. Zero uses DefaultBaseDelay.
	BaseDelay time.Duration

	Logger *zap.Logger
}

// retryable reports whether the server asked us to come back later.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// Do executes req and retries on HTTP 429 and 503 with exponential backoff
// (BaseDelay, 2*BaseDelay, 4*BaseDelay, ...). A Retry-After header given in
// seconds replaces the computed delay, capped at 30s.
//
// The request body must be replayable: requests built by
// http.NewRequestWithContext from a bytes.Reader or strings.Reader are.
// If ctx is cancelled during a backoff wait Do returns ctx.Err(). After
// exhausting retries the last throttled response is returned so the caller
// can inspect it.
func (p RetryPolicy) Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		backoff := base << attempt
		if ra, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
			backoff = ra
		}

		// Drain and close the body before retrying.
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		logger.Debug("throttled, retrying",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func retryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d, true
}
