package provider

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"
)

// RetryPolicy bounds the retry behavior of a single upstream call.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// RetryStatuses lists the response statuses worth another attempt.
	// Anything outside this set returns immediately; 4xx in particular is
	// never transient.
	RetryStatuses []int

	// BackoffBase scales the linear backoff: attempt n waits n*BackoffBase.
	BackoffBase time.Duration

	// Label identifies the call in logs.
	Label string
}

// DefaultRetryStatuses are the transient upstream failures worth retrying.
var DefaultRetryStatuses = []int{
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// normalize fills zero-valued policy fields with usable defaults.
func (p RetryPolicy) normalize() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.RetryStatuses == nil {
		p.RetryStatuses = DefaultRetryStatuses
	}
	if p.BackoffBase <= 0 {
		p.BackoffBase = 500 * time.Millisecond
	}
	if p.Label == "" {
		p.Label = "upstream"
	}
	return p
}

// newStreamingClient returns an HTTP client suitable for SSE relays.
// Compression must stay off or chunk boundaries are lost.
func newStreamingClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DisableCompression: true,
		},
	}
}

// Fetch executes one upstream request with bounded retries. A response whose
// status is outside the policy's retry set is returned as-is, success or not;
// the last response observed is returned when retries are exhausted. Network
// errors are retried until the final attempt, then propagated. The response
// body is the caller's to close.
func Fetch(ctx context.Context, client *http.Client, ur *UpstreamRequest, policy RetryPolicy, logger *slog.Logger) (*http.Response, error) {
	policy = policy.normalize()

	var lastErr error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt-1) * policy.BackoffBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ur.URL, bytes.NewReader(ur.Body))
		if err != nil {
			return nil, err
		}
		req.Header = ur.Headers.Clone()

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			if attempt == policy.Attempts {
				return nil, err
			}
			logger.Warn("upstream call failed, retrying",
				"label", policy.Label,
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		if !slices.Contains(policy.RetryStatuses, resp.StatusCode) || attempt == policy.Attempts {
			return resp, nil
		}

		logger.Warn("upstream returned transient status, retrying",
			"label", policy.Label,
			"attempt", attempt,
			"status", resp.StatusCode,
		)
		drainAndClose(resp)
	}

	return nil, lastErr
}
