// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP plumbing shared by the provider
// adapters, search clients, and scrapers.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RateLimitDelay is the first wait after an HTTP 429. Each further 429
// doubles it. Tests override this to avoid real sleeps.
var RateLimitDelay = 3 * time.Second

const defaultRateLimitRetries = 3

// DoWithRetry sends req and retries while the server answers 429 Too Many
// Requests. A Retry-After header given in seconds replaces the computed
// wait. maxRetries <= 0 selects the default (3).
//
// After the last retry the 429 response is returned unread so the caller
// reports the status. Cancelling ctx during a wait returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultRateLimitRetries
	}
	if client == nil {
		client = http.DefaultClient
	}

	wait := RateLimitDelay
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		d := wait
		if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s >= 0 {
			d = time.Duration(s) * time.Second
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
		wait *= 2
	}
}
