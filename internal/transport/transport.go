// Package transport provides HTTP round trippers used by the GitHub client.
package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cchalm/ghissues/internal/diag"
)

// DiagnosticTransport records every GitHub request and its outcome on the diagnostic channel. It never retries; a
// rate-limited response is reported and handed back to the caller like any other failure
type DiagnosticTransport struct {
	base http.RoundTripper
	out  *diag.Channel
	now  func() time.Time
}

func WithDiagnostics(base http.RoundTripper, out *diag.Channel) *DiagnosticTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &DiagnosticTransport{base: base, out: out, now: time.Now}
}

func (t *DiagnosticTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := t.now()

	resp, err := t.base.RoundTrip(req)
	elapsed := t.now().Sub(start).Round(time.Millisecond)
	if err != nil {
		t.out.AppendLine("%s %s failed after %s: %v", req.Method, req.URL.Path, elapsed, err)
		return resp, err
	}

	t.out.AppendLine("%s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, elapsed)

	if wait, limited := rateLimitWait(resp, t.now()); limited {
		if wait > 0 {
			t.out.AppendLine("Rate limited, retry after %s", wait)
		} else {
			t.out.AppendLine("Rate limited")
		}
	}

	return resp, nil
}

// rateLimitWait reports whether resp is a rate-limit rejection and, when the server said so, how long to wait before
// trying again
func rateLimitWait(resp *http.Response, now time.Time) (time.Duration, bool) {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
	case http.StatusForbidden:
		if resp.Header.Get("x-ratelimit-remaining") != "0" {
			return 0, false
		}
	default:
		return 0, false
	}

	if retryAfterStr := resp.Header.Get("retry-after"); retryAfterStr != "" {
		// Try parsing as seconds
		if seconds, err := strconv.Atoi(retryAfterStr); err == nil {
			return time.Duration(seconds) * time.Second, true
		} else if retryTime, err := time.Parse(time.RFC1123, retryAfterStr); err == nil {
			return retryTime.Sub(now), true
		}
	}

	if resetStr := resp.Header.Get("x-ratelimit-reset"); resetStr != "" {
		if epoch, err := strconv.ParseInt(resetStr, 10, 64); err == nil {
			return time.Unix(epoch, 0).Sub(now), true
		}
	}

	return 0, true
}
