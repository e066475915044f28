package transport

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/ghissues/internal/diag"
)

func TestDiagnosticTransport_LogsRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	var buf bytes.Buffer
	client := &http.Client{Transport: WithDiagnostics(nil, diag.New("Test", &buf))}

	resp, err := client.Post(server.URL+"/repos/o/r/issues", "application/json", nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Contains(t, buf.String(), "POST /repos/o/r/issues -> 201")
	assert.NotContains(t, buf.String(), "Rate limited")
}

func TestDiagnosticTransport_DoesNotRetryRateLimits(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	var buf bytes.Buffer
	client := &http.Client{Transport: WithDiagnostics(nil, diag.New("Test", &buf))}

	resp, err := client.Get(server.URL + "/repos/o/r/issues")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, 1, hits)
	assert.Contains(t, buf.String(), "Rate limited, retry after 30s")
}

func TestRateLimitWait(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	newResp := func(status int, headers map[string]string) *http.Response {
		resp := &http.Response{StatusCode: status, Header: http.Header{}}
		for k, v := range headers {
			resp.Header.Set(k, v)
		}
		return resp
	}

	wait, limited := rateLimitWait(newResp(http.StatusOK, nil), now)
	assert.False(t, limited)
	assert.Zero(t, wait)

	// A plain 403 is a permissions problem, not a rate limit
	_, limited = rateLimitWait(newResp(http.StatusForbidden, nil), now)
	assert.False(t, limited)

	reset := now.Add(90 * time.Second).Unix()
	wait, limited = rateLimitWait(newResp(http.StatusForbidden, map[string]string{
		"X-RateLimit-Remaining": "0",
		"X-RateLimit-Reset":     strconv.FormatInt(reset, 10),
	}), now)
	assert.True(t, limited)
	assert.Equal(t, 90*time.Second, wait)

	wait, limited = rateLimitWait(newResp(http.StatusTooManyRequests, map[string]string{
		"Retry-After": now.Add(time.Minute).Format(time.RFC1123),
	}), now)
	assert.True(t, limited)
	assert.Equal(t, time.Minute, wait)
}
