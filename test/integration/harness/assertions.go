package harness

import (
	"errors"
	"testing"

	"notelab/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertHTTPError runs fn and requires that it fails with an API error of
// the expected status. If substr is non-empty it must appear in the error
// text. A nil error fails the test ("expected HTTP error status"), and any
// error that is not a *client.HTTPError fails it with that error.
func AssertHTTPError(tb testing.TB, status int, substr string, fn func() error) {
	tb.Helper()

	err := fn()
	if err == nil {
		tb.Fatalf("Expected HTTP error status %d, but the call succeeded", status)
	}

	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) {
		tb.Fatalf("Expected HTTP error status %d, got a different failure: %v", status, err)
	}

	assert.Equal(tb, status, httpErr.StatusCode,
		"Expected HTTP status %d, got %d (error: %v)", status, httpErr.StatusCode, httpErr)
	if substr != "" {
		assert.Contains(tb, httpErr.Error(), substr,
			"Expected error text to contain %q", substr)
	}
}

// RequireNoHTTPError runs fn and fails the test on any error, printing the
// status code when the failure is an API error.
func RequireNoHTTPError(tb testing.TB, fn func() error) {
	tb.Helper()

	err := fn()
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		tb.Fatalf("Unexpected HTTP error %d: %v", httpErr.StatusCode, httpErr)
	}
	require.NoError(tb, err)
}
