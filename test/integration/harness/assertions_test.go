package harness

import (
	"errors"
	"testing"

	"notelab/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notFoundErr() error {
	return &client.HTTPError{StatusCode: 404, URL: "http://localhost:12341/api/contents/x", Message: "no such file"}
}

func TestAssertHTTPErrorMatchingStatus(t *testing.T) {
	rec := runWithRecorder(func(tb testing.TB) {
		AssertHTTPError(tb, 404, "", func() error { return notFoundErr() })
	})
	assert.Empty(t, rec.errs)
	assert.Empty(t, rec.fatals)
}

func TestAssertHTTPErrorMatchingSubstring(t *testing.T) {
	rec := runWithRecorder(func(tb testing.TB) {
		AssertHTTPError(tb, 404, "no such file", func() error { return notFoundErr() })
	})
	assert.Empty(t, rec.errs)
	assert.Empty(t, rec.fatals)
}

func TestAssertHTTPErrorStatusMismatchReportsBoth(t *testing.T) {
	rec := runWithRecorder(func(tb testing.TB) {
		AssertHTTPError(tb, 404, "", func() error {
			return &client.HTTPError{StatusCode: 500, URL: "http://localhost:12341/api/contents", Message: "boom"}
		})
	})
	require.NotEmpty(t, rec.errs)
	assert.Contains(t, rec.errs[0], "404")
	assert.Contains(t, rec.errs[0], "500")
}

func TestAssertHTTPErrorOnSuccessFails(t *testing.T) {
	rec := runWithRecorder(func(tb testing.TB) {
		AssertHTTPError(tb, 404, "", func() error { return nil })
	})
	require.NotEmpty(t, rec.fatals)
	assert.Contains(t, rec.fatals[0], "Expected HTTP error status")
}

func TestAssertHTTPErrorOnForeignError(t *testing.T) {
	rec := runWithRecorder(func(tb testing.TB) {
		AssertHTTPError(tb, 404, "", func() error { return errors.New("connection refused") })
	})
	require.NotEmpty(t, rec.fatals)
	assert.Contains(t, rec.fatals[0], "connection refused")
}

func TestRequireNoHTTPErrorPassesThroughSuccess(t *testing.T) {
	rec := runWithRecorder(func(tb testing.TB) {
		RequireNoHTTPError(tb, func() error { return nil })
	})
	assert.Empty(t, rec.errs)
	assert.Empty(t, rec.fatals)
}

func TestRequireNoHTTPErrorReportsStatus(t *testing.T) {
	rec := runWithRecorder(func(tb testing.TB) {
		RequireNoHTTPError(tb, func() error { return notFoundErr() })
	})
	require.NotEmpty(t, rec.fatals)
	assert.Contains(t, rec.fatals[0], "404")
}
