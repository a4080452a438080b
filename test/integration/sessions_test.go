package integration_test

import (
	"context"
	"testing"

	"notelab/client"
	"notelab/sessions"
	"notelab/test/integration/harness"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	api := client.New(suite.BaseURL())
	ctx := context.Background()

	var created sessions.Session
	harness.RequireNoHTTPError(t, func() error {
		return api.Post(ctx, "api/sessions", map[string]string{
			"path": "scratch.ipynb",
			"name": "scratch",
		}, &created)
	})
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "go", created.KernelName)

	var fetched sessions.Session
	harness.RequireNoHTTPError(t, func() error {
		return api.Get(ctx, "api/sessions/"+created.ID, &fetched)
	})
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "scratch.ipynb", fetched.Path)

	var all []sessions.Session
	harness.RequireNoHTTPError(t, func() error {
		return api.Get(ctx, "api/sessions", &all)
	})
	assert.NotEmpty(t, all)

	harness.RequireNoHTTPError(t, func() error {
		return api.Delete(ctx, "api/sessions/"+created.ID)
	})

	harness.AssertHTTPError(t, 404, created.ID, func() error {
		return api.Get(ctx, "api/sessions/"+created.ID, nil)
	})
}

func TestSessionRequiresPath(t *testing.T) {
	api := client.New(suite.BaseURL())

	harness.AssertHTTPError(t, 400, "path is required", func() error {
		return api.Post(context.Background(), "api/sessions", map[string]string{}, nil)
	})
}
