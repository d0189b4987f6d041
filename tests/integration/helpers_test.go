//go:build integration

package integration

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bissquit/runningsport/internal/app"
	"github.com/bissquit/runningsport/internal/config"
	"github.com/stretchr/testify/require"
)

// newAppServer starts an extra app instance for tests that need their own
// settings. It is shut down with the test.
func newAppServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	application, err := app.New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Router())
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = application.Shutdown(ctx)
	})
	return srv
}
