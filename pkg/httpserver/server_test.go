package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentforge/contentforge/pkg/httpserver"
)

func TestConfig_ListenAddr(t *testing.T) {
	t.Parallel()

	cfg := httpserver.Config{Addr: ":8090"}
	assert.Equal(t, ":8090", cfg.ListenAddr())

	cfg.Port = 3000
	assert.Equal(t, ":3000", cfg.ListenAddr())
}

func TestServer_RunAndShutdown(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.Config{
		Addr:            "127.0.0.1:0",
		ShutdownTimeout: time.Second,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
	}()

	// Give the listener a moment to come up, then stop it.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_RunFailsOnBusyPort(t *testing.T) {
	t.Parallel()

	// Occupy a port with a throwaway server.
	blocker := httptest.NewServer(http.NotFoundHandler())
	defer blocker.Close()

	addr := blocker.Listener.Addr().String()
	srv := httpserver.New(httpserver.Config{Addr: addr}, nil)

	err := srv.Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpserver.ErrStart))
}

func TestHealthcheckHandler(t *testing.T) {
	t.Parallel()

	ok := httpserver.HealthCheck{Name: "ok", Check: func(context.Context) error { return nil }}
	bad := httpserver.HealthCheck{Name: "bad", Check: func(context.Context) error { return errors.New("down") }}

	rec := httptest.NewRecorder()
	httpserver.HealthcheckHandler(time.Second, ok)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	httpserver.HealthcheckHandler(time.Second, ok, bad)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "down")
}
