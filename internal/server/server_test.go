package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(http.NotFoundHandler(), Options{Port: 0, ShutdownTimeout: time.Second}, logger)
}

func TestShutdown_RunsHooksInReverseOrder(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	var order []string
	for _, name := range []string{"worker", "publisher", "cache"} {
		name := name
		srv.OnShutdown(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Equal(t, []string{"cache", "publisher", "worker"}, order)
}

func TestShutdown_ContinuesAfterHookFailure(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	errDrain := errors.New("drain timed out")
	ran := false
	srv.OnShutdown("worker", func(context.Context) error {
		ran = true
		return nil
	})
	srv.OnShutdown("publisher", func(context.Context) error { return errDrain })

	err := srv.Shutdown(context.Background())

	assert.ErrorIs(t, err, errDrain)
	assert.Contains(t, err.Error(), "publisher")
	assert.True(t, ran)
}

func TestRun_StopsWhenContextCanceled(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	stopped := make(chan struct{})
	srv.OnShutdown("worker", func(context.Context) error {
		close(stopped)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	<-stopped
	assert.Equal(t, ":0", srv.Addr())
}
