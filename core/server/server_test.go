package server_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fanout/core/server"
)

func freeAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServer_StartAndStop(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	srv := server.New(addr, server.WithShutdownTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan error, 1)
	go func() {
		started <- srv.Start(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/", addr))
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "ok"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Stop())

	cancel()
	assert.ErrorIs(t, <-started, context.Canceled)
}

func TestServer_StartTwice(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	srv := server.New(addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = srv.Start(ctx, http.NotFoundHandler()) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, srv.Start(ctx, http.NotFoundHandler()), server.ErrServerAlreadyRunning)
	require.NoError(t, srv.Stop())
}

func TestServer_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	srv := server.New(addr)

	ctx, cancel := context.WithCancel(context.Background())
	run := srv.Run(ctx, http.NotFoundHandler())

	done := make(chan error, 1)
	go func() { done <- run() }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancellation")
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing address", func(t *testing.T) {
		t.Parallel()

		_, err := server.NewFromConfig(server.Config{})
		assert.ErrorIs(t, err, server.ErrMissingAddress)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		srv, err := server.NewFromConfig(server.DefaultConfig())
		require.NoError(t, err)
		assert.NotNil(t, srv)
	})
}
