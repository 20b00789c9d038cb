package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsNilHandler(t *testing.T) {
	_, err := New("127.0.0.1:0", nil, nil)
	require.Error(t, err)
}

func TestServerRunShutsDownOnContextCancel(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	srv, err := New("127.0.0.1:0", handler, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down within timeout")
	}
}

func TestNewForPortBuildsWildcardAddress(t *testing.T) {
	srv, err := NewForPort(0, http.NotFoundHandler(), nil)
	require.NoError(t, err)
	require.Contains(t, srv.addr, "0.0.0.0:")
}

func TestManagerRunStopsAllServersOnCancel(t *testing.T) {
	handler := http.NotFoundHandler()
	s1, err := New("127.0.0.1:0", handler, nil)
	require.NoError(t, err)
	s2, err := New("127.0.0.1:0", handler, nil)
	require.NoError(t, err)

	m := &Manager{servers: []*Server{s1, s2}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.True(t, errors.Is(err, context.Canceled) || err == nil)
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not shut down within timeout")
	}
}
