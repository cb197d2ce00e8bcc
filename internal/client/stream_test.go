package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamStatusesParsesFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/acc-t1/statuses/stream", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		fl := w.(http.Flusher)

		fmt.Fprint(w, "event: status\ndata: {\"thread_id\":\"th-1\",\"status\":\"running\"}\n\n")
		fl.Flush()

		// Non-status frames are skipped.
		fmt.Fprint(w, "event: ping\ndata: {}\n\n")
		fl.Flush()

		// Malformed data is logged and skipped, not fatal.
		fmt.Fprint(w, "event: status\ndata: {broken\n\n")
		fl.Flush()

		fmt.Fprint(w, "event: status\ndata: {\"thread_id\":\"th-1\",\"status\":\"completed\"}\n\n")
		fl.Flush()
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1", 2, nil)

	var got []StatusUpdate
	err := c.StreamStatuses(context.Background(), "acc-t1", func(u StatusUpdate) {
		got = append(got, u)
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, StatusUpdate{ThreadID: "th-1", Status: "running"}, got[0])
	assert.Equal(t, StatusUpdate{ThreadID: "th-1", Status: "completed"}, got[1])
}

func TestStreamStatusesCancelReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := New(srv.URL, "tok-1", 2, nil)

	done := make(chan error, 1)
	go func() {
		done <- c.StreamStatuses(ctx, "acc-t1", nil)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}
}

func TestStreamStatusesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1", 2, nil)
	err := c.StreamStatuses(context.Background(), "acc-t1", nil)
	assert.Error(t, err)
}
