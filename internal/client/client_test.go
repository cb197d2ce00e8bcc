package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAccountsSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "acc-p", "name": "Alice", "personal": true},
			{"id": "acc-t1", "name": "Platform Team", "slug": "platform"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1", 2, nil)
	accounts, err := c.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].Personal)
	assert.Equal(t, "platform", accounts[1].Slug)
}

func TestGetSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "token expired"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-stale", 2, nil)
	_, err := c.ListThreads(context.Background(), "acc-t1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestDeleteThreadSendsSandboxID(t *testing.T) {
	var gotPath, gotSandbox string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		gotSandbox = r.URL.Query().Get("sandbox_id")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1", 2, nil)
	require.NoError(t, c.DeleteThread(context.Background(), "th-1", "sb-1"))
	assert.Equal(t, "/v1/threads/th-1", gotPath)
	assert.Equal(t, "sb-1", gotSandbox)
}

func TestDeleteThreadTreatsNotFoundAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1", 2, nil)
	assert.NoError(t, c.DeleteThread(context.Background(), "th-gone", ""))
}

func TestBulkDeletePartitionsInInputOrder(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/v1/threads/"):]
		mu.Lock()
		seen[id] = r.URL.Query().Get("sandbox_id")
		mu.Unlock()
		if id == "th-2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1", 2, nil)

	var cbMu sync.Mutex
	settled := map[string]int{}
	succeeded, failed, err := c.BulkDeleteThreads(
		context.Background(),
		[]string{"th-3", "th-1", "th-2"},
		map[string]string{"th-3": "sb-3", "th-1": "sb-1"},
		func(id string, _ error) {
			cbMu.Lock()
			settled[id]++
			cbMu.Unlock()
		},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"th-3", "th-1"}, succeeded)
	assert.Equal(t, []string{"th-2"}, failed)

	// Each id settles exactly once.
	assert.Equal(t, map[string]int{"th-1": 1, "th-2": 1, "th-3": 1}, settled)

	// Sandbox IDs flow through; th-2 has no environment to clean up.
	assert.Equal(t, "sb-3", seen["th-3"])
	assert.Equal(t, "sb-1", seen["th-1"])
	assert.Equal(t, "", seen["th-2"])
}

func TestBulkDeleteEmptyIDs(t *testing.T) {
	c := New("http://unused.invalid", "", 2, nil)
	succeeded, failed, err := c.BulkDeleteThreads(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, succeeded)
	assert.Nil(t, failed)
}

func TestLimiterBoundsConcurrency(t *testing.T) {
	const maxConcurrent = 2

	var mu sync.Mutex
	active, peak := 0, 0
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		<-release

		mu.Lock()
		active--
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1", maxConcurrent, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.BulkDeleteThreads(context.Background(), []string{"th-1", "th-2", "th-3", "th-4"}, nil, nil)
	}()

	close(release)
	<-done

	assert.LessOrEqual(t, peak, maxConcurrent)
}
