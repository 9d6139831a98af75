package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/srndpty/j-law-grep/internal/errors"
)

func TestClient_Search_Success(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/search", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hits": [{"file_id": "a", "path": "民法/709", "line": 1, "snippet": "s", "url": ""}],
			"total": 1,
			"took_ms": 4
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Search(context.Background(), SearchRequest{
		Q:       "損害賠償",
		Mode:    ModeLiteral,
		Filters: map[string]string{FilterLaw: "民法"},
		Size:    20,
		Page:    1,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 4, resp.TookMS)
	require.Len(t, resp.Hits, 1)

	assert.Equal(t, "損害賠償", gotBody["q"])
	assert.Equal(t, map[string]any{"law": "民法"}, gotBody["filters"])
}

func TestClient_Search_Non2xxIsSearchFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Search(context.Background(), SearchRequest{Q: "q", Mode: ModeLiteral, Size: 20, Page: 1})

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSearchFailed, apperrors.GetCode(err))
	assert.Equal(t, 500, apperrors.StatusCode(err))
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Search_TransportErrorIsSearchFailed(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Search(context.Background(), SearchRequest{Q: "q", Mode: ModeLiteral, Size: 20, Page: 1})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSearchFailed, apperrors.GetCode(err))
	assert.Equal(t, 0, apperrors.StatusCode(err))
}

func TestClient_Search_TimeoutIsSearchFailed(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		// Drain the body so the server watches the connection and cancels
		// the request context when the timed-out client disconnects;
		// otherwise Close deadlocks waiting for this handler.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := client.Search(context.Background(), SearchRequest{Q: "q", Mode: ModeLiteral, Size: 20, Page: 1})

	<-started
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSearchFailed, apperrors.GetCode(err))
}

func TestClient_Search_MalformedBodyIsSearchFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Search(context.Background(), SearchRequest{Q: "q", Mode: ModeLiteral, Size: 20, Page: 1})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSearchFailed, apperrors.GetCode(err))
}

func TestClient_Search_RejectsInvalidRequestLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Search(context.Background(), SearchRequest{Q: "", Mode: ModeLiteral, Size: 20, Page: 1})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidQuery, apperrors.GetCode(err))
	assert.False(t, called, "invalid requests never reach the wire")
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits": [], "total": 0, "took_ms": 1}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(srv.URL).Ping(context.Background()))

	srv.Close()
	assert.Error(t, NewClient(srv.URL).Ping(context.Background()))
}
