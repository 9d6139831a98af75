package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srndpty/j-law-grep/internal/api"
)

// newBackend starts a fake search backend and records the requests it
// receives.
func newBackend(t *testing.T, handler func(api.SearchRequest) *api.SearchResponse) (*httptest.Server, func() []api.SearchRequest) {
	t.Helper()
	var mu sync.Mutex
	var reqs []api.SearchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		reqs = append(reqs, req)
		mu.Unlock()
		require.NoError(t, json.NewEncoder(w).Encode(handler(req)))
	}))
	t.Cleanup(srv.Close)

	return srv, func() []api.SearchRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]api.SearchRequest(nil), reqs...)
	}
}

// execute runs the root command with a clean environment, returning
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	flagConfig = ""
	flagEndpoint = ""
	debugMode = false

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSearchCmd_Text(t *testing.T) {
	srv, requests := newBackend(t, func(api.SearchRequest) *api.SearchResponse {
		return &api.SearchResponse{
			Hits: []api.SearchHit{
				{Path: "民法/709", Line: 1, Snippet: "<mark>不法行為</mark>による損害", URL: "https://laws.example/709"},
			},
			Total:  1,
			TookMS: 5,
		}
	})

	out, err := execute(t, "search", "民法", "709条", "--endpoint", srv.URL, "--law", "民法")

	require.NoError(t, err)
	assert.Contains(t, out, "検索結果 1件")
	assert.Contains(t, out, "民法/709:1")
	assert.Contains(t, out, "不法行為による損害")
	assert.NotContains(t, out, "<mark>")

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "民法 709条", reqs[0].Q, "multi-arg query joined with spaces")
	assert.Equal(t, api.ModeLiteral, reqs[0].Mode)
	assert.Equal(t, map[string]string{"law": "民法"}, reqs[0].Filters)
}

func TestSearchCmd_JSONKeepsMarkup(t *testing.T) {
	srv, _ := newBackend(t, func(api.SearchRequest) *api.SearchResponse {
		return &api.SearchResponse{
			Hits:  []api.SearchHit{{Path: "民法/709", Snippet: "<mark>損害</mark>"}},
			Total: 1,
		}
	})

	out, err := execute(t, "search", "損害", "--endpoint", srv.URL, "--format", "json")

	require.NoError(t, err)
	var resp api.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "<mark>損害</mark>", resp.Hits[0].Snippet)
}

func TestSearchCmd_RegexModeAndSize(t *testing.T) {
	srv, requests := newBackend(t, func(api.SearchRequest) *api.SearchResponse {
		return &api.SearchResponse{}
	})

	_, err := execute(t, "search", "第[0-9]+条", "--endpoint", srv.URL, "--mode", "regex", "-n", "5", "-p", "3")

	require.NoError(t, err)
	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, api.ModeRegex, reqs[0].Mode)
	assert.Equal(t, 5, reqs[0].Size)
	assert.Equal(t, 3, reqs[0].Page)
	assert.Nil(t, reqs[0].Filters, "no filters flag means no filters key")
}

func TestSearchCmd_AllFetchesEveryPage(t *testing.T) {
	// 45 hits at 20 per page is 3 pages.
	srv, requests := newBackend(t, func(req api.SearchRequest) *api.SearchResponse {
		start := (req.Page - 1) * req.Size
		n := req.Size
		if start+n > 45 {
			n = 45 - start
		}
		hits := make([]api.SearchHit, n)
		for i := range hits {
			hits[i] = api.SearchHit{Path: "民法", Line: start + i + 1, Snippet: "時効"}
		}
		return &api.SearchResponse{Hits: hits, Total: 45, TookMS: 2}
	})

	out, err := execute(t, "search", "時効", "--endpoint", srv.URL, "--all", "--format", "json")

	require.NoError(t, err)
	var resp api.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Hits, 45)
	assert.Equal(t, 45, resp.Total)
	for i, hit := range resp.Hits {
		assert.Equal(t, i+1, hit.Line, "hits stay in page order")
	}

	pages := make(map[int]bool)
	for _, req := range requests() {
		pages[req.Page] = true
	}
	assert.Len(t, pages, 3)
}

func TestSearchCmd_BackendErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := execute(t, "search", "民法", "--endpoint", srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSearchCmd_UnknownFormatRejected(t *testing.T) {
	_, err := execute(t, "search", "民法", "--format", "yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
