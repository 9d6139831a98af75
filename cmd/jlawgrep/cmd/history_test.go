package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srndpty/j-law-grep/internal/api"
	"github.com/srndpty/j-law-grep/internal/history"
)

func TestHistoryCmd_Empty(t *testing.T) {
	out, err := execute(t, "history")

	require.NoError(t, err)
	assert.Contains(t, out, "no searches recorded yet")
}

func TestHistoryCmd_AfterSearches(t *testing.T) {
	srv, _ := newBackend(t, func(api.SearchRequest) *api.SearchResponse {
		return &api.SearchResponse{}
	})
	// One config home across all invocations so history accumulates.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	run := func(args ...string) *bytes.Buffer {
		t.Helper()
		flagConfig = ""
		flagEndpoint = ""
		cmd := NewRootCmd()
		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
		return buf
	}

	run("search", "民法 709条", "--endpoint", srv.URL)
	run("search", "刑法 199条", "--endpoint", srv.URL)
	buf := run("history", "--json")

	var entries []history.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "刑法 199条", entries[0].Query, "newest first")
	assert.Equal(t, "民法 709条", entries[1].Query)
}

func TestHistoryCmd_TextListing(t *testing.T) {
	srv, _ := newBackend(t, func(api.SearchRequest) *api.SearchResponse {
		return &api.SearchResponse{}
	})
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	flagConfig = ""
	flagEndpoint = ""
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"search", "商法 512条", "--endpoint", srv.URL})
	require.NoError(t, cmd.Execute())

	flagConfig = ""
	flagEndpoint = ""
	cmd = NewRootCmd()
	buf.Reset()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"history"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "商法 512条")
}
