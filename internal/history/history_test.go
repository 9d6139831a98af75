package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srndpty/j-law-grep/internal/api"
)

func testStore(t *testing.T, max int) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "history.jsonl"), max)
}

func req(q string) api.SearchRequest {
	return api.SearchRequest{Q: q, Mode: api.ModeLiteral, Size: 20, Page: 1}
}

func TestAppendAndRecent(t *testing.T) {
	s := testStore(t, 0)

	require.NoError(t, s.Append(req("民法 709条")))
	require.NoError(t, s.Append(req("刑法 199条")))

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, "刑法 199条", entries[0].Query)
	assert.Equal(t, "民法 709条", entries[1].Query)
}

func TestRecent_DedupesByQuery(t *testing.T) {
	s := testStore(t, 0)
	require.NoError(t, s.Append(req("民法")))
	require.NoError(t, s.Append(req("刑法")))
	require.NoError(t, s.Append(req("民法")))

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "民法", entries[0].Query)
	assert.Equal(t, "刑法", entries[1].Query)
}

func TestRecent_LimitsCount(t *testing.T) {
	s := testStore(t, 0)
	for _, q := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Append(req(q)))
	}

	entries, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "d", entries[0].Query)
	assert.Equal(t, "c", entries[1].Query)
}

func TestRecent_EmptyStore(t *testing.T) {
	s := testStore(t, 0)
	entries, err := s.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAppend_CompactsBeyondMax(t *testing.T) {
	s := testStore(t, 3)
	for _, q := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, s.Append(req(q)))
	}

	entries, err := s.Recent(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "e", entries[0].Query)
	assert.Equal(t, "c", entries[2].Query)
}

func TestRecent_SkipsCorruptLines(t *testing.T) {
	s := testStore(t, 0)
	require.NoError(t, s.Append(req("民法")))

	f, err := os.OpenFile(s.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{truncated\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, s.Append(req("商法")))

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestAppend_KeepsFilters(t *testing.T) {
	s := testStore(t, 0)
	r := req("709条")
	r.Filters = map[string]string{api.FilterLaw: "民法"}
	require.NoError(t, s.Append(r))

	entries, err := s.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "民法", entries[0].Filters[api.FilterLaw])
}
