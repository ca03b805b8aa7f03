package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupIndexSeedAndAdd(t *testing.T) {
	idx := NewDedupIndex([]Record{rec(1), rec(2), rec(1)})
	require.Equal(t, 2, idx.Len())
	require.True(t, idx.Contains(rec(1).Link))
	require.False(t, idx.Contains(rec(3).Link))

	require.True(t, idx.Add(rec(3).Link))
	require.False(t, idx.Add(rec(3).Link))
	require.False(t, idx.Add(""), "empty links are never indexed")
	require.Equal(t, 3, idx.Len())
}

func TestDedupIndexFilterDoesNotMutate(t *testing.T) {
	idx := NewDedupIndex([]Record{rec(2)})
	candidates := []Record{rec(1), rec(2), rec(3), rec(1), {Name: "missing link"}}

	got := idx.Filter(candidates)

	assert.Equal(t, []Record{rec(1), rec(3)}, got)
	assert.Equal(t, 1, idx.Len())
	assert.False(t, idx.Contains(rec(1).Link))
}

func TestDedupIndexNameIsNotIdentity(t *testing.T) {
	idx := NewDedupIndex([]Record{{Name: "same", Link: "https://a/1.mp3"}})
	got := idx.Filter([]Record{{Name: "same", Link: "https://a/2.mp3"}})
	require.Len(t, got, 1)
}
