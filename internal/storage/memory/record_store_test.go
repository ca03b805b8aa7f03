package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/sons-crawler/internal/crawler"
)

func TestRecordStoreAppendAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewRecordStore(crawler.Record{Name: "a", Link: "u1"})
	require.NoError(t, store.Append(ctx, nil))
	require.NoError(t, store.Append(ctx, []crawler.Record{{Name: "b", Link: "u2"}}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []crawler.Record{{Name: "a", Link: "u1"}, {Name: "b", Link: "u2"}}, got)

	got[0].Name = "mutated"
	again, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", again[0].Name, "Load must return a copy")
}

func TestRecordStoreEmpty(t *testing.T) {
	t.Parallel()

	got, err := NewRecordStore().Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}
