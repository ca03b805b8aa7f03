package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/sons-crawler/internal/config"
	"github.com/JakeFAU/sons-crawler/internal/crawler"
	collyfetcher "github.com/JakeFAU/sons-crawler/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/sons-crawler/internal/fetcher/headless"
	"github.com/JakeFAU/sons-crawler/internal/storage/local"
	"github.com/JakeFAU/sons-crawler/internal/storage/memory"
)

func TestNewRecordStore(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Storage: config.StorageConfig{Backend: config.StorageMemory}}
	store, err := newRecordStore(cfg, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &memory.RecordStore{}, store)

	cfg.Storage = config.StorageConfig{Backend: config.StorageFile, Path: filepath.Join(t.TempDir(), "data", "sons.json")}
	store, err = newRecordStore(cfg, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &local.RecordStore{}, store)

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)

	cfg.Storage.Backend = "s3"
	_, err = newRecordStore(cfg, zap.NewNop())
	require.Error(t, err)
}

func TestNewSessionOpener(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Crawler: config.CrawlerConfig{UserAgent: crawler.DefaultUserAgent, FetchTimeoutMs: 1000, SelectorWaitMs: 500},
		Fetcher: config.FetcherConfig{Mode: config.FetcherStatic},
	}
	opener, err := newSessionOpener(cfg, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &collyfetcher.Opener{}, opener)

	cfg.Fetcher.Mode = config.FetcherHeadless
	opener, err = newSessionOpener(cfg, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &headlessfetcher.Opener{}, opener)

	cfg.Fetcher.Mode = "curl"
	_, err = newSessionOpener(cfg, zap.NewNop())
	require.Error(t, err)
}
