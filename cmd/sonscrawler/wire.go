package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/sons-crawler/internal/config"
	"github.com/JakeFAU/sons-crawler/internal/crawler"
	collyfetcher "github.com/JakeFAU/sons-crawler/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/sons-crawler/internal/fetcher/headless"
	"github.com/JakeFAU/sons-crawler/internal/extract"
	"github.com/JakeFAU/sons-crawler/internal/storage/local"
	"github.com/JakeFAU/sons-crawler/internal/storage/memory"
)

func newRecordStore(cfg config.Config, logger *zap.Logger) (crawler.RecordStore, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		logger.Warn("using in-memory record store; records are lost on restart")
		return memory.NewRecordStore(), nil
	case config.StorageFile:
		store, err := local.New(local.Config{Path: cfg.Storage.Path}, logger)
		if err != nil {
			return nil, fmt.Errorf("open record store: %w", err)
		}
		logger.Info("record store ready", zap.String("path", store.Path()))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newSessionOpener(cfg config.Config, logger *zap.Logger) (crawler.SessionOpener, error) {
	switch cfg.Fetcher.Mode {
	case config.FetcherStatic:
		return collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.Crawler.UserAgent,
			Timeout:   cfg.FetchTimeout(),
		}), nil
	case config.FetcherHeadless:
		opener, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
			UserAgent:         cfg.Crawler.UserAgent,
			NavigationTimeout: cfg.FetchTimeout(),
			WaitSelector:      extract.ItemSelector,
			SelectorWait:      cfg.SelectorWait(),
			NoSandbox:         cfg.Fetcher.NoSandbox,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build headless fetcher: %w", err)
		}
		return opener, nil
	default:
		return nil, fmt.Errorf("unknown fetcher mode %q", cfg.Fetcher.Mode)
	}
}
