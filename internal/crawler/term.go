package crawler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/sons-crawler/internal/metrics"
)

// TermCrawler drives pagination for a single search term.
type TermCrawler struct {
	cfg       Config
	store     RecordStore
	extractor Extractor
	pauser    pauseController
	logger    *zap.Logger
}

// NewTermCrawler wires a TermCrawler with its store and extractor.
func NewTermCrawler(cfg Config, store RecordStore, extractor Extractor, logger *zap.Logger) *TermCrawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermCrawler{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		pauser:    &timerPauseController{},
		logger:    logger,
	}
}

// Crawl walks the term's pages from 1 until a stop condition fires. Accepted
// records are added to index and persisted page by page. Failures end the
// term and are reported in the result, never returned.
func (c *TermCrawler) Crawl(ctx context.Context, session Session, term string, index *DedupIndex) TermResult {
	start := time.Now()
	result := TermResult{Term: term}
	log := c.logger.With(zap.String("term", term))

	for page := 1; ; page++ {
		reason, err := c.safeStep(ctx, session, term, page, index, &result, log)
		if reason != "" {
			result.Reason = reason
			result.Err = err
			break
		}
	}

	result.Added = len(result.Accepted)
	result.Duration = time.Since(start)
	metrics.ObserveTermStop(string(result.Reason))
	log.Info("term done",
		zap.Int("accepted", result.Added),
		zap.Int("pages", result.Pages),
		zap.String("stop_reason", string(result.Reason)),
		zap.Duration("elapsed", result.Duration),
	)
	return result
}

// safeStep turns a panic in one page iteration into StopPanicked, keeping
// whatever result the earlier pages already accumulated.
func (c *TermCrawler) safeStep(
	ctx context.Context,
	session Session,
	term string,
	page int,
	index *DedupIndex,
	result *TermResult,
	log *zap.Logger,
) (reason StopReason, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("term crawl panicked", zap.Int("page", page), zap.Any("panic", rec))
			reason = StopPanicked
			err = fmt.Errorf("term %q page %d panicked: %v", term, page, rec)
		}
	}()
	return c.step(ctx, session, term, page, index, result, log)
}

// step runs one page iteration and returns a non-empty StopReason when the loop must end.
func (c *TermCrawler) step(
	ctx context.Context,
	session Session,
	term string,
	page int,
	index *DedupIndex,
	result *TermResult,
	log *zap.Logger,
) (StopReason, error) {
	remaining := c.cfg.PerTermCap - len(result.Accepted)
	if remaining <= 0 {
		return StopCapReached, nil
	}
	if err := ctx.Err(); err != nil {
		return StopCanceled, fmt.Errorf("term %q canceled: %w", term, err)
	}

	target := SearchURL(c.cfg.BaseURL, term, page)
	fetched, err := session.Fetch(ctx, target)
	if err != nil {
		metrics.ObservePage(term, "fetch_error")
		log.Warn("page fetch failed", zap.Int("page", page), zap.String("url", target), zap.Error(err))
		return StopFetchFailed, fmt.Errorf("%w: term %q page %d: %w", ErrFetch, term, page, err)
	}
	result.Pages = page

	candidates, err := c.extractor.Extract(ctx, fetched)
	if err != nil {
		metrics.ObservePage(term, "extract_error")
		log.Warn("record extraction failed", zap.Int("page", page), zap.String("url", target), zap.Error(err))
		return StopExtractFailed, fmt.Errorf("%w: term %q page %d: %w", ErrExtract, term, page, err)
	}
	metrics.ObservePage(term, "ok")

	fresh := index.Filter(candidates)
	if len(fresh) == 0 {
		log.Debug("no new records on page", zap.Int("page", page), zap.Int("candidates", len(candidates)))
		return StopNoNewContent, nil
	}

	if len(fresh) > remaining {
		fresh = fresh[:remaining]
	}
	for _, r := range fresh {
		index.Add(r.Link)
	}
	result.Accepted = append(result.Accepted, fresh...)

	if err := c.store.Append(ctx, fresh); err != nil {
		log.Error("persist page records failed", zap.Int("page", page), zap.Error(err))
		return StopPersistFailed, fmt.Errorf("%w: term %q page %d: %w", ErrPersist, term, page, err)
	}
	metrics.ObserveRecordsAdded(term, len(fresh))
	log.Debug("page persisted",
		zap.Int("page", page),
		zap.Int("candidates", len(candidates)),
		zap.Int("added", len(fresh)),
	)

	c.pauser.Pause(ctx, c.cfg.PageDelay)
	return "", nil
}
