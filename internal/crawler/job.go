package crawler

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/JakeFAU/sons-crawler/internal/crawler"

// Job runs every configured term through a TermCrawler, sequentially, with
// one shared fetch session and one shared DedupIndex.
type Job struct {
	cfg    Config
	opener SessionOpener
	store  RecordStore
	terms  *TermCrawler
	clock  Clock
	tracer trace.Tracer
	logger *zap.Logger
}

// NewJob constructs a Job.
func NewJob(
	cfg Config,
	opener SessionOpener,
	store RecordStore,
	extractor Extractor,
	clock Clock,
	logger *zap.Logger,
) (*Job, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate crawl config: %w", err)
	}
	if opener == nil || store == nil || extractor == nil || clock == nil {
		return nil, fmt.Errorf("crawl job requires an opener, store, extractor and clock")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		cfg:    cfg,
		opener: opener,
		store:  store,
		terms:  NewTermCrawler(cfg, store, extractor, logger.Named("term")),
		clock:  clock,
		tracer: otel.Tracer(tracerName),
		logger: logger,
	}, nil
}

// Run executes one full crawl. It returns an error only when the run as a
// whole could not proceed; per-term failures are recorded in the summary.
func (j *Job) Run(ctx context.Context) (summary RunSummary, err error) {
	ctx, span := j.tracer.Start(ctx, "crawl.run")
	defer func() {
		span.SetAttributes(attribute.Int("crawl.added", summary.Added))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "crawl run failed")
		}
		span.End()
	}()
	summary.Started = j.clock.Now()

	session, err := j.opener.Open(ctx)
	if err != nil {
		return summary, fmt.Errorf("%w: %w", ErrSessionOpen, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			j.logger.Warn("fetch session close failed", zap.Error(cerr))
		}
	}()

	existing, err := j.store.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("load records: %w", err)
	}
	index := NewDedupIndex(existing)
	j.logger.Info("crawl started",
		zap.Int("known_records", index.Len()),
		zap.Int("terms", len(j.cfg.Terms)),
	)

	for _, term := range j.cfg.Terms {
		res := j.crawlTerm(ctx, session, term, index)
		summary.Terms = append(summary.Terms, res)
		summary.Added += res.Added
	}

	summary.Finished = j.clock.Now()
	j.logger.Info("crawl completed",
		zap.Int("added", summary.Added),
		zap.Int("known_records", index.Len()),
		zap.Duration("elapsed", summary.Finished.Sub(summary.Started)),
	)
	return summary, nil
}

// crawlTerm wraps one term in a span. TermCrawler contains panics, so sibling terms still run.
func (j *Job) crawlTerm(ctx context.Context, session Session, term string, index *DedupIndex) (res TermResult) {
	ctx, span := j.tracer.Start(ctx, "crawl.term", trace.WithAttributes(attribute.String("crawl.term", term)))
	defer func() {
		span.SetAttributes(
			attribute.String("crawl.stop_reason", string(res.Reason)),
			attribute.Int("crawl.added", res.Added),
			attribute.Int("crawl.pages", res.Pages),
		)
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, string(res.Reason))
		}
		span.End()
	}()
	return j.terms.Crawl(ctx, session, term, index)
}
