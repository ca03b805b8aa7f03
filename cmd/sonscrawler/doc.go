// Package main hosts the sound-catalog crawler service.
//
// Architecture overview:
//   - Crawl job: internal/crawler.Job walks each configured search term page by page through one fetch
//     session, filters results against a run-wide DedupIndex seeded from the store, and persists every
//     page's new records before requesting the next one. A term stops at its cap, on the first page with
//     nothing new, or on the first fetch/extract/persist failure; other terms still run.
//   - Fetch sessions: headless Chrome via chromedp (default, renders client-side results) or a static
//     Colly GET (fetcher.mode=static) for servers that render markup up front.
//   - Store: a pretty-printed JSON array on disk (storage.backend=file), written atomically; a missing or
//     corrupt file is reset to []. storage.backend=memory keeps records in process for local runs.
//   - Scheduler: internal/schedule.Runner fires the job on a cron expression (weekly by default) plus once
//     at startup. Overlapping triggers are skipped and failures are logged, never fatal.
//   - HTTP API: GET /sons serves the store contents with CORS *, alongside /healthz, /readyz, /metrics and
//     /v1/crawl/status.
//
// Quick checklist:
//   - Configure env vars: PORT or SONS_SERVER_PORT, SONS_STORAGE_PATH, SONS_FETCHER_MODE,
//     SONS_SCHEDULE_CRON, SONS_LOGGING_DEVELOPMENT. A .env file in the working directory is read first.
//   - Chrome launches with --no-sandbox by default; set SONS_FETCHER_NO_SANDBOX=false to keep the sandbox.
//   - Run locally: go run ./cmd/sonscrawler -config config.yaml (or rely solely on env overrides).
package main
