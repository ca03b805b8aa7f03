// Package api hosts the HTTP server that publishes the crawled dataset.
// Routes:
//   - GET /sons returns every persisted record as a JSON array.
//   - GET /v1/crawl/status reports the scheduler's last run.
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
package api
