package crawler

import (
	"strings"
	"time"
)

// Record is one extracted media item. Link is its identity; Name is display text only.
type Record struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Valid reports whether the record carries an identity usable for dedup.
func (r Record) Valid() bool {
	return strings.TrimSpace(r.Link) != ""
}

// Page is the rendered result of fetching a search page.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// StopReason explains why a term's pagination loop ended.
type StopReason string

// Stop reasons in the order they are evaluated on each iteration.
const (
	StopCapReached    StopReason = "cap_reached"
	StopFetchFailed   StopReason = "fetch_failed"
	StopExtractFailed StopReason = "extract_failed"
	StopNoNewContent  StopReason = "no_new_content"
	StopPersistFailed StopReason = "persist_failed"
	StopCanceled      StopReason = "canceled"
	StopPanicked      StopReason = "panicked"
)

// TermResult summarizes one term's pass within a run.
type TermResult struct {
	Term     string        `json:"term"`
	Pages    int           `json:"pages"`
	Accepted []Record      `json:"-"`
	Added    int           `json:"added"`
	Reason   StopReason    `json:"stop_reason"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"-"`
}

// RunSummary is returned by Job.Run for every completed run.
type RunSummary struct {
	Terms    []TermResult `json:"terms"`
	Added    int          `json:"added"`
	Started  time.Time    `json:"started_at"`
	Finished time.Time    `json:"finished_at"`
}
