package crawler

import (
	"context"
	"time"
)

// RecordStore persists the accumulated record collection.
type RecordStore interface {
	Load(ctx context.Context) ([]Record, error)
	Append(ctx context.Context, records []Record) error
}

// Session fetches pages through one long-lived browser (or HTTP client) for a run.
type Session interface {
	Fetch(ctx context.Context, url string) (Page, error)
	Close() error
}

// SessionOpener starts a fetch Session at the beginning of a run.
type SessionOpener interface {
	Open(ctx context.Context) (Session, error)
}

// Extractor turns a fetched page into candidate records.
type Extractor interface {
	Extract(ctx context.Context, page Page) ([]Record, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}
