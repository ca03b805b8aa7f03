package crawler

import "errors"

// Sentinel errors used to classify term and run failures.
var (
	ErrSessionOpen = errors.New("open fetch session")
	ErrFetch       = errors.New("fetch page")
	ErrExtract     = errors.New("extract records")
	ErrPersist     = errors.New("persist records")
)
