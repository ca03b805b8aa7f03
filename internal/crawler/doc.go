// Package crawler implements the search-term crawl: paginating each term
// through a fetch session, extracting records, deduplicating them against
// everything already persisted and appending new ones to the record store.
//
// A run opens one Session and builds one DedupIndex from the store, then
// visits terms sequentially. A term ends when its cap is reached, when a page
// yields nothing new, or on the first fetch, extract or persist failure.
// Failures and panics are contained to the term; the run continues.
package crawler
