package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockSession is a mock implementation of the Session interface.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Fetch(ctx context.Context, url string) (Page, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(Page), args.Error(1)
}

func (m *MockSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockOpener is a mock implementation of the SessionOpener interface.
type MockOpener struct {
	mock.Mock
}

func (m *MockOpener) Open(ctx context.Context) (Session, error) {
	args := m.Called(ctx)
	session, _ := args.Get(0).(Session)
	return session, args.Error(1)
}

// fakeSite serves canned results per search URL. It implements Session and Extractor.
type fakeSite struct {
	mu        sync.Mutex
	pages     map[string][]Record
	fetchErr  map[string]error
	extractEr map[string]error
	fetched   []string
	closed    bool
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:     map[string][]Record{},
		fetchErr:  map[string]error{},
		extractEr: map[string]error{},
	}
}

func (s *fakeSite) set(term string, page int, records ...Record) {
	s.pages[SearchURL(testBaseURL, term, page)] = records
}

func (s *fakeSite) failFetch(term string, page int, err error) {
	s.fetchErr[SearchURL(testBaseURL, term, page)] = err
}

func (s *fakeSite) failExtract(term string, page int, err error) {
	s.extractEr[SearchURL(testBaseURL, term, page)] = err
}

func (s *fakeSite) Fetch(_ context.Context, url string) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, url)
	if err := s.fetchErr[url]; err != nil {
		return Page{}, err
	}
	return Page{URL: url, StatusCode: 200, Body: []byte("<html></html>")}, nil
}

func (s *fakeSite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSite) Extract(_ context.Context, page Page) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.extractEr[page.URL]; err != nil {
		return nil, err
	}
	// Pages past the configured ones behave like the real site: no items.
	return append([]Record(nil), s.pages[page.URL]...), nil
}

func (s *fakeSite) Open(context.Context) (Session, error) {
	return s, nil
}

func (s *fakeSite) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fetched)
}

// fakeStore is an in-memory RecordStore that records each Append batch.
type fakeStore struct {
	mu        sync.Mutex
	records   []Record
	batches   [][]Record
	appendErr error
	loadErr   error
}

func (s *fakeStore) Load(context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]Record(nil), s.records...), nil
}

func (s *fakeStore) Append(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(records) == 0 {
		return nil
	}
	if s.appendErr != nil {
		return s.appendErr
	}
	s.batches = append(s.batches, append([]Record(nil), records...))
	s.records = append(s.records, records...)
	return nil
}

func (s *fakeStore) snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

type recordingPauser struct {
	calls []time.Duration
}

func (p *recordingPauser) Pause(_ context.Context, delay time.Duration) {
	p.calls = append(p.calls, delay)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

const testBaseURL = "https://sounds.example/pt"

var errBoom = errors.New("boom")

func rec(i int) Record {
	return Record{
		Name: fmt.Sprintf("sound %d", i),
		Link: fmt.Sprintf("https://sounds.example/media/sounds/s%d.mp3", i),
	}
}

func recs(from, to int) []Record {
	out := make([]Record, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, rec(i))
	}
	return out
}

func testConfig(limit int, terms ...string) Config {
	return Config{
		BaseURL:    testBaseURL,
		Terms:      terms,
		PerTermCap: limit,
		PageDelay:  500 * time.Millisecond,
	}
}

func newTestTermCrawler(cfg Config, store RecordStore, ex Extractor) (*TermCrawler, *recordingPauser) {
	tc := NewTermCrawler(cfg, store, ex, nil)
	pauser := &recordingPauser{}
	tc.pauser = pauser
	return tc, pauser
}
