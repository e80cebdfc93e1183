package downloader

import (
	"sync"
	"sync/atomic"
)

// Stats is the outcome of one subreddit.
type Stats struct {
	Subreddit string

	errors []error
	mu     sync.Mutex

	listingFailed atomic.Bool
	candidates    atomic.Int64
	succeeded     atomic.Int64
	skipped       atomic.Int64
	failed        atomic.Int64
}

func newStats(subreddit string) *Stats {
	return &Stats{Subreddit: subreddit}
}

// Errors returns a copy of every error recorded for the subreddit, link failures included.
func (s *Stats) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errors...)
}

func (s *Stats) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors) != 0
}

func (s *Stats) ListingFailed() bool { return s.listingFailed.Load() }
func (s *Stats) Candidates() int64   { return s.candidates.Load() }
func (s *Stats) Succeeded() int64    { return s.succeeded.Load() }
func (s *Stats) Skipped() int64      { return s.skipped.Load() }
func (s *Stats) Failed() int64       { return s.failed.Load() }

// append is used to append errors to Stats.
func (s *Stats) append(err error) {
	s.mu.Lock()
	s.errors = append(s.errors, err)
	s.mu.Unlock()
}

// appendIncr appends the error and increments Failed count.
func (s *Stats) appendIncr(err error) {
	s.append(err)
	s.failed.Add(1)
}

// Report is the result of a batch, one Stats per configured subreddit in
// configuration order.
type Report struct {
	Subreddits []*Stats
}

func newReport(subreddits []string) *Report {
	r := &Report{Subreddits: make([]*Stats, 0, len(subreddits))}
	for _, name := range subreddits {
		r.Subreddits = append(r.Subreddits, newStats(name))
	}
	return r
}

// Get returns the stats of the subreddit, or nil if it wasn't part of the batch.
func (r *Report) Get(subreddit string) *Stats {
	for _, s := range r.Subreddits {
		if s.Subreddit == subreddit {
			return s
		}
	}
	return nil
}

// Totals sums the counts of every subreddit.
func (r *Report) Totals() (succeeded, skipped, failed int64) {
	for _, s := range r.Subreddits {
		succeeded += s.Succeeded()
		skipped += s.Skipped()
		failed += s.Failed()
	}
	return succeeded, skipped, failed
}

// ListingFailures returns how many subreddits couldn't be listed.
func (r *Report) ListingFailures() int {
	n := 0
	for _, s := range r.Subreddits {
		if s.ListingFailed() {
			n++
		}
	}
	return n
}

// Progress is a snapshot of the live counters of a running batch.
type Progress struct {
	Queued, Saved, Skipped, Failed int64
}

type progress struct {
	queued  atomic.Int64
	saved   atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

func (p *progress) snapshot() Progress {
	return Progress{
		Queued:  p.queued.Load(),
		Saved:   p.saved.Load(),
		Skipped: p.skipped.Load(),
		Failed:  p.failed.Load(),
	}
}
