// Package downloader runs the batch: every configured subreddit is listed,
// and every candidate is fetched, stored and linked, with bounded concurrency
// on both levels. Failures are reported as events and never abort the batch.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/handsomefox/ridit/api"
	"github.com/handsomefox/ridit/config"
	"github.com/handsomefox/ridit/fetch"
	"github.com/handsomefox/ridit/files"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrCreateDirs is returned by Run when the download layout can't be created.
var ErrCreateDirs = errors.New("failed to create download directories")

// Fetcher is implemented by *fetch.Fetcher.
type Fetcher interface {
	FetchCandidates(ctx context.Context, subreddit string) ([]api.Candidate, error)
	FetchImage(ctx context.Context, c *api.Candidate) (io.ReadCloser, error)
}

type Downloader struct {
	progress progress
	cfg      *config.Config
	fetcher  Fetcher
	workers  int
}

// New returns a Downloader. cfg is shared read-only by every worker and must
// not be modified while Run is in progress.
func New(cfg *config.Config, fetcher Fetcher) *Downloader {
	return &Downloader{
		cfg:     cfg,
		fetcher: fetcher,
		workers: cfg.WorkerCount(),
	}
}

// Progress returns the live counters, safe to call while Run is in progress.
func (dl *Downloader) Progress() Progress {
	return dl.progress.snapshot()
}

// Run processes every configured subreddit and returns once all of them are done.
// The caller is expected to have created the download directories already,
// Run only re-checks them so a missing root fails the batch up front.
// The only error it returns is ErrCreateDirs, everything else ends up in
// the Report and is passed to handler, which may be nil.
func (dl *Downloader) Run(ctx context.Context, handler Handler) (*Report, error) {
	if err := config.CreateDirs(dl.cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateDirs, err)
	}

	var (
		report = newReport(dl.cfg.Downloads.Subreddits)
		emit   = serialize(handler)
		eg     = new(errgroup.Group)
	)
	eg.SetLimit(dl.workers)

	log.Debug().Int("workers", dl.workers).Int("subreddits", len(report.Subreddits)).Msg("starting batch")

	for _, stats := range report.Subreddits {
		stats := stats
		eg.Go(func() error {
			dl.subreddit(ctx, stats, emit)
			return nil
		})
	}
	_ = eg.Wait()

	return report, nil
}

// subreddit lists one subreddit and downloads its candidates.
func (dl *Downloader) subreddit(ctx context.Context, stats *Stats, emit Handler) {
	candidates, err := dl.fetcher.FetchCandidates(ctx, stats.Subreddit)
	if err != nil {
		stats.listingFailed.Store(true)
		stats.append(err)
		emit(Event{Kind: EventListingFailed, Subreddit: stats.Subreddit, Err: err})
		return
	}

	stats.candidates.Store(int64(len(candidates)))
	emit(Event{Kind: EventListed, Subreddit: stats.Subreddit, Candidates: len(candidates)})

	eg := new(errgroup.Group)
	eg.SetLimit(dl.workers)
	dl.progress.queued.Add(int64(len(candidates)))

	for i := range candidates {
		c := &candidates[i]
		eg.Go(func() error {
			defer dl.progress.queued.Add(-1)
			dl.candidate(ctx, c, stats, emit)
			return nil
		})
	}
	_ = eg.Wait()

	log.Debug().
		Str("subreddit", stats.Subreddit).
		Int64("succeeded", stats.Succeeded()).
		Int64("skipped", stats.Skipped()).
		Int64("failed", stats.Failed()).
		Msg("subreddit done")
}

// candidate fetches, stores and links a single candidate, in that order.
func (dl *Downloader) candidate(ctx context.Context, c *api.Candidate, stats *Stats, emit Handler) {
	path := c.Path(dl.cfg.Downloads.Path)
	event := Event{Subreddit: c.Subreddit, URL: c.URL, Filename: c.Filename, Path: path}

	body, err := dl.fetcher.FetchImage(ctx, c)
	if err != nil {
		if errors.Is(err, fetch.ErrFileExists) {
			stats.skipped.Add(1)
			dl.progress.skipped.Add(1)
			event.Kind = EventSkipped
		} else {
			stats.appendIncr(err)
			dl.progress.failed.Add(1)
			event.Kind, event.Err = EventFetchFailed, err
		}
		emit(event)
		return
	}

	n, err := files.Store(body, path)
	body.Close()
	if err != nil {
		stats.appendIncr(err)
		dl.progress.failed.Add(1)
		event.Kind, event.Err = EventStoreFailed, err
		emit(event)
		return
	}

	stats.succeeded.Add(1)
	dl.progress.saved.Add(1)
	event.Kind, event.Bytes = EventStored, n
	emit(event)

	link, err := files.CreateLink(path, c, dl.cfg)
	switch {
	case err != nil:
		stats.append(err)
		event.Kind, event.Err, event.Bytes = EventLinkFailed, err, 0
		emit(event)
	case link != "":
		event.Kind, event.Path, event.Bytes = EventLinked, link, 0
		emit(event)
	}
}

// serialize wraps h so it's never called concurrently.
func serialize(h Handler) Handler {
	if h == nil {
		return func(Event) {}
	}
	var mu sync.Mutex
	return func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		h(e)
	}
}
