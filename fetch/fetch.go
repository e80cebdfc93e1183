// Package fetch turns subreddit names into download candidates and
// candidates into image streams. Every call is a sequential, single
// operation; concurrency is up to the caller.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/handsomefox/ridit/api"
	"github.com/handsomefox/ridit/config"
	"github.com/handsomefox/ridit/files"
	"github.com/handsomefox/ridit/filter"
	"github.com/handsomefox/ridit/retry"
	"github.com/rs/zerolog/log"
)

// ErrFileExists is returned by FetchImage when the destination already exists
// and overwriting is disabled. It means "skip", not failure.
var ErrFileExists = errors.New("file already exists")

// Fetcher fetches listings and images using a shared read-only configuration.
type Fetcher struct {
	client  *api.Client
	cfg     *config.Config
	filters []filter.Filter

	listingPolicy retry.Policy
	imagePolicy   retry.Policy
}

// New returns a Fetcher using the default filters and retry policies.
func New(client *api.Client, cfg *config.Config) *Fetcher {
	return &Fetcher{
		client:        client,
		cfg:           cfg,
		filters:       filter.Default(),
		listingPolicy: retry.Listing,
		imagePolicy:   retry.Image,
	}
}

// NewClient returns an api.Client configured from cfg.
func NewClient(cfg *config.Config) *api.Client {
	return api.NewClient(api.Options{
		UserAgent:      cfg.UserAgent(),
		ConnectTimeout: cfg.ConnectTimeout(),
		Timeout:        cfg.TransferTimeout(),
	})
}

// WithFilters replaces the filters applied to listings.
func (f *Fetcher) WithFilters(filters ...filter.Filter) *Fetcher {
	f.filters = filters
	return f
}

// WithPolicies replaces the retry policies for listing and image requests.
func (f *Fetcher) WithPolicies(listing, image retry.Policy) *Fetcher {
	f.listingPolicy = listing
	f.imagePolicy = image
	return f
}

func (f *Fetcher) Config() *config.Config { return f.cfg }

// FetchCandidates fetches the first page of the subreddit listing and returns
// the posts that pass every filter, in listing order.
// Failures are returned as *ListingFetchError.
func (f *Fetcher) FetchCandidates(ctx context.Context, subreddit string) ([]api.Candidate, error) {
	sort := f.cfg.Downloads.Sort.String()

	res, err := retry.Do(ctx, f.listingPolicy, func() (*http.Response, error) {
		return f.client.RequestListing(ctx, subreddit, sort)
	})
	if err != nil {
		return nil, &ListingFetchError{Subreddit: subreddit, URL: f.client.ListingURL(subreddit, sort), Err: err}
	}
	defer res.Body.Close()

	listing, err := api.DecodeListing(res.Body)
	if err != nil {
		return nil, &ListingFetchError{Subreddit: subreddit, URL: f.client.ListingURL(subreddit, sort), Err: err}
	}

	candidates := filter.Candidates(subreddit, listing, f.cfg, f.filters...)
	log.Debug().
		Str("subreddit", subreddit).
		Int("posts", len(listing.Posts())).
		Int("candidates", len(candidates)).
		Msg("filtered listing")

	return candidates, nil
}

// FetchImage returns the image body for c, the caller must close it.
// If the destination file exists and overwriting is disabled, it returns
// ErrFileExists without making a request. Other failures are *ImageFetchError.
func (f *Fetcher) FetchImage(ctx context.Context, c *api.Candidate) (io.ReadCloser, error) {
	path := c.Path(f.cfg.Downloads.Path)
	if !f.cfg.Overwrite() && files.Exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrFileExists, path)
	}

	body, err := retry.Do(ctx, f.imagePolicy, func() (io.ReadCloser, error) {
		return f.client.GetImage(ctx, c.URL)
	})
	if err != nil {
		return nil, &ImageFetchError{Subreddit: c.Subreddit, URL: c.URL, Err: err}
	}

	return body, nil
}
