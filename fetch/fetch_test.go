package fetch_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handsomefox/ridit/api"
	"github.com/handsomefox/ridit/config"
	"github.com/handsomefox/ridit/fetch"
	"github.com/handsomefox/ridit/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPolicy = retry.Policy{Attempts: 2, Delay: time.Millisecond}

type server struct {
	*httptest.Server
	listingCalls atomic.Int64
	imageCalls   atomic.Int64
	listing      func(w http.ResponseWriter, base string)
	image        func(w http.ResponseWriter)
}

func newServer(t *testing.T) *server {
	t.Helper()
	s := &server{}
	s.listing = func(w http.ResponseWriter, base string) {
		writeListing(t, w, base, [][3]any{{"/img/wall.jpg", 3840, 2160}})
	}
	s.image = func(w http.ResponseWriter) {
		_, _ = io.WriteString(w, "image-bytes")
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/r/", func(w http.ResponseWriter, r *http.Request) {
		s.listingCalls.Add(1)
		s.listing(w, s.URL)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		s.imageCalls.Add(1)
		s.image(w)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// writeListing writes a listing with an image post per entry of (path, width, height).
func writeListing(t *testing.T, w http.ResponseWriter, base string, posts [][3]any) {
	t.Helper()
	children := make([]any, 0, len(posts))
	for _, p := range posts {
		u := base + p[0].(string)
		children = append(children, map[string]any{"data": map[string]any{
			"url":       u,
			"permalink": "/r/wallpapers/comments/x/post/",
			"preview": map[string]any{"images": []any{map[string]any{
				"source": map[string]any{"url": u, "width": p[1], "height": p[2]},
			}}},
		}})
	}
	assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"children": children}}))
}

func newFetcher(t *testing.T, s *server) (*fetch.Fetcher, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Downloads.Subreddits = []string{"wallpapers"}
	cfg.Downloads.Path = t.TempDir()
	require.NoError(t, config.CreateDirs(cfg))

	u, err := url.Parse(s.URL)
	require.NoError(t, err)
	client := fetch.NewClient(cfg).WithBaseURL(u)
	return fetch.New(client, cfg).WithPolicies(fastPolicy, fastPolicy), cfg
}

func TestFetchCandidates(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	f, _ := newFetcher(t, s)

	candidates, err := f.FetchCandidates(context.TODO(), "wallpapers")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "wall.jpg", candidates[0].Filename)
	assert.Equal(t, 3840, candidates[0].Width)
	assert.Equal(t, 2160, candidates[0].Height)
	assert.Equal(t, int64(1), s.listingCalls.Load())
	assert.Zero(t, s.imageCalls.Load())
}

func TestFetchCandidatesFiltered(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	s.listing = func(w http.ResponseWriter, base string) {
		writeListing(t, w, base, [][3]any{{"/img/small.jpg", 800, 600}})
	}
	f, _ := newFetcher(t, s)

	candidates, err := f.FetchCandidates(context.TODO(), "wallpapers")
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Zero(t, s.imageCalls.Load(), "no network calls beyond the listing")
}

func TestFetchCandidatesRetries(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	s.listing = func(w http.ResponseWriter, _ string) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	f, _ := newFetcher(t, s)

	_, err := f.FetchCandidates(context.TODO(), "wallpapers")
	var lfe *fetch.ListingFetchError
	require.ErrorAs(t, err, &lfe)
	assert.Equal(t, "wallpapers", lfe.Subreddit)
	assert.ErrorIs(t, err, api.ErrInvalidStatusCode)
	assert.Equal(t, int64(fastPolicy.Attempts), s.listingCalls.Load())
}

func TestFetchCandidatesDecodeError(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	s.listing = func(w http.ResponseWriter, _ string) {
		_, _ = io.WriteString(w, "{not json")
	}
	f, _ := newFetcher(t, s)

	_, err := f.FetchCandidates(context.TODO(), "wallpapers")
	var lfe *fetch.ListingFetchError
	require.ErrorAs(t, err, &lfe)
	assert.ErrorIs(t, err, api.ErrDecode)
	assert.Equal(t, int64(1), s.listingCalls.Load(), "decoding is not retried")
}

func TestFetchImage(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	f, _ := newFetcher(t, s)

	c := api.Candidate{Subreddit: "wallpapers", URL: s.URL + "/img/wall.jpg", Filename: "wall.jpg"}
	body, err := f.FetchImage(context.TODO(), &c)
	require.NoError(t, err)
	defer body.Close()

	b, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(b))
}

func TestFetchImageSkipsExisting(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	f, cfg := newFetcher(t, s)

	c := api.Candidate{Subreddit: "wallpapers", URL: s.URL + "/img/wall.jpg", Filename: "wall.jpg"}
	require.NoError(t, os.WriteFile(c.Path(cfg.Downloads.Path), []byte("old"), 0o600))

	body, err := f.FetchImage(context.TODO(), &c)
	assert.Nil(t, body)
	assert.ErrorIs(t, err, fetch.ErrFileExists)
	assert.Zero(t, s.imageCalls.Load(), "skip must not issue a request")
}

func TestFetchImageOverwrite(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	f, cfg := newFetcher(t, s)
	cfg.Downloads.ProceedDownloadOnFileExist = true

	c := api.Candidate{Subreddit: "wallpapers", URL: s.URL + "/img/wall.jpg", Filename: "wall.jpg"}
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Downloads.Path, "wallpapers", "wall.jpg"), []byte("old"), 0o600))

	body, err := f.FetchImage(context.TODO(), &c)
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, int64(1), s.imageCalls.Load())
}

func TestFetchImageRetries(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	s.image = func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadGateway)
	}
	f, _ := newFetcher(t, s)
	f.WithPolicies(fastPolicy, retry.Policy{Attempts: 3, Delay: time.Millisecond})

	c := api.Candidate{Subreddit: "wallpapers", URL: s.URL + "/img/wall.jpg", Filename: "wall.jpg"}
	_, err := f.FetchImage(context.TODO(), &c)

	var ife *fetch.ImageFetchError
	require.ErrorAs(t, err, &ife)
	assert.Equal(t, c.URL, ife.URL)
	assert.False(t, errors.Is(err, fetch.ErrFileExists))
	assert.Equal(t, int64(3), s.imageCalls.Load())
}
