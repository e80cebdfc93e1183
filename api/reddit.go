package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://reddit.com"
	// ListingLimit is the page size requested from reddit, only the first page is read.
	ListingLimit = 100
)

var (
	ErrCreateRequest     = errors.New("error creating a request")
	ErrInvalidStatusCode = errors.New("invalid status code")
	ErrDecode            = errors.New("couldn't decode listing")
)

// Options configure a Client.
type Options struct {
	UserAgent string
	// ConnectTimeout limits establishing a connection, zero means no limit.
	ConnectTimeout time.Duration
	// Timeout limits a whole request including reading the body, zero means no limit.
	Timeout time.Duration
}

// Client is used to make every request to reddit and image hosts.
type Client struct {
	client    *http.Client
	base      *url.URL
	userAgent string
}

func NewClient(opts Options) *Client {
	dialer := &net.Dialer{Timeout: opts.ConnectTimeout, KeepAlive: 30 * time.Second}
	base, _ := url.Parse(defaultBaseURL)
	// HTTP/2 is disabled, reddit tends to reset h2 streams of plain clients.
	return &Client{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: opts.ConnectTimeout,
				TLSNextProto:        map[string]func(authority string, c *tls.Conn) http.RoundTripper{},
				MaxIdleConnsPerHost: 16,
			},
			Timeout: opts.Timeout,
		},
		base:      base,
		userAgent: opts.UserAgent,
	}
}

// WithBaseURL replaces the listing host, used by tests.
func (c *Client) WithBaseURL(u *url.URL) *Client {
	c.base = u
	return c
}

func (c *Client) BaseURL() *url.URL {
	return c.base
}

// ListingURL returns {base}/r/{subreddit}/{sort}.json?limit=100.
func (c *Client) ListingURL(subreddit, sort string) string {
	u := c.base.
		JoinPath("r").
		JoinPath(subreddit).
		JoinPath(sort + ".json")

	values := u.Query()
	values.Set("limit", fmt.Sprint(ListingLimit))
	u.RawQuery = values.Encode()

	return u.String()
}

// Do sets the required headers and performs the request.
// Responses with a status other than 200 are closed and returned as ErrInvalidStatusCode.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("%w: %s (url=%s)", ErrInvalidStatusCode, res.Status, req.URL)
	}
	return res, nil
}

// GetURL performs a GET request for u.
func (c *Client) GetURL(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateRequest, err)
	}
	return c.Do(req)
}

// RequestListing performs the listing request. The caller owns the response body.
func (c *Client) RequestListing(ctx context.Context, subreddit, sort string) (*http.Response, error) {
	u := c.ListingURL(subreddit, sort)
	log.Debug().Str("subreddit", subreddit).Str("url", u).Msg("fetching listing")
	return c.GetURL(ctx, u)
}

// DecodeListing reads a listing from r. Failures wrap ErrDecode.
func DecodeListing(r io.Reader) (*Listing, error) {
	var l Listing
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &l, nil
}

// GetListing requests and decodes the first page of a subreddit listing.
func (c *Client) GetListing(ctx context.Context, subreddit, sort string) (*Listing, error) {
	res, err := c.RequestListing(ctx, subreddit, sort)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	return DecodeListing(res.Body)
}

// GetImage returns the body of the image at u. The caller must close it.
func (c *Client) GetImage(ctx context.Context, u string) (io.ReadCloser, error) {
	res, err := c.GetURL(ctx, u)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}
