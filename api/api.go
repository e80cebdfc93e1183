// Package api contains the code required to fetch subreddit listings and
// images from reddit's public JSON endpoints.
//
// It is heavily inspired by https://github.com/vartanbeno/go-reddit/, but is
// smaller and only implements what the downloader needs. Nothing in here is
// concurrency-aware: a Client is safe to share, every call is a single request.
package api

import (
	"strings"
)

// Listing is the response of the /r/{subreddit}/{sort}.json endpoint.
// Unknown fields are ignored.
type Listing struct {
	Data struct {
		After    string `json:"after"`
		Children []Post `json:"children"`
	} `json:"data"`
}

// Posts returns the posts of the listing in listing order.
func (l *Listing) Posts() []Post {
	if l == nil {
		return nil
	}
	return l.Data.Children
}

type Post struct {
	Data struct {
		Subreddit string   `json:"subreddit"`
		Title     string   `json:"title"`
		Author    string   `json:"author"`
		URL       string   `json:"url"`
		Permalink string   `json:"permalink"`
		PostHint  string   `json:"post_hint"`
		Preview   *Preview `json:"preview"`
		Over18    bool     `json:"over_18"`
		IsVideo   bool     `json:"is_video"`
	} `json:"data"`
}

type Preview struct {
	Images []Image `json:"images"`
}

type Image struct {
	Source *struct {
		URL    string `json:"url"`
		Height int    `json:"height"`
		Width  int    `json:"width"`
	} `json:"source"`
}

// Size returns the source dimensions of the first preview image.
// ok is false when the post has no preview image with a source.
func (p *Post) Size() (width, height int, ok bool) {
	if p.Data.Preview == nil || len(p.Data.Preview.Images) == 0 {
		return 0, 0, false
	}
	src := p.Data.Preview.Images[0].Source
	if src == nil {
		return 0, 0, false
	}
	return src.Width, src.Height, true
}

func (p *Post) IsVideo() bool { return p.Data.IsVideo }

func (p *Post) IsAdult() bool { return p.Data.Over18 }

// URL returns the post url with escaped ampersands restored.
func (p *Post) URL() string {
	return unescape(p.Data.URL)
}

// Permalink returns the absolute link to the post.
func (p *Post) Permalink() string {
	if p.Data.Permalink == "" || strings.HasPrefix(p.Data.Permalink, "http") {
		return p.Data.Permalink
	}
	return defaultBaseURL + p.Data.Permalink
}

func unescape(s string) string {
	return strings.ReplaceAll(s, "&amp;", "&")
}
