package api

import (
	"path/filepath"
	"strings"
)

// Candidate is a post that passed every filter and can be downloaded.
// filter.Candidates keeps them unique per (Subreddit, Filename) within a listing.
type Candidate struct {
	Subreddit string
	URL       string
	Permalink string
	Filename  string
	Title     string
	Author    string
	Width     int
	Height    int
	IsAdult   bool
}

// NewCandidate builds a Candidate for subreddit from p and its resolved size.
func NewCandidate(subreddit string, p *Post, width, height int) Candidate {
	u := p.URL()
	return Candidate{
		Subreddit: subreddit,
		URL:       u,
		Permalink: p.Permalink(),
		Filename:  FilenameFromURL(u),
		Title:     p.Data.Title,
		Author:    p.Data.Author,
		Width:     width,
		Height:    height,
		IsAdult:   p.Data.Over18,
	}
}

// Path returns {root}/{subreddit}/{filename}.
func (c *Candidate) Path(root string) string {
	return filepath.Join(root, c.Subreddit, c.Filename)
}

// FilenameFromURL returns everything after the last slash of u.
// Query strings are kept as they are.
func FilenameFromURL(u string) string {
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}
