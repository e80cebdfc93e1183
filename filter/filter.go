// Package filter is a package that is used to implement functions
// that act upon reddit's posts and can filter out
// things that user does not need to download
// depending on content parameters (like resolution)
package filter

import (
	"math"

	"github.com/handsomefox/ridit/api"
	"github.com/handsomefox/ridit/config"
	"github.com/rs/zerolog/log"
)

// Default returns the filters in the order they are applied to every post.
func Default() []Filter {
	return []Filter{
		Video(),
		NSFW(),
		Preview(),
		AspectRatio(),
		MinimumSize(),
		Filename(),
	}
}

// Filter is an interface that filters the given post and returns the result of filtering (true/false).
type Filter interface {
	// Filters returns whether the post should be filtered out.
	Filters(*api.Post, *config.Config) bool
}

// DeciderFunc implements filter interface and expects the function to return a boolean.
type DeciderFunc func(*api.Post, *config.Config) bool

func (fn DeciderFunc) Filters(p *api.Post, cfg *config.Config) bool {
	return fn(p, cfg)
}

// IsFiltered returns a boolean that indicates whether applying filters to the given post
// indicate that the post is unwanted.
func IsFiltered(p *api.Post, cfg *config.Config, filters ...Filter) bool {
	for _, f := range filters {
		if f.Filters(p, cfg) {
			return true
		}
	}
	return false
}

// Candidates applies filters to every post of the listing, in listing order,
// and returns the ones that passed. Posts are never modified.
// Only the first post with a given filename is kept, so no two candidates
// share a destination path.
func Candidates(subreddit string, l *api.Listing, cfg *config.Config, filters ...Filter) []api.Candidate {
	posts := l.Posts()
	candidates := make([]api.Candidate, 0, len(posts))
	seen := make(map[string]struct{}, len(posts))
	for i := range posts {
		p := &posts[i]
		c, ok := Candidate(subreddit, p, cfg, filters...)
		if !ok {
			continue
		}
		if _, dup := seen[c.Filename]; dup {
			log.Debug().Str("subreddit", subreddit).Str("url", c.URL).Str("filename", c.Filename).Msg("duplicate filename")
			continue
		}
		seen[c.Filename] = struct{}{}
		candidates = append(candidates, c)
	}
	return candidates
}

// Candidate returns the candidate for p, or false if any filter rejects it.
func Candidate(subreddit string, p *api.Post, cfg *config.Config, filters ...Filter) (api.Candidate, bool) {
	if IsFiltered(p, cfg, filters...) {
		log.Debug().Str("subreddit", subreddit).Str("url", p.URL()).Msg("filtered out")
		return api.Candidate{}, false
	}
	// Preview normally guarantees a size, this covers custom filter sets.
	w, h, ok := p.Size()
	if !ok {
		return api.Candidate{}, false
	}
	return api.NewCandidate(subreddit, p, w, h), true
}

// Video filters out video posts.
func Video() DeciderFunc {
	return func(p *api.Post, _ *config.Config) bool {
		return p.IsVideo()
	}
}

// NSFW filters out adult posts unless they are allowed.
func NSFW() DeciderFunc {
	return func(p *api.Post, cfg *config.Config) bool {
		return p.IsAdult() && !cfg.Downloads.NSFW
	}
}

// Preview filters out posts without a resolvable preview image size.
func Preview() DeciderFunc {
	return func(p *api.Post, _ *config.Config) bool {
		_, _, ok := p.Size()
		return !ok
	}
}

// ratioEpsilon is the relative slack allowed when comparing against the
// aspect ratio bounds, so values like 0.2 that aren't exact in binary still
// include the boundary.
const ratioEpsilon = 1e-9

// AspectRatio filters out images whose width/height ratio is outside the
// configured range. The bounds are inclusive.
func AspectRatio() DeciderFunc {
	return func(p *api.Post, cfg *config.Config) bool {
		a := cfg.AspectRatio
		if !a.Enable {
			return false
		}
		w, h, ok := p.Size()
		if !ok || h <= 0 || a.HeightAspect <= 0 {
			return true
		}
		// |w/h - W/H| <= range, multiplied through by H*h.
		diff := math.Abs(float64(w)*float64(a.HeightAspect) - float64(a.WidthAspect)*float64(h))
		limit := a.RatioRange * float64(a.HeightAspect) * float64(h)
		return diff > limit+ratioEpsilon*math.Max(1, limit)
	}
}

// MinimumSize filters out images smaller than the configured size in either dimension.
func MinimumSize() DeciderFunc {
	return func(p *api.Post, cfg *config.Config) bool {
		if !cfg.MinimumSize.Enable {
			return false
		}
		w, h, ok := p.Size()
		if !ok {
			return true
		}
		return w < cfg.MinimumSize.MinimumWidth || h < cfg.MinimumSize.MinimumHeight
	}
}

// Filename filters out posts whose url doesn't end with a usable file name,
// which would otherwise resolve to a directory.
func Filename() DeciderFunc {
	return func(p *api.Post, _ *config.Config) bool {
		switch api.FilenameFromURL(p.URL()) {
		case "", ".", "..":
			return true
		}
		return false
	}
}
