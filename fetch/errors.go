package fetch

import (
	"fmt"
)

var (
	_ error = &ListingFetchError{}
	_ error = &ImageFetchError{}
)

// ListingFetchError means a subreddit listing couldn't be requested or decoded.
// Use errors.Is(err, api.ErrDecode) to tell decoding failures apart.
type ListingFetchError struct {
	Err       error
	Subreddit string
	URL       string
}

func (e *ListingFetchError) Error() string {
	return fmt.Sprintf("[%s] failed to get listing from %s: %v", e.Subreddit, e.URL, e.Err)
}

func (e *ListingFetchError) Unwrap() error { return e.Err }

// ImageFetchError means an image couldn't be fetched after every retry.
type ImageFetchError struct {
	Err       error
	Subreddit string
	URL       string
}

func (e *ImageFetchError) Error() string {
	return fmt.Sprintf("[%s] failed to open connection to %s: %v", e.Subreddit, e.URL, e.Err)
}

func (e *ImageFetchError) Unwrap() error { return e.Err }
