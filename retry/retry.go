// Package retry runs fallible operations a bounded amount of times with a
// fixed delay in between.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultDelay is the pause between attempts, enough to not get ratelimited.
const DefaultDelay = 200 * time.Millisecond

var ErrNoAttempts = errors.New("retry policy allows no attempts")

// Policy is a fixed-delay retry policy.
type Policy struct {
	// Attempts is the total amount of tries, including the first one.
	Attempts int
	Delay    time.Duration
}

var (
	// Listing is used for subreddit listing requests.
	Listing = Policy{Attempts: 2, Delay: DefaultDelay}
	// Image is used for image requests.
	Image = Policy{Attempts: 3, Delay: DefaultDelay}
)

// Do calls op until it succeeds or p.Attempts tries are used, sleeping p.Delay
// between tries. The error of the last attempt is returned.
// A cancelled ctx stops waiting and returns the last error seen.
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error = ErrNoAttempts
	)
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		res, err := op()
		if err == nil {
			return res, nil
		}
		lastErr = err

		if attempt == p.Attempts {
			break
		}
		log.Debug().Err(err).Int("attempt", attempt).Int("attempts", p.Attempts).Msg("retrying")

		timer := time.NewTimer(p.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}
