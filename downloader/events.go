package downloader

// EventKind is what happened to a subreddit or a candidate.
type EventKind uint8

const (
	_ EventKind = iota
	EventListed
	EventListingFailed
	EventStored
	EventSkipped
	EventFetchFailed
	EventStoreFailed
	EventLinked
	EventLinkFailed
)

func (k EventKind) String() string {
	switch k {
	case EventListed:
		return "listed"
	case EventListingFailed:
		return "listing_failed"
	case EventStored:
		return "stored"
	case EventSkipped:
		return "skipped"
	case EventFetchFailed:
		return "fetch_failed"
	case EventStoreFailed:
		return "store_failed"
	case EventLinked:
		return "linked"
	case EventLinkFailed:
		return "link_failed"
	default:
		return "unknown"
	}
}

// IsFailure returns whether the event carries an error.
func (k EventKind) IsFailure() bool {
	switch k {
	case EventListingFailed, EventFetchFailed, EventStoreFailed, EventLinkFailed:
		return true
	default:
		return false
	}
}

// Event is reported to the Handler for every state change worth knowing about.
// URL, Filename and Path are empty for subreddit-level events.
type Event struct {
	Err       error
	Kind      EventKind
	Subreddit string
	URL       string
	Filename  string
	// Path is the stored file for Stored and Skipped events, the link for Linked ones.
	Path string
	// Candidates is set for Listed events.
	Candidates int
	// Bytes is set for Stored events.
	Bytes int64
}

// Handler receives events. Calls are serialized, a Handler needs no locking.
type Handler func(Event)
