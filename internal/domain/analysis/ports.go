package analysis

import (
	"context"
	"errors"
)

// ErrNoItems indicates acquisition found nothing for the query. It marks a
// distinct terminal outcome, not a pipeline fault.
var ErrNoItems = errors.New("no items found for query")

// ErrUserNotFound indicates no user record exists for the requested uid.
var ErrUserNotFound = errors.New("user not found")

// EventKind identifies the type of a progress notification.
type EventKind string

// Event kinds emitted over the progress sink.
const (
	EventStatusUpdate EventKind = "status_update"
	EventProgress     EventKind = "progress"
	EventComplete     EventKind = "complete"
	EventError        EventKind = "error"
	EventNoData       EventKind = "no_data"
)

// Fetcher acquires raw items for a query. An empty result is not an error;
// implementations may be backed by a live search API or a local generator,
// and the pipeline does not distinguish.
type Fetcher interface {
	Fetch(ctx context.Context, query string, maxItems int) ([]RawItem, error)
}

// SentimentClassifier labels a batch of texts. The returned slice has
// exactly the same length and order as the input, for any batch size
// including zero.
type SentimentClassifier interface {
	// Name identifies the classifier variant
	Name() string

	// Available reports whether the classifier can currently serve calls
	Available() bool

	// ClassifyBatch labels every text in order
	ClassifyBatch(ctx context.Context, texts []string) ([]SentimentResult, error)
}

// ToxicityClassifier scores a single text. The contract is single-text
// because the reference backing service is rate limited; batch behavior is
// layered on top by the runner.
type ToxicityClassifier interface {
	// Name identifies the classifier variant
	Name() string

	// Available reports whether the classifier can currently serve calls
	Available() bool

	// Classify scores one text
	Classify(ctx context.Context, text string) (ToxicityResult, error)
}

// TopicExtractor derives latent topics from the whole corpus. It returns
// numTopics or fewer topics; a corpus that yields insufficient vocabulary
// after preprocessing produces fewer (possibly zero) topics, not an error.
type TopicExtractor interface {
	ExtractTopics(ctx context.Context, texts []string, numTopics int) ([]Topic, error)
}

// ProgressSink receives status, progress, and terminal notifications for a
// session. Delivery is fire-and-forget: no acknowledgement, no backpressure,
// no redelivery on drop.
type ProgressSink interface {
	Notify(sessionID string, kind EventKind, payload map[string]interface{})
}

// ReportStore persists and retrieves analysis reports.
type ReportStore interface {
	// Save persists a report and returns its storage ID
	Save(ctx context.Context, report *Report) (string, error)

	// ListRecent returns the most recently created reports
	ListRecent(ctx context.Context, limit int) ([]Report, error)
}

// UserStore persists account records keyed by uid.
type UserStore interface {
	Upsert(ctx context.Context, user User) error
	Get(ctx context.Context, uid string) (*User, error)
}
