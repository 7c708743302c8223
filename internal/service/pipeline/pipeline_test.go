package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convosense/internal/domain/analysis"
	"convosense/internal/service/classify"
)

// Stubs

type stubFetcher struct {
	items []analysis.RawItem
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, _ string, _ int) ([]analysis.RawItem, error) {
	return f.items, f.err
}

type recordedEvent struct {
	kind    analysis.EventKind
	payload map[string]interface{}
}

type recordingSink struct {
	mu     sync.Mutex
	events map[string][]recordedEvent
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(map[string][]recordedEvent)}
}

func (s *recordingSink) Notify(sessionID string, kind analysis.EventKind, payload map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[sessionID] = append(s.events[sessionID], recordedEvent{kind: kind, payload: payload})
}

func (s *recordingSink) kinds(sessionID string) []analysis.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()

	kinds := make([]analysis.EventKind, len(s.events[sessionID]))
	for i, e := range s.events[sessionID] {
		kinds[i] = e.kind
	}
	return kinds
}

type stubStore struct {
	mu    sync.Mutex
	saved []*analysis.Report
	err   error
}

func (s *stubStore) Save(_ context.Context, report *analysis.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, report)
	return report.ID, nil
}

func (s *stubStore) ListRecent(_ context.Context, _ int) ([]analysis.Report, error) {
	return nil, nil
}

func (s *stubStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

type stubSentiment struct {
	label string
	conf  float64
	up    bool
}

func (s *stubSentiment) Name() string    { return "stub-sentiment" }
func (s *stubSentiment) Available() bool { return s.up }

func (s *stubSentiment) ClassifyBatch(_ context.Context, texts []string) ([]analysis.SentimentResult, error) {
	results := make([]analysis.SentimentResult, len(texts))
	for i := range results {
		results[i] = analysis.SentimentResult{Label: s.label, Confidence: s.conf}
	}
	return results, nil
}

type stubToxicity struct {
	score float64
	toxic bool
	up    bool
}

func (s *stubToxicity) Name() string    { return "stub-toxicity" }
func (s *stubToxicity) Available() bool { return s.up }

func (s *stubToxicity) Classify(_ context.Context, _ string) (analysis.ToxicityResult, error) {
	return analysis.ToxicityResult{Toxicity: s.score, IsToxic: s.toxic}, nil
}

type stubExtractor struct {
	topics []analysis.Topic
	err    error
}

func (e *stubExtractor) ExtractTopics(_ context.Context, _ []string, _ int) ([]analysis.Topic, error) {
	return e.topics, e.err
}

// Helpers

func rawItems(n int) []analysis.RawItem {
	items := make([]analysis.RawItem, n)
	for i := range items {
		items[i] = analysis.RawItem{ID: fmt.Sprintf("item-%d", i), Text: fmt.Sprintf("post number %d", i)}
	}
	return items
}

type pipelineDeps struct {
	fetcher   analysis.Fetcher
	sentiment analysis.SentimentClassifier
	toxicity  analysis.ToxicityClassifier
	extractor analysis.TopicExtractor
	sink      *recordingSink
	store     *stubStore
}

func newTestPipeline(deps pipelineDeps) *Pipeline {
	if deps.sentiment == nil {
		deps.sentiment = &stubSentiment{label: analysis.LabelPositive, conf: 0.9, up: true}
	}
	if deps.toxicity == nil {
		deps.toxicity = &stubToxicity{score: 0.1, up: true}
	}
	if deps.extractor == nil {
		deps.extractor = &stubExtractor{topics: []analysis.Topic{{ID: 0, Terms: []string{"post", "number"}}}}
	}

	return New(
		deps.fetcher,
		deps.sentiment,
		classify.NewLexiconSentimentClassifier(),
		deps.toxicity,
		classify.NewKeywordToxicityClassifier(),
		deps.extractor,
		classify.NewRunner(classify.Options{}),
		deps.sink,
		deps.store,
		Config{MaxItems: 20, NumTopics: 3},
	)
}

// successKinds is the notification sequence of a run that reaches COMPLETE.
var successKinds = []analysis.EventKind{
	analysis.EventStatusUpdate, analysis.EventProgress, // fetching
	analysis.EventProgress,                             // fetched
	analysis.EventStatusUpdate, analysis.EventProgress, // sentiment start
	analysis.EventProgress,                             // sentiment done
	analysis.EventStatusUpdate, analysis.EventProgress, // toxicity start
	analysis.EventProgress,                             // toxicity done
	analysis.EventStatusUpdate, analysis.EventProgress, // topics
	analysis.EventProgress, // complete checkpoint
	analysis.EventComplete, // terminal event
}

// Tests

func TestRunSuccess(t *testing.T) {
	sink := newRecordingSink()
	store := &stubStore{}
	p := newTestPipeline(pipelineDeps{
		fetcher: &stubFetcher{items: rawItems(10)},
		sink:    sink,
		store:   store,
	})

	report, err := p.Run(context.Background(), "golang", "session-1", Options{})

	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, "golang", report.Query)
	assert.Equal(t, 10, report.ItemsAnalyzed)
	assert.Len(t, report.Items, 10)
	assert.NotEmpty(t, report.ID)

	s := report.SentimentSummary
	assert.Equal(t, report.ItemsAnalyzed, s.Positive+s.Negative+s.Neutral)
	assert.Equal(t, 10, s.Positive)

	x := report.ToxicitySummary
	assert.Equal(t, report.ItemsAnalyzed, x.ToxicCount+x.CleanCount)

	assert.Equal(t, 1, store.savedCount())
	assert.Equal(t, successKinds, sink.kinds("session-1"))
}

func TestRunToxicityStageUnavailable(t *testing.T) {
	sink := newRecordingSink()
	p := newTestPipeline(pipelineDeps{
		fetcher:  &stubFetcher{items: rawItems(10)},
		toxicity: &stubToxicity{up: false},
		sink:     sink,
		store:    &stubStore{},
	})

	report, err := p.Run(context.Background(), "golang", "session-1", Options{})

	require.NoError(t, err)
	assert.Equal(t, 0, report.ToxicitySummary.ToxicCount)
	assert.Equal(t, 10, report.ToxicitySummary.CleanCount)
	assert.Zero(t, report.ToxicitySummary.ToxicityRate)

	// Sentiment still reflects real classifier output.
	assert.Equal(t, 10, report.SentimentSummary.Positive)
}

func TestRunSentimentStageUnavailable(t *testing.T) {
	p := newTestPipeline(pipelineDeps{
		fetcher:   &stubFetcher{items: rawItems(4)},
		sentiment: &stubSentiment{up: false},
		sink:      newRecordingSink(),
		store:     &stubStore{},
	})

	report, err := p.Run(context.Background(), "golang", "session-1", Options{})

	require.NoError(t, err)
	assert.Equal(t, 4, report.SentimentSummary.Neutral)
	assert.Zero(t, report.SentimentSummary.Positive)
	assert.Zero(t, report.SentimentSummary.Negative)
}

func TestRunNoItems(t *testing.T) {
	sink := newRecordingSink()
	store := &stubStore{}
	p := newTestPipeline(pipelineDeps{
		fetcher: &stubFetcher{items: nil},
		sink:    sink,
		store:   store,
	})

	report, err := p.Run(context.Background(), "zzznonexistentzzz", "session-1", Options{})

	assert.Nil(t, report)
	assert.ErrorIs(t, err, analysis.ErrNoItems)
	assert.Zero(t, store.savedCount())

	kinds := sink.kinds("session-1")
	assert.Contains(t, kinds, analysis.EventNoData)
	assert.NotContains(t, kinds, analysis.EventComplete)
	assert.NotContains(t, kinds, analysis.EventError)
}

func TestRunAllItemsUnanalyzable(t *testing.T) {
	sink := newRecordingSink()
	p := newTestPipeline(pipelineDeps{
		fetcher: &stubFetcher{items: []analysis.RawItem{{ID: "1", Text: ""}, {ID: "2", Text: "  "}}},
		sink:    sink,
		store:   &stubStore{},
	})

	_, err := p.Run(context.Background(), "golang", "session-1", Options{})

	assert.ErrorIs(t, err, analysis.ErrNoItems)
	assert.Contains(t, sink.kinds("session-1"), analysis.EventNoData)
}

func TestRunTopicExtractionFailureIsNonFatal(t *testing.T) {
	sink := newRecordingSink()
	store := &stubStore{}
	p := newTestPipeline(pipelineDeps{
		fetcher:   &stubFetcher{items: rawItems(5)},
		extractor: &stubExtractor{err: errors.New("sampler diverged")},
		sink:      sink,
		store:     store,
	})

	report, err := p.Run(context.Background(), "golang", "session-1", Options{})

	require.NoError(t, err)
	assert.Empty(t, report.Topics)
	assert.NotNil(t, report.Topics)
	assert.Equal(t, 1, store.savedCount())
	assert.Equal(t, successKinds, sink.kinds("session-1"))
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	sink := newRecordingSink()
	store := &stubStore{}
	p := newTestPipeline(pipelineDeps{
		fetcher: &stubFetcher{err: errors.New("upstream timeout")},
		sink:    sink,
		store:   store,
	})

	report, err := p.Run(context.Background(), "golang", "session-1", Options{})

	assert.Nil(t, report)
	assert.Error(t, err)
	assert.Zero(t, store.savedCount())

	kinds := sink.kinds("session-1")
	assert.Equal(t, analysis.EventError, kinds[len(kinds)-1])
	assert.NotContains(t, kinds, analysis.EventComplete)
}

func TestRunPersistenceFailureIsNonFatal(t *testing.T) {
	sink := newRecordingSink()
	p := newTestPipeline(pipelineDeps{
		fetcher: &stubFetcher{items: rawItems(3)},
		sink:    sink,
		store:   &stubStore{err: errors.New("connection refused")},
	})

	report, err := p.Run(context.Background(), "golang", "session-1", Options{})

	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Contains(t, sink.kinds("session-1"), analysis.EventComplete)
}

func TestRunReportInvariants(t *testing.T) {
	p := newTestPipeline(pipelineDeps{
		fetcher:  &stubFetcher{items: rawItems(7)},
		toxicity: &stubToxicity{score: 0.9, toxic: true, up: true},
		sink:     newRecordingSink(),
		store:    &stubStore{},
	})

	report, err := p.Run(context.Background(), "golang", "session-1", Options{})

	require.NoError(t, err)
	assert.Equal(t, len(report.Items), report.ItemsAnalyzed)

	s := report.SentimentSummary
	assert.Equal(t, report.ItemsAnalyzed, s.Positive+s.Negative+s.Neutral)
	percentSum := s.PositivePercentage + s.NegativePercentage + s.NeutralPercentage
	assert.InDelta(t, 100.0, percentSum, 0.1)

	x := report.ToxicitySummary
	assert.Equal(t, report.ItemsAnalyzed, x.ToxicCount+x.CleanCount)
	assert.Equal(t, 7, x.ToxicCount)
	assert.Len(t, report.TopToxic, 5)
}

func TestRunMaxItemsOverride(t *testing.T) {
	var gotMax int
	fetcher := fetcherFunc(func(_ context.Context, _ string, maxItems int) ([]analysis.RawItem, error) {
		gotMax = maxItems
		return rawItems(2), nil
	})

	p := newTestPipeline(pipelineDeps{fetcher: fetcher, sink: newRecordingSink(), store: &stubStore{}})

	_, err := p.Run(context.Background(), "golang", "session-1", Options{MaxItems: 50, UserID: "user-9"})
	require.NoError(t, err)
	assert.Equal(t, 50, gotMax)
}

type fetcherFunc func(ctx context.Context, query string, maxItems int) ([]analysis.RawItem, error)

func (f fetcherFunc) Fetch(ctx context.Context, query string, maxItems int) ([]analysis.RawItem, error) {
	return f(ctx, query, maxItems)
}

func TestConcurrentRunsKeepSessionsIndependent(t *testing.T) {
	sink := newRecordingSink()
	store := &stubStore{}
	p := newTestPipeline(pipelineDeps{
		fetcher: &stubFetcher{items: rawItems(6)},
		sink:    sink,
		store:   store,
	})

	var wg sync.WaitGroup
	for _, session := range []string{"session-a", "session-b"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := p.Run(context.Background(), "golang", id, Options{})
			assert.NoError(t, err)
		}(session)
	}
	wg.Wait()

	assert.Equal(t, successKinds, sink.kinds("session-a"))
	assert.Equal(t, successKinds, sink.kinds("session-b"))
	assert.Equal(t, 2, store.savedCount())
}
