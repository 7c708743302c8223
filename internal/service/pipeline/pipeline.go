package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"convosense/internal/domain/analysis"
	"convosense/internal/service/classify"
)

// Stage names used in progress notifications.
const (
	StageFetching  = "FETCHING"
	StageFetched   = "FETCHED"
	StageSentiment = "SENTIMENT"
	StageToxicity  = "TOXICITY"
	StageTopics    = "TOPICS"
	StageComplete  = "COMPLETE"
)

// Config contains configuration for the analysis pipeline
type Config struct {
	MaxItems      int
	NumTopics     int
	TopToxicCount int
}

// Options carries per-run parameters supplied at trigger time.
type Options struct {
	// MaxItems overrides the configured acquisition cap when positive
	MaxItems int

	// UserID links the report to the requesting account when set
	UserID string
}

// Pipeline orchestrates one analysis run: fetch, classify sentiment,
// classify toxicity, extract topics, aggregate, persist, report. Progress
// is emitted to the run's session at each stage boundary. Classifier
// instances are shared read-only across concurrent runs.
type Pipeline struct {
	fetcher           analysis.Fetcher
	sentiment         analysis.SentimentClassifier
	sentimentFallback analysis.SentimentClassifier
	toxicity          analysis.ToxicityClassifier
	toxicityFallback  analysis.ToxicityClassifier
	topics            analysis.TopicExtractor
	runner            *classify.Runner
	aggregator        *Aggregator
	sink              analysis.ProgressSink
	store             analysis.ReportStore
	config            Config
}

// New creates an analysis pipeline.
func New(
	fetcher analysis.Fetcher,
	sentiment analysis.SentimentClassifier,
	sentimentFallback analysis.SentimentClassifier,
	toxicity analysis.ToxicityClassifier,
	toxicityFallback analysis.ToxicityClassifier,
	topics analysis.TopicExtractor,
	runner *classify.Runner,
	sink analysis.ProgressSink,
	store analysis.ReportStore,
	config Config,
) *Pipeline {
	if config.MaxItems < 1 {
		config.MaxItems = 20
	}
	if config.NumTopics < 1 {
		config.NumTopics = 3
	}
	if config.TopToxicCount < 1 {
		config.TopToxicCount = 5
	}

	return &Pipeline{
		fetcher:           fetcher,
		sentiment:         sentiment,
		sentimentFallback: sentimentFallback,
		toxicity:          toxicity,
		toxicityFallback:  toxicityFallback,
		topics:            topics,
		runner:            runner,
		aggregator:        NewAggregator(),
		sink:              sink,
		store:             store,
		config:            config,
	}
}

// Start triggers a run on its own goroutine and returns immediately. Once
// started, a run proceeds to a terminal state; there is no cancellation.
func (p *Pipeline) Start(query, sessionID string, opts Options) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Analysis run for session %s panicked: %v", sessionID, r)
				p.sink.Notify(sessionID, analysis.EventError, map[string]interface{}{
					"message": fmt.Sprintf("analysis failed: %v", r),
				})
			}
		}()

		if _, err := p.Run(context.Background(), query, sessionID, opts); err != nil && err != analysis.ErrNoItems {
			log.Printf("Analysis run for session %s failed: %v", sessionID, err)
		}
	}()
}

// Run executes the pipeline synchronously and returns the assembled report.
// It returns ErrNoItems when acquisition finds nothing, and a fatal error
// when orchestration itself fails; stage-level classifier problems degrade
// locally and never abort the run.
func (p *Pipeline) Run(ctx context.Context, query, sessionID string, opts Options) (*analysis.Report, error) {
	maxItems := p.config.MaxItems
	if opts.MaxItems > 0 {
		maxItems = opts.MaxItems
	}

	p.status(sessionID, "Fetching items...")
	p.progress(sessionID, StageFetching, 5, nil)

	raw, err := p.fetcher.Fetch(ctx, query, maxItems)
	if err != nil {
		return nil, p.fail(sessionID, fmt.Errorf("acquisition failed: %w", err))
	}

	if len(raw) == 0 {
		p.sink.Notify(sessionID, analysis.EventNoData, map[string]interface{}{
			"query":   query,
			"message": "no items found for query",
		})
		return nil, analysis.ErrNoItems
	}

	corpus := analysis.Normalize(raw)
	if len(corpus.Items) == 0 {
		p.sink.Notify(sessionID, analysis.EventNoData, map[string]interface{}{
			"query":   query,
			"message": "no analyzable items for query",
			"skipped": corpus.Skipped,
		})
		return nil, analysis.ErrNoItems
	}

	p.progress(sessionID, StageFetched, 20, map[string]interface{}{
		"items":   len(corpus.Items),
		"skipped": corpus.Skipped,
	})

	texts := corpus.Texts()

	p.status(sessionID, "Analyzing sentiment...")
	p.progress(sessionID, StageSentiment, 30, nil)
	sentiments := p.runSentimentStage(ctx, texts)
	p.progress(sessionID, StageSentiment, 70, nil)

	p.status(sessionID, "Analyzing toxicity...")
	p.progress(sessionID, StageToxicity, 80, nil)
	toxicities := p.runToxicityStage(ctx, texts)
	p.progress(sessionID, StageToxicity, 90, nil)

	p.status(sessionID, "Identifying topics...")
	p.progress(sessionID, StageTopics, 95, nil)
	topics := p.runTopicsStage(ctx, texts)

	items := make([]analysis.AnnotatedItem, len(corpus.Items))
	for i, item := range corpus.Items {
		items[i] = analysis.AnnotatedItem{
			TextItem:  item,
			Sentiment: sentiments[i],
			Toxicity:  toxicities[i],
		}
	}

	report := &analysis.Report{
		ID:               uuid.New().String(),
		Query:            query,
		UserID:           opts.UserID,
		Timestamp:        time.Now().UTC(),
		ItemsAnalyzed:    len(items),
		SentimentSummary: p.aggregator.SummarizeSentiment(sentiments),
		ToxicitySummary:  p.aggregator.SummarizeToxicity(toxicities),
		Topics:           topics,
		Items:            items,
		TopToxic:         p.aggregator.TopToxic(items, p.config.TopToxicCount),
	}

	// Persistence failures never abort the run; the report still reaches
	// the caller.
	if _, err := p.store.Save(ctx, report); err != nil {
		log.Printf("Failed to persist report for query %q: %v", query, err)
	}

	p.progress(sessionID, StageComplete, 100, nil)
	p.sink.Notify(sessionID, analysis.EventComplete, map[string]interface{}{
		"report": report,
	})

	return report, nil
}

// runSentimentStage classifies every text. An unavailable classifier
// degrades the whole stage to all-neutral defaults; individual call
// failures degrade per item inside the runner.
func (p *Pipeline) runSentimentStage(ctx context.Context, texts []string) []analysis.SentimentResult {
	if !p.sentiment.Available() {
		log.Printf("Sentiment classifier %s unavailable, defaulting stage to neutral", p.sentiment.Name())
		results := make([]analysis.SentimentResult, len(texts))
		for i := range results {
			results[i] = analysis.SentimentResult{Label: analysis.LabelNeutral, Confidence: 0}
		}
		return results
	}

	return p.runner.RunSentiment(ctx, p.sentiment, p.sentimentFallback, texts)
}

// runToxicityStage classifies every text. An unavailable classifier
// degrades the whole stage to all-clean defaults.
func (p *Pipeline) runToxicityStage(ctx context.Context, texts []string) []analysis.ToxicityResult {
	if !p.toxicity.Available() {
		log.Printf("Toxicity classifier %s unavailable, defaulting stage to clean", p.toxicity.Name())
		return make([]analysis.ToxicityResult, len(texts))
	}

	return p.runner.RunToxicity(ctx, p.toxicity, p.toxicityFallback, texts)
}

// runTopicsStage extracts topics. Extraction failure is non-fatal and
// yields an empty topic list.
func (p *Pipeline) runTopicsStage(ctx context.Context, texts []string) []analysis.Topic {
	topics, err := p.topics.ExtractTopics(ctx, texts, p.config.NumTopics)
	if err != nil {
		log.Printf("Topic extraction failed, continuing without topics: %v", err)
		return []analysis.Topic{}
	}
	if topics == nil {
		topics = []analysis.Topic{}
	}
	return topics
}

func (p *Pipeline) status(sessionID, message string) {
	p.sink.Notify(sessionID, analysis.EventStatusUpdate, map[string]interface{}{
		"message": message,
	})
}

func (p *Pipeline) progress(sessionID, stage string, percent int, extra map[string]interface{}) {
	payload := map[string]interface{}{
		"stage":   stage,
		"percent": percent,
	}
	for k, v := range extra {
		payload[k] = v
	}
	p.sink.Notify(sessionID, analysis.EventProgress, payload)
}

func (p *Pipeline) fail(sessionID string, err error) error {
	p.sink.Notify(sessionID, analysis.EventError, map[string]interface{}{
		"message": err.Error(),
	})
	return err
}
