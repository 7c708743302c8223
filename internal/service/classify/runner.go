package classify

import (
	"context"
	"log"
	"time"

	"convosense/internal/domain/analysis"
)

// Options controls how the runner drives a classifier over a batch.
type Options struct {
	// TruncationLength is the per-item character cap applied before
	// classification. The reference sentiment model has a fixed input
	// window. Zero disables truncation.
	TruncationLength int

	// ChunkSize is the number of items sent per underlying batch call.
	ChunkSize int

	// InterRequestDelay paces sequential single-text calls to stay under
	// the rate limit of remote classifiers.
	InterRequestDelay time.Duration

	// NeutralityThreshold forces low-confidence sentiment labels to
	// NEUTRAL. Applied exactly once, where raw classifier output enters
	// the pipeline.
	NeutralityThreshold float64
}

// DefaultOptions returns the runner defaults.
func DefaultOptions() Options {
	return Options{
		TruncationLength:    512,
		ChunkSize:           8,
		InterRequestDelay:   1100 * time.Millisecond,
		NeutralityThreshold: 0.65,
	}
}

// Runner applies a classifier uniformly across a batch, absorbing the
// difference between classifiers that are natively batch-capable and those
// that must be called one text at a time. A failing primary call degrades
// only the affected items to the fallback's result; the output always has
// exactly one result per input.
type Runner struct {
	opts Options
}

// NewRunner creates a runner. Zero-valued options fall back to defaults.
func NewRunner(opts Options) *Runner {
	defaults := DefaultOptions()
	if opts.ChunkSize < 1 {
		opts.ChunkSize = defaults.ChunkSize
	}
	if opts.NeutralityThreshold <= 0 {
		opts.NeutralityThreshold = defaults.NeutralityThreshold
	}
	return &Runner{opts: opts}
}

// RunSentiment classifies every text, chunk by chunk, substituting the
// fallback's results for any chunk the primary fails on.
func (r *Runner) RunSentiment(
	ctx context.Context,
	primary analysis.SentimentClassifier,
	fallback analysis.SentimentClassifier,
	texts []string,
) []analysis.SentimentResult {
	truncated := r.truncateAll(texts)
	results := make([]analysis.SentimentResult, 0, len(truncated))

	for start := 0; start < len(truncated); start += r.opts.ChunkSize {
		end := start + r.opts.ChunkSize
		if end > len(truncated) {
			end = len(truncated)
		}
		chunk := truncated[start:end]

		chunkResults, err := primary.ClassifyBatch(ctx, chunk)
		if err != nil || len(chunkResults) != len(chunk) {
			if err != nil {
				log.Printf("Sentiment classifier %s failed on chunk of %d, degrading to %s: %v",
					primary.Name(), len(chunk), fallback.Name(), err)
			}
			chunkResults = r.sentimentFallback(ctx, fallback, chunk)
		}

		results = append(results, chunkResults...)
	}

	// Low-confidence labels collapse to NEUTRAL here and nowhere else.
	for i := range results {
		if results[i].Confidence < r.opts.NeutralityThreshold {
			results[i].Label = analysis.LabelNeutral
		}
	}

	return results
}

// RunToxicity classifies every text with sequential single-text calls,
// pacing them with the inter-request delay and substituting the fallback's
// result for any call the primary fails on.
func (r *Runner) RunToxicity(
	ctx context.Context,
	primary analysis.ToxicityClassifier,
	fallback analysis.ToxicityClassifier,
	texts []string,
) []analysis.ToxicityResult {
	truncated := r.truncateAll(texts)
	results := make([]analysis.ToxicityResult, len(truncated))

	for i, text := range truncated {
		result, err := primary.Classify(ctx, text)
		if err != nil {
			log.Printf("Toxicity classifier %s failed on item %d, degrading to %s: %v",
				primary.Name(), i, fallback.Name(), err)
			result = r.toxicityFallback(ctx, fallback, text)
		}
		results[i] = result

		if r.opts.InterRequestDelay > 0 && i < len(truncated)-1 {
			time.Sleep(r.opts.InterRequestDelay)
		}
	}

	return results
}

func (r *Runner) sentimentFallback(ctx context.Context, fallback analysis.SentimentClassifier, chunk []string) []analysis.SentimentResult {
	results, err := fallback.ClassifyBatch(ctx, chunk)
	if err == nil && len(results) == len(chunk) {
		return results
	}

	// Fallbacks are total by contract; this branch guards a misbehaving one.
	results = make([]analysis.SentimentResult, len(chunk))
	for i := range results {
		results[i] = analysis.SentimentResult{Label: analysis.LabelNeutral, Confidence: 0}
	}
	return results
}

func (r *Runner) toxicityFallback(ctx context.Context, fallback analysis.ToxicityClassifier, text string) analysis.ToxicityResult {
	result, err := fallback.Classify(ctx, text)
	if err != nil {
		return analysis.ToxicityResult{}
	}
	return result
}

func (r *Runner) truncateAll(texts []string) []string {
	if r.opts.TruncationLength <= 0 {
		return texts
	}

	truncated := make([]string, len(texts))
	for i, text := range texts {
		if len(text) > r.opts.TruncationLength {
			text = text[:r.opts.TruncationLength]
		}
		truncated[i] = text
	}
	return truncated
}
