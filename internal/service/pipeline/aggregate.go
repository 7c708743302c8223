package pipeline

import (
	"math"
	"sort"

	"convosense/internal/domain/analysis"
)

// Aggregator combines per-item classification results into corpus-level
// statistics. All methods are pure; re-running them over the same results
// yields identical summaries.
type Aggregator struct{}

// NewAggregator creates an aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// SummarizeSentiment counts labels and derives percentage shares. The
// percentage division uses max(1, len) so an empty input yields zeros
// rather than a fault, while Total reports the actual length.
func (a *Aggregator) SummarizeSentiment(results []analysis.SentimentResult) analysis.SentimentSummary {
	var positive, negative int
	for _, r := range results {
		switch r.Label {
		case analysis.LabelPositive:
			positive++
		case analysis.LabelNegative:
			negative++
		}
	}
	neutral := len(results) - positive - negative

	divisor := float64(len(results))
	if divisor == 0 {
		divisor = 1
	}

	return analysis.SentimentSummary{
		Positive:           positive,
		Negative:           negative,
		Neutral:            neutral,
		PositivePercentage: round2(float64(positive) / divisor * 100),
		NegativePercentage: round2(float64(negative) / divisor * 100),
		NeutralPercentage:  round2(float64(neutral) / divisor * 100),
		Total:              len(results),
	}
}

// SummarizeToxicity counts toxic and clean results and derives the toxicity
// rate. An empty input yields all zeros.
func (a *Aggregator) SummarizeToxicity(results []analysis.ToxicityResult) analysis.ToxicitySummary {
	var toxic int
	for _, r := range results {
		if r.IsToxic {
			toxic++
		}
	}

	summary := analysis.ToxicitySummary{
		ToxicCount: toxic,
		CleanCount: len(results) - toxic,
	}

	if len(results) > 0 {
		summary.ToxicityRate = round2(float64(toxic) / float64(len(results)) * 100)
	}

	return summary
}

// TopToxic returns up to n excerpts of the highest-toxicity items, most
// toxic first. Input order breaks ties so output is stable.
func (a *Aggregator) TopToxic(items []analysis.AnnotatedItem, n int) []analysis.ToxicExcerpt {
	ranked := make([]analysis.AnnotatedItem, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Toxicity.Toxicity > ranked[j].Toxicity.Toxicity
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	excerpts := make([]analysis.ToxicExcerpt, len(ranked))
	for i, item := range ranked {
		excerpts[i] = analysis.ToxicExcerpt{
			Text:  item.RawText,
			Score: item.Toxicity.Toxicity,
		}
	}
	return excerpts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
