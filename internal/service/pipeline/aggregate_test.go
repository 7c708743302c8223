package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convosense/internal/domain/analysis"
)

func sentiments(labels ...string) []analysis.SentimentResult {
	results := make([]analysis.SentimentResult, len(labels))
	for i, label := range labels {
		results[i] = analysis.SentimentResult{Label: label, Confidence: 0.9}
	}
	return results
}

func TestSummarizeSentimentCounts(t *testing.T) {
	a := NewAggregator()

	summary := a.SummarizeSentiment(sentiments(
		analysis.LabelPositive, analysis.LabelPositive, analysis.LabelNegative,
		analysis.LabelNeutral, analysis.LabelNeutral, analysis.LabelNeutral,
	))

	assert.Equal(t, 2, summary.Positive)
	assert.Equal(t, 1, summary.Negative)
	assert.Equal(t, 3, summary.Neutral)
	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, summary.Total, summary.Positive+summary.Negative+summary.Neutral)

	percentSum := summary.PositivePercentage + summary.NegativePercentage + summary.NeutralPercentage
	assert.InDelta(t, 100.0, percentSum, 0.1)
}

func TestSummarizeSentimentEmpty(t *testing.T) {
	a := NewAggregator()

	summary := a.SummarizeSentiment(nil)

	assert.Zero(t, summary.Total)
	assert.Zero(t, summary.Positive)
	assert.Zero(t, summary.PositivePercentage)
	assert.Zero(t, summary.NegativePercentage)
	assert.Zero(t, summary.NeutralPercentage)
}

func TestSummarizeSentimentIdempotent(t *testing.T) {
	a := NewAggregator()
	results := sentiments(analysis.LabelPositive, analysis.LabelNegative, analysis.LabelNeutral)

	first := a.SummarizeSentiment(results)
	second := a.SummarizeSentiment(results)

	assert.Equal(t, first, second)
}

func TestSummarizeToxicityCounts(t *testing.T) {
	a := NewAggregator()

	summary := a.SummarizeToxicity([]analysis.ToxicityResult{
		{Toxicity: 0.9, IsToxic: true},
		{Toxicity: 0.1},
		{Toxicity: 0.2},
		{Toxicity: 0.8, IsToxic: true},
	})

	assert.Equal(t, 2, summary.ToxicCount)
	assert.Equal(t, 2, summary.CleanCount)
	assert.Equal(t, 50.0, summary.ToxicityRate)
	assert.Equal(t, 4, summary.ToxicCount+summary.CleanCount)
}

func TestSummarizeToxicityEmpty(t *testing.T) {
	a := NewAggregator()

	summary := a.SummarizeToxicity(nil)

	assert.Zero(t, summary.ToxicCount)
	assert.Zero(t, summary.CleanCount)
	assert.Zero(t, summary.ToxicityRate)
}

func TestSummarizeToxicityIdempotent(t *testing.T) {
	a := NewAggregator()
	results := []analysis.ToxicityResult{{Toxicity: 0.9, IsToxic: true}, {Toxicity: 0.1}}

	assert.Equal(t, a.SummarizeToxicity(results), a.SummarizeToxicity(results))
}

func TestTopToxicRanking(t *testing.T) {
	a := NewAggregator()

	items := []analysis.AnnotatedItem{
		{TextItem: analysis.TextItem{RawText: "mild"}, Toxicity: analysis.ToxicityResult{Toxicity: 0.2}},
		{TextItem: analysis.TextItem{RawText: "worst"}, Toxicity: analysis.ToxicityResult{Toxicity: 0.9}},
		{TextItem: analysis.TextItem{RawText: "middle"}, Toxicity: analysis.ToxicityResult{Toxicity: 0.5}},
		{TextItem: analysis.TextItem{RawText: "clean"}, Toxicity: analysis.ToxicityResult{Toxicity: 0.05}},
	}

	top := a.TopToxic(items, 2)

	require.Len(t, top, 2)
	assert.Equal(t, "worst", top[0].Text)
	assert.Equal(t, 0.9, top[0].Score)
	assert.Equal(t, "middle", top[1].Text)
}

func TestTopToxicDoesNotReorderInput(t *testing.T) {
	a := NewAggregator()

	items := []analysis.AnnotatedItem{
		{TextItem: analysis.TextItem{RawText: "first"}, Toxicity: analysis.ToxicityResult{Toxicity: 0.1}},
		{TextItem: analysis.TextItem{RawText: "second"}, Toxicity: analysis.ToxicityResult{Toxicity: 0.8}},
	}

	a.TopToxic(items, 5)

	assert.Equal(t, "first", items[0].RawText)
	assert.Equal(t, "second", items[1].RawText)
}
