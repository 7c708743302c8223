package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convosense/internal/domain/analysis"
)

// scriptedSentiment fails on chosen chunks and records what it receives.
type scriptedSentiment struct {
	failOn  map[int]bool // call index -> fail
	calls   int
	batches [][]string
	label   string
}

func (s *scriptedSentiment) Name() string    { return "scripted" }
func (s *scriptedSentiment) Available() bool { return true }

func (s *scriptedSentiment) ClassifyBatch(_ context.Context, texts []string) ([]analysis.SentimentResult, error) {
	call := s.calls
	s.calls++
	s.batches = append(s.batches, texts)

	if s.failOn[call] {
		return nil, errors.New("model overloaded")
	}

	results := make([]analysis.SentimentResult, len(texts))
	for i := range results {
		results[i] = analysis.SentimentResult{Label: s.label, Confidence: 0.9}
	}
	return results, nil
}

// scriptedToxicity fails on chosen item indices.
type scriptedToxicity struct {
	failOn map[int]bool
	calls  int
	score  float64
}

func (s *scriptedToxicity) Name() string    { return "scripted" }
func (s *scriptedToxicity) Available() bool { return true }

func (s *scriptedToxicity) Classify(_ context.Context, _ string) (analysis.ToxicityResult, error) {
	call := s.calls
	s.calls++

	if s.failOn[call] {
		return analysis.ToxicityResult{}, errors.New("quota exceeded")
	}
	return analysis.ToxicityResult{Toxicity: s.score, IsToxic: s.score > 0.7}, nil
}

func makeTexts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("text number %d", i)
	}
	return texts
}

func TestRunSentimentLengthPreservedAcrossChunkFailures(t *testing.T) {
	primary := &scriptedSentiment{label: analysis.LabelPositive, failOn: map[int]bool{1: true}}
	fallback := NewLexiconSentimentClassifier()
	runner := NewRunner(Options{ChunkSize: 8})

	texts := makeTexts(20) // 3 chunks: 8, 8, 4
	results := runner.RunSentiment(context.Background(), primary, fallback, texts)

	require.Len(t, results, 20)
	assert.Equal(t, 3, primary.calls)

	// First chunk kept the primary's labels.
	assert.Equal(t, analysis.LabelPositive, results[0].Label)
	// Second chunk degraded: neutral lexicon output for these plain texts.
	assert.Equal(t, analysis.LabelNeutral, results[8].Label)
}

func TestRunSentimentChunking(t *testing.T) {
	primary := &scriptedSentiment{label: analysis.LabelNegative}
	runner := NewRunner(Options{ChunkSize: 8})

	runner.RunSentiment(context.Background(), primary, NewLexiconSentimentClassifier(), makeTexts(17))

	require.Equal(t, 3, primary.calls)
	assert.Len(t, primary.batches[0], 8)
	assert.Len(t, primary.batches[1], 8)
	assert.Len(t, primary.batches[2], 1)
}

func TestRunSentimentEmptyBatch(t *testing.T) {
	primary := &scriptedSentiment{label: analysis.LabelPositive}
	runner := NewRunner(Options{})

	results := runner.RunSentiment(context.Background(), primary, NewLexiconSentimentClassifier(), nil)

	assert.Empty(t, results)
	assert.Zero(t, primary.calls)
}

func TestRunSentimentNeutralityReclassification(t *testing.T) {
	primary := &scriptedSentiment{label: analysis.LabelPositive}
	runner := NewRunner(Options{})

	// Scripted confidence is 0.9, above the default threshold.
	results := runner.RunSentiment(context.Background(), primary, NewLexiconSentimentClassifier(), makeTexts(2))
	assert.Equal(t, analysis.LabelPositive, results[0].Label)

	// Raise the threshold above the scripted confidence; labels collapse.
	strict := NewRunner(Options{NeutralityThreshold: 0.95})
	results = strict.RunSentiment(context.Background(), primary, NewLexiconSentimentClassifier(), makeTexts(2))
	for _, r := range results {
		assert.Equal(t, analysis.LabelNeutral, r.Label)
		assert.Equal(t, 0.9, r.Confidence, "reclassification changes the label only")
	}
}

func TestRunSentimentTruncation(t *testing.T) {
	primary := &scriptedSentiment{label: analysis.LabelPositive}
	runner := NewRunner(Options{TruncationLength: 10})

	long := strings.Repeat("a", 100)
	runner.RunSentiment(context.Background(), primary, NewLexiconSentimentClassifier(), []string{long, "short"})

	require.Len(t, primary.batches, 1)
	assert.Len(t, primary.batches[0][0], 10)
	assert.Equal(t, "short", primary.batches[0][1])
}

func TestRunToxicityLengthPreservedAcrossCallFailures(t *testing.T) {
	primary := &scriptedToxicity{score: 0.9, failOn: map[int]bool{0: true, 3: true}}
	fallback := NewKeywordToxicityClassifier()
	runner := NewRunner(Options{})

	results := runner.RunToxicity(context.Background(), primary, fallback, makeTexts(5))

	require.Len(t, results, 5)
	assert.Equal(t, 5, primary.calls)

	// Failed calls carry the fallback's scale: plain texts score clean.
	assert.False(t, results[0].IsToxic)
	assert.Less(t, results[0].Toxicity, 0.3)
	// Successful calls keep the primary's result.
	assert.True(t, results[1].IsToxic)
	assert.Equal(t, 0.9, results[1].Toxicity)
}

func TestRunToxicityEmptyBatch(t *testing.T) {
	primary := &scriptedToxicity{score: 0.5}
	runner := NewRunner(Options{})

	results := runner.RunToxicity(context.Background(), primary, NewKeywordToxicityClassifier(), nil)

	assert.Empty(t, results)
	assert.Zero(t, primary.calls)
}
