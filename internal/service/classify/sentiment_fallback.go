package classify

import (
	"context"
	"math"
	"strings"

	"convosense/internal/domain/analysis"
)

// LexiconSentimentClassifier is the deterministic, local sentiment variant.
// It scores texts against small positive and negative word lists and never
// fails, for any input including the empty string.
type LexiconSentimentClassifier struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

var positiveWords = []string{
	"love", "loved", "great", "amazing", "awesome", "excellent", "good",
	"fantastic", "wonderful", "best", "happy", "impressive", "brilliant",
	"helpful", "enjoy", "enjoyed", "perfect", "beautiful", "win", "winning",
}

var negativeWords = []string{
	"hate", "hated", "terrible", "awful", "horrible", "bad", "worst",
	"disappointing", "disappointed", "broken", "useless", "garbage", "angry",
	"toxic", "stupid", "avoid", "fail", "failed", "scam", "annoying",
}

// NewLexiconSentimentClassifier creates the fallback sentiment classifier.
func NewLexiconSentimentClassifier() *LexiconSentimentClassifier {
	c := &LexiconSentimentClassifier{
		positive: make(map[string]struct{}, len(positiveWords)),
		negative: make(map[string]struct{}, len(negativeWords)),
	}
	for _, w := range positiveWords {
		c.positive[w] = struct{}{}
	}
	for _, w := range negativeWords {
		c.negative[w] = struct{}{}
	}
	return c
}

// Name identifies the classifier variant
func (c *LexiconSentimentClassifier) Name() string {
	return "sentiment-lexicon"
}

// Available always reports true; the fallback has no external dependency
func (c *LexiconSentimentClassifier) Available() bool {
	return true
}

// ClassifyBatch scores every text locally. The error return is always nil
// and exists only to satisfy the classifier contract.
func (c *LexiconSentimentClassifier) ClassifyBatch(_ context.Context, texts []string) ([]analysis.SentimentResult, error) {
	results := make([]analysis.SentimentResult, len(texts))
	for i, text := range texts {
		results[i] = c.score(text)
	}
	return results, nil
}

func (c *LexiconSentimentClassifier) score(text string) analysis.SentimentResult {
	var pos, neg int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if _, ok := c.positive[word]; ok {
			pos++
		}
		if _, ok := c.negative[word]; ok {
			neg++
		}
	}

	net := pos - neg
	if net == 0 {
		return analysis.SentimentResult{Label: analysis.LabelNeutral, Confidence: 0.5}
	}

	// Confidence grows with the hit margin but never reaches certainty.
	confidence := math.Min(0.99, 0.55+0.15*math.Abs(float64(net)))

	label := analysis.LabelPositive
	if net < 0 {
		label = analysis.LabelNegative
	}

	return analysis.SentimentResult{Label: label, Confidence: round4(confidence)}
}
