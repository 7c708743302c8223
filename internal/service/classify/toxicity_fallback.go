package classify

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"convosense/internal/domain/analysis"
)

// keywordToxicThreshold is calibrated to the keyword heuristic's scale,
// where a single keyword hit should already read as toxic. It is not
// comparable to the Perspective threshold.
const keywordToxicThreshold = 0.3

var toxicKeywords = []string{
	"bad", "toxic", "hate", "stupid", "angry", "terrible", "garbage",
}

// KeywordToxicityClassifier is the deterministic, local toxicity variant.
// It scores texts by keyword hits over a small noise floor derived from the
// text itself, so repeated runs over the same input always agree.
type KeywordToxicityClassifier struct {
	keywords map[string]struct{}
}

// NewKeywordToxicityClassifier creates the fallback toxicity classifier.
func NewKeywordToxicityClassifier() *KeywordToxicityClassifier {
	c := &KeywordToxicityClassifier{
		keywords: make(map[string]struct{}, len(toxicKeywords)),
	}
	for _, w := range toxicKeywords {
		c.keywords[w] = struct{}{}
	}
	return c
}

// Name identifies the classifier variant
func (c *KeywordToxicityClassifier) Name() string {
	return "toxicity-keyword"
}

// Available always reports true; the fallback has no external dependency
func (c *KeywordToxicityClassifier) Available() bool {
	return true
}

// Classify scores one text locally. The error return is always nil and
// exists only to satisfy the classifier contract.
func (c *KeywordToxicityClassifier) Classify(_ context.Context, text string) (analysis.ToxicityResult, error) {
	var hits int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if _, ok := c.keywords[word]; ok {
			hits++
		}
	}

	score := math.Min(1.0, noiseFloor(text)+float64(hits)*0.2)
	score = round4(score)

	return analysis.ToxicityResult{
		Toxicity: score,
		IsToxic:  score > keywordToxicThreshold,
	}, nil
}

// noiseFloor maps a text to a stable base score in [0.01, 0.1).
func noiseFloor(text string) float64 {
	h := fnv.New32a()
	h.Write([]byte(text))
	return 0.01 + float64(h.Sum32()%90)/1000
}
