package topics

import (
	"regexp"
	"strings"
)

var (
	urlPattern       = regexp.MustCompile(`(https?://|www\.)\S+`)
	mentionPattern   = regexp.MustCompile(`@\w+`)
	nonLetterPattern = regexp.MustCompile(`[^a-zA-Z\s]`)
)

// stopwords is a compact English stoplist. Tokens on it carry no topical
// signal; they would otherwise dominate every topic's term ranking.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "any",
		"can", "had", "her", "was", "one", "our", "out", "day", "get",
		"has", "him", "his", "how", "man", "new", "now", "old", "see",
		"two", "way", "who", "did", "its", "let", "she", "too", "use",
		"that", "with", "have", "this", "will", "your", "from", "they",
		"know", "want", "been", "much", "some", "time", "very", "when",
		"come", "here", "just", "like", "make", "many", "more", "only",
		"over", "such", "take", "than", "them", "well", "were", "what",
		"about", "there", "their", "which", "would", "could", "other",
		"into", "after", "before", "because", "being", "doing", "does",
		"anyone", "else", "also", "still", "then", "these", "those",
	} {
		stopwords[w] = struct{}{}
	}
}

// CleanText normalizes one text for topic extraction: URLs and @mentions
// are stripped, everything but letters and spaces is removed, tokens are
// lowercased, and stopwords and tokens shorter than three characters are
// dropped. Returns the surviving tokens joined by single spaces.
func CleanText(text string) string {
	return strings.Join(tokenize(text), " ")
}

func tokenize(text string) []string {
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = nonLetterPattern.ReplaceAllString(text, "")

	var tokens []string
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
