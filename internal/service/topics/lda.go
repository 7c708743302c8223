package topics

import (
	"context"
	"math/rand"
	"sort"

	"convosense/internal/domain/analysis"
)

// LDA hyperparameters. Alpha smooths document-topic mixtures, beta smooths
// topic-word distributions.
const (
	ldaAlpha      = 0.1
	ldaBeta       = 0.01
	ldaIterations = 50
	ldaSeed       = 42
)

// LDAExtractor derives latent topics from a corpus with collapsed Gibbs
// sampling over a document-term model. Sampling is seeded, so the same
// corpus always yields the same topics.
type LDAExtractor struct {
	termsPerTopic int
}

// NewLDAExtractor creates a topic extractor that reports the given number
// of ranked terms per topic.
func NewLDAExtractor(termsPerTopic int) *LDAExtractor {
	if termsPerTopic < 1 {
		termsPerTopic = 8
	}
	return &LDAExtractor{termsPerTopic: termsPerTopic}
}

// ExtractTopics preprocesses the corpus and fits numTopics topics over it.
// A corpus whose vocabulary is empty after preprocessing yields no topics;
// that is not an error.
func (e *LDAExtractor) ExtractTopics(_ context.Context, texts []string, numTopics int) ([]analysis.Topic, error) {
	docs, vocab := buildCorpus(texts)
	if len(docs) == 0 || len(vocab) == 0 || numTopics < 1 {
		return []analysis.Topic{}, nil
	}

	if numTopics > len(vocab) {
		numTopics = len(vocab)
	}
	if numTopics > len(docs) {
		numTopics = len(docs)
	}

	topicWord := e.sample(docs, len(vocab), numTopics)

	topics := make([]analysis.Topic, numTopics)
	for k := 0; k < numTopics; k++ {
		topics[k] = analysis.Topic{
			ID:    k,
			Terms: topTerms(topicWord[k], vocab, e.termsPerTopic),
		}
	}

	return topics, nil
}

// buildCorpus tokenizes every text and maps tokens to vocabulary indices.
// Documents left empty by preprocessing are dropped.
func buildCorpus(texts []string) ([][]int, []string) {
	index := make(map[string]int)
	var vocab []string
	var docs [][]int

	for _, text := range texts {
		tokens := tokenize(text)
		if len(tokens) == 0 {
			continue
		}

		doc := make([]int, len(tokens))
		for i, token := range tokens {
			id, ok := index[token]
			if !ok {
				id = len(vocab)
				index[token] = id
				vocab = append(vocab, token)
			}
			doc[i] = id
		}
		docs = append(docs, doc)
	}

	return docs, vocab
}

// sample runs collapsed Gibbs sampling and returns per-topic word counts.
func (e *LDAExtractor) sample(docs [][]int, vocabSize, numTopics int) [][]int {
	rng := rand.New(rand.NewSource(ldaSeed))

	docTopic := make([][]int, len(docs))
	topicWord := make([][]int, numTopics)
	topicTotal := make([]int, numTopics)
	assignments := make([][]int, len(docs))

	for k := range topicWord {
		topicWord[k] = make([]int, vocabSize)
	}

	for d, doc := range docs {
		docTopic[d] = make([]int, numTopics)
		assignments[d] = make([]int, len(doc))
		for n, w := range doc {
			k := rng.Intn(numTopics)
			assignments[d][n] = k
			docTopic[d][k]++
			topicWord[k][w]++
			topicTotal[k]++
		}
	}

	weights := make([]float64, numTopics)
	betaSum := ldaBeta * float64(vocabSize)

	for it := 0; it < ldaIterations; it++ {
		for d, doc := range docs {
			for n, w := range doc {
				old := assignments[d][n]
				docTopic[d][old]--
				topicWord[old][w]--
				topicTotal[old]--

				var sum float64
				for k := 0; k < numTopics; k++ {
					weights[k] = (float64(docTopic[d][k]) + ldaAlpha) *
						(float64(topicWord[k][w]) + ldaBeta) /
						(float64(topicTotal[k]) + betaSum)
					sum += weights[k]
				}

				target := rng.Float64() * sum
				next := numTopics - 1
				for k := 0; k < numTopics; k++ {
					target -= weights[k]
					if target < 0 {
						next = k
						break
					}
				}

				assignments[d][n] = next
				docTopic[d][next]++
				topicWord[next][w]++
				topicTotal[next]++
			}
		}
	}

	return topicWord
}

// topTerms ranks a topic's vocabulary by count, breaking ties
// alphabetically so output is stable.
func topTerms(counts []int, vocab []string, limit int) []string {
	ids := make([]int, 0, len(counts))
	for id, count := range counts {
		if count > 0 {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return vocab[ids[i]] < vocab[ids[j]]
	})

	if len(ids) > limit {
		ids = ids[:limit]
	}

	terms := make([]string, len(ids))
	for i, id := range ids {
		terms[i] = vocab[id]
	}
	return terms
}
