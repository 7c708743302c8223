package acquisition

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"convosense/internal/domain/analysis"
)

// sampleTemplates produce a spread of positive, negative, neutral, and
// mildly toxic texts so downstream classification stages all see work.
var sampleTemplates = []string{
	"I love the new %s! It's amazing.",
	"The %s is okay, but could be better.",
	"Terrible experience with %s. Avoid it!",
	"Just saw some news about %s. Interesting.",
	"%s is definitely trending today.",
	"Anyone else using %s? I have some questions.",
	"Wow, %s is a game changer in the industry.",
	"Not sure how I feel about the latest %s update.",
	"The community around %s is so toxic lately.",
	"Support for %s has been great so far.",
}

// SampleFetcher generates deterministic sample items for a query. It backs
// development and demo setups and the degrade path of the live fetcher.
type SampleFetcher struct{}

// NewSampleFetcher creates a sample data generator.
func NewSampleFetcher() *SampleFetcher {
	return &SampleFetcher{}
}

// Fetch generates maxItems items for the query. The same query always
// yields the same texts, cycling through the templates in order. A query
// containing "zzznonexistentzzz" yields nothing, so the no-data path stays
// reachable in demos.
func (f *SampleFetcher) Fetch(_ context.Context, query string, maxItems int) ([]analysis.RawItem, error) {
	if strings.Contains(strings.ToLower(query), "zzznonexistentzzz") {
		return []analysis.RawItem{}, nil
	}

	if maxItems < 1 {
		maxItems = 10
	}

	seed := querySeed(query)
	now := time.Now().UTC()

	items := make([]analysis.RawItem, maxItems)
	for i := 0; i < maxItems; i++ {
		template := sampleTemplates[(int(seed)+i)%len(sampleTemplates)]

		items[i] = analysis.RawItem{
			ID:        fmt.Sprintf("sample-%08x-%d", seed, i),
			Text:      fmt.Sprintf(template, query),
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
			Metadata: map[string]interface{}{
				"lang": "en",
				"author": map[string]interface{}{
					"id":       fmt.Sprintf("user-%d", (int(seed)+i)%100),
					"username": fmt.Sprintf("sample_user_%d", (int(seed)+i)%100),
				},
			},
		}
	}

	return items, nil
}

func querySeed(query string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(query)))
	return h.Sum32()
}
