package analysis

import "strings"

// Corpus is the result of normalizing a raw acquisition batch: the ordered
// items that can be classified, plus a count of records that were dropped.
type Corpus struct {
	Items   []TextItem
	Skipped int
}

// Normalize converts a raw batch into an ordered sequence of analyzable
// items. Records with empty or whitespace-only text are dropped and counted
// in Skipped; input order is preserved for the rest.
func Normalize(raw []RawItem) Corpus {
	corpus := Corpus{Items: make([]TextItem, 0, len(raw))}

	for _, r := range raw {
		if strings.TrimSpace(r.Text) == "" {
			corpus.Skipped++
			continue
		}

		corpus.Items = append(corpus.Items, TextItem{
			ID:        r.ID,
			RawText:   r.Text,
			CreatedAt: r.CreatedAt,
			Metadata:  r.Metadata,
		})
	}

	return corpus
}

// Texts returns the raw text of every item, in corpus order.
func (c Corpus) Texts() []string {
	texts := make([]string, len(c.Items))
	for i, item := range c.Items {
		texts[i] = item.RawText
	}
	return texts
}
