package analysis

import (
	"time"
)

// Sentiment labels produced by classification.
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
)

// RawItem is one record as returned by an acquisition source, before
// normalization. Metadata carries source-specific attributes (author,
// engagement metrics, language) that the pipeline passes through untouched.
type RawItem struct {
	ID        string                 `json:"id"`
	Text      string                 `json:"text"`
	CreatedAt time.Time              `json:"created_at"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// TextItem is one analyzable unit. RawText is non-empty for any item that
// reaches classification; Normalize filters the rest out.
type TextItem struct {
	ID        string                 `json:"id"`
	RawText   string                 `json:"text"`
	CreatedAt time.Time              `json:"created_at"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// SentimentResult holds the sentiment classification for one text.
type SentimentResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ToxicityResult holds the toxicity attribute scores for one text.
//
// IsToxic is derived from Toxicity against the threshold of whichever
// classifier produced the score. The API-backed classifier and the keyword
// fallback score on different scales, so the thresholds are a property of
// the classifier, never a shared constant.
type ToxicityResult struct {
	Toxicity       float64 `json:"toxicity"`
	SevereToxicity float64 `json:"severe_toxicity"`
	IdentityAttack float64 `json:"identity_attack"`
	Insult         float64 `json:"insult"`
	Profanity      float64 `json:"profanity"`
	Threat         float64 `json:"threat"`
	IsToxic        bool    `json:"is_toxic"`
}

// AnnotatedItem is a TextItem plus both of its classification results.
// Created once, after both classifications complete, and never mutated.
type AnnotatedItem struct {
	TextItem
	Sentiment SentimentResult `json:"sentiment"`
	Toxicity  ToxicityResult  `json:"toxicity"`
}

// Topic is one latent theme extracted from the corpus as a whole, described
// by its ranked terms. Topics have no per-item association.
type Topic struct {
	ID    int      `json:"id"`
	Terms []string `json:"terms"`
}

// SentimentSummary aggregates sentiment counts across a corpus.
type SentimentSummary struct {
	Positive           int     `json:"positive"`
	Negative           int     `json:"negative"`
	Neutral            int     `json:"neutral"`
	PositivePercentage float64 `json:"positive_percentage"`
	NegativePercentage float64 `json:"negative_percentage"`
	NeutralPercentage  float64 `json:"neutral_percentage"`
	Total              int     `json:"total"`
}

// ToxicitySummary aggregates toxicity counts across a corpus.
type ToxicitySummary struct {
	ToxicCount   int     `json:"toxic_count"`
	CleanCount   int     `json:"clean_count"`
	ToxicityRate float64 `json:"toxicity_rate"`
}

// ToxicExcerpt is a short record of one high-toxicity item, kept with the
// persisted report as a summary of the worst content found.
type ToxicExcerpt struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Report is the terminal aggregate of one pipeline run.
//
// Invariants: ItemsAnalyzed == len(Items); the sentiment counts and the
// toxic/clean counts each sum to ItemsAnalyzed.
type Report struct {
	ID               string           `json:"id"`
	Query            string           `json:"query"`
	UserID           string           `json:"uid,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
	ItemsAnalyzed    int              `json:"items_analyzed"`
	SentimentSummary SentimentSummary `json:"sentiment_summary"`
	ToxicitySummary  ToxicitySummary  `json:"toxicity_summary"`
	Topics           []Topic          `json:"topics"`
	Items            []AnnotatedItem  `json:"items"`
	TopToxic         []ToxicExcerpt   `json:"top_toxic,omitempty"`
}

// User is an account record managed alongside analysis, unrelated to the
// pipeline itself.
type User struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
