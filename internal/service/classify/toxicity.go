package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"convosense/internal/domain/analysis"
)

// perspectiveToxicThreshold is calibrated to the Perspective API score
// scale. It is not comparable to the keyword fallback's threshold; the two
// classifiers score on different scales.
const perspectiveToxicThreshold = 0.7

// perspectiveInputLimit is the maximum comment length the API accepts.
const perspectiveInputLimit = 20000

// PerspectiveClassifier scores toxicity through the Google Perspective API.
// The API is rate limited to roughly one request per second on the free
// tier, which is why the classifier contract is single-text; the batch
// runner paces sequential calls.
type PerspectiveClassifier struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

type perspectiveRequest struct {
	Comment             perspectiveComment             `json:"comment"`
	Languages           []string                       `json:"languages"`
	RequestedAttributes map[string]map[string]struct{} `json:"requestedAttributes"`
}

type perspectiveComment struct {
	Text string `json:"text"`
}

type perspectiveResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
}

// NewPerspectiveClassifier creates a toxicity classifier backed by the
// Perspective API.
func NewPerspectiveClassifier(apiKey string) *PerspectiveClassifier {
	return &PerspectiveClassifier{
		apiKey: apiKey,
		apiURL: "https://commentanalyzer.googleapis.com/v1alpha1/comments:analyze",
		httpClient: &http.Client{
			Timeout: time.Second * 5,
		},
	}
}

// Name identifies the classifier variant
func (c *PerspectiveClassifier) Name() string {
	return "toxicity-perspective"
}

// Available reports whether an API key is configured
func (c *PerspectiveClassifier) Available() bool {
	return c.apiKey != ""
}

// Classify scores one text across the six requested attributes.
func (c *PerspectiveClassifier) Classify(ctx context.Context, text string) (analysis.ToxicityResult, error) {
	if len(text) > perspectiveInputLimit {
		text = text[:perspectiveInputLimit]
	}

	request := perspectiveRequest{
		Comment:   perspectiveComment{Text: text},
		Languages: []string{"en"},
		RequestedAttributes: map[string]map[string]struct{}{
			"TOXICITY":        {},
			"SEVERE_TOXICITY": {},
			"IDENTITY_ATTACK": {},
			"INSULT":          {},
			"PROFANITY":       {},
			"THREAT":          {},
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return analysis.ToxicityResult{}, fmt.Errorf("failed to encode toxicity request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", c.apiURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return analysis.ToxicityResult{}, fmt.Errorf("failed to create toxicity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return analysis.ToxicityResult{}, fmt.Errorf("toxicity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return analysis.ToxicityResult{}, fmt.Errorf("perspective API returned status code %d", resp.StatusCode)
	}

	var scored perspectiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&scored); err != nil {
		return analysis.ToxicityResult{}, fmt.Errorf("failed to decode toxicity response: %w", err)
	}

	toxicity := round4(scored.attribute("TOXICITY"))

	return analysis.ToxicityResult{
		Toxicity:       toxicity,
		SevereToxicity: round4(scored.attribute("SEVERE_TOXICITY")),
		IdentityAttack: round4(scored.attribute("IDENTITY_ATTACK")),
		Insult:         round4(scored.attribute("INSULT")),
		Profanity:      round4(scored.attribute("PROFANITY")),
		Threat:         round4(scored.attribute("THREAT")),
		IsToxic:        toxicity > perspectiveToxicThreshold,
	}, nil
}

func (r perspectiveResponse) attribute(name string) float64 {
	return r.AttributeScores[name].SummaryScore.Value
}
