package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"convosense/internal/domain/analysis"
)

// RemoteSentimentClassifier calls a hosted inference endpoint that serves a
// sentiment model with a fixed input window. The endpoint accepts a batch of
// texts and returns one label/score pair per text, in order.
type RemoteSentimentClassifier struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

type sentimentRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewRemoteSentimentClassifier creates a classifier backed by the given
// inference endpoint. The token is sent as a bearer credential when set.
func NewRemoteSentimentClassifier(endpoint, token string) *RemoteSentimentClassifier {
	return &RemoteSentimentClassifier{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// Name identifies the classifier variant
func (c *RemoteSentimentClassifier) Name() string {
	return "sentiment-remote"
}

// Available reports whether an endpoint is configured
func (c *RemoteSentimentClassifier) Available() bool {
	return c.endpoint != ""
}

// ClassifyBatch sends all texts to the inference endpoint in one call and
// returns a result per text, order preserved.
func (c *RemoteSentimentClassifier) ClassifyBatch(ctx context.Context, texts []string) ([]analysis.SentimentResult, error) {
	if len(texts) == 0 {
		return []analysis.SentimentResult{}, nil
	}

	request := make([]sentimentRequest, len(texts))
	for i, text := range texts {
		request[i] = sentimentRequest{Text: text}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sentiment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create sentiment request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sentiment endpoint request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sentiment endpoint returned status code %d", resp.StatusCode)
	}

	var scored []sentimentResponse
	if err := json.NewDecoder(resp.Body).Decode(&scored); err != nil {
		return nil, fmt.Errorf("failed to decode sentiment response: %w", err)
	}

	if len(scored) != len(texts) {
		return nil, fmt.Errorf("sentiment endpoint returned %d results for %d texts", len(scored), len(texts))
	}

	results := make([]analysis.SentimentResult, len(scored))
	for i, s := range scored {
		results[i] = analysis.SentimentResult{
			Label:      s.Label,
			Confidence: round4(s.Score),
		}
	}

	return results, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
