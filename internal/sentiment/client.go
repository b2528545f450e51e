package sentiment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	json "github.com/goccy/go-json"

	"railpulse/internal/structures"
)

// MaxBatchSize is the hard cap the scoring API puts on a single
// batch call.
const MaxBatchSize = 10

// Scores are the raw confidence values returned by the scoring API.
// They are non-negative and need not sum to 1.
type Scores struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sentiment api returned status: %d", e.StatusCode)
}

// ScorerInterface is the remote scoring dependency consumed by the
// classifier. ScoreBatch accepts at most MaxBatchSize texts.
type ScorerInterface interface {
	Score(ctx context.Context, text string) (Scores, error)
	ScoreBatch(ctx context.Context, texts []string) ([]Scores, error)
}

// Client talks to the remote text analytics service. Transient
// failures are retried a bounded number of times before the error is
// handed to the caller.
type Client struct {
	endpoint string
	key      string
	client   *http.Client
	executor failsafe.Executor[[]Scores]
}

func NewClient(conf *structures.Config) ScorerInterface {
	retries := conf.Sentiment.MaxRetries
	if retries < 0 {
		retries = 0
	}

	retry := retrypolicy.NewBuilder[[]Scores]().
		WithMaxRetries(retries).
		WithBackoff(100*time.Millisecond, time.Second).
		ReturnLastFailure().
		Build()

	return &Client{
		endpoint: conf.Sentiment.Endpoint,
		key:      conf.Sentiment.Key,
		client:   &http.Client{Timeout: conf.Sentiment.Timeout},
		executor: failsafe.With(retry),
	}
}

type scoreDocument struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type scoreRequest struct {
	Documents []scoreDocument `json:"documents"`
}

type scoredDocument struct {
	ID     string `json:"id"`
	Scores Scores `json:"confidenceScores"`
}

type scoreResponse struct {
	Documents []scoredDocument `json:"documents"`
}

func (c *Client) Score(ctx context.Context, text string) (Scores, error) {
	results, err := c.ScoreBatch(ctx, []string{text})
	if err != nil {
		return Scores{}, err
	}
	return results[0], nil
}

func (c *Client) ScoreBatch(ctx context.Context, texts []string) ([]Scores, error) {
	if len(texts) == 0 {
		return []Scores{}, nil
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds limit of %d", len(texts), MaxBatchSize)
	}

	return c.executor.GetWithExecution(func(_ failsafe.Execution[[]Scores]) ([]Scores, error) {
		return c.scoreBatchOnce(ctx, texts)
	})
}

func (c *Client) scoreBatchOnce(ctx context.Context, texts []string) ([]Scores, error) {
	docs := make([]scoreDocument, len(texts))
	for i, text := range texts {
		docs[i] = scoreDocument{ID: strconv.Itoa(i), Text: text}
	}

	body, err := json.Marshal(scoreRequest{Documents: docs})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var parsed scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("malformed scoring response: %w", err)
	}
	if len(parsed.Documents) != len(texts) {
		return nil, fmt.Errorf("scoring response has %d documents, expected %d", len(parsed.Documents), len(texts))
	}

	// Responses are keyed by document id; put them back in request order.
	results := make([]Scores, len(texts))
	for _, doc := range parsed.Documents {
		idx, err := strconv.Atoi(doc.ID)
		if err != nil || idx < 0 || idx >= len(texts) {
			return nil, fmt.Errorf("scoring response has unknown document id %q", doc.ID)
		}
		results[idx] = doc.Scores
	}
	return results, nil
}
