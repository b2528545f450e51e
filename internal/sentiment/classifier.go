package sentiment

import (
	"context"
	"strings"
	"sync"
	"time"

	"railpulse/internal/models"
	"railpulse/internal/providers"
	"railpulse/internal/structures"
)

// Result is a classified text: a discrete score on the 1–5 scale and
// the confidence of the winning raw score.
type Result struct {
	Score      int     `json:"score"`
	Confidence float64 `json:"confidence"`
}

// Neutral is the fallback result: classification failures must never
// block ingestion, so anything that goes wrong resolves to it.
func Neutral() Result {
	return Result{Score: models.ScoreNeutral, Confidence: 0.0}
}

type ClassifierInterface interface {
	Classify(ctx context.Context, text string) Result
	ClassifyBatch(ctx context.Context, texts []string) []Result
}

// Classifier maps raw positive/neutral/negative scores onto the
// discrete scale. The mapping rules are evaluated in fixed priority
// order, first match wins.
type Classifier struct {
	scorer      ScorerInterface
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	batchSize   int
	concurrency int
}

func NewClassifier(conf *structures.Config, scorer ScorerInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) ClassifierInterface {
	batchSize := conf.Sentiment.BatchSize
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}
	concurrency := conf.Sentiment.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Classifier{
		scorer:      scorer,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// mapScores applies the threshold rules to one raw score triple.
func mapScores(s Scores) Result {
	switch {
	case s.Positive > 0.8:
		return Result{Score: 5, Confidence: s.Positive}
	case s.Positive > 0.6:
		return Result{Score: 4, Confidence: s.Positive}
	case s.Neutral > 0.6:
		return Result{Score: 3, Confidence: s.Neutral}
	case s.Negative > 0.6:
		return Result{Score: 2, Confidence: s.Negative}
	default:
		return Result{Score: 1, Confidence: s.Negative}
	}
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Classify scores a single text. Empty text short-circuits to the
// neutral result without a remote call.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	if isBlank(text) {
		return Neutral()
	}

	start := time.Now()
	scores, err := c.scorer.Score(ctx, text)
	c.metrics.ObserveClassifyDuration(time.Since(start))
	if err != nil {
		c.logger.Errorf(providers.TypeClassify, "Error analyzing sentiment: %s", err)
		c.metrics.IncClassifyCalls("fallback")
		return Neutral()
	}
	c.metrics.IncClassifyCalls("success")
	return mapScores(scores)
}

type chunk struct {
	positions []int
	texts     []string
}

// ClassifyBatch scores texts preserving input order and length. Blank
// entries resolve to neutral without dispatch. Chunks are dispatched
// with bounded concurrency; if any chunk fails the entire batch
// degrades to neutral.
func (c *Classifier) ClassifyBatch(ctx context.Context, texts []string) []Result {
	if len(texts) == 0 {
		return []Result{}
	}

	results := make([]Result, len(texts))
	for i := range results {
		results[i] = Neutral()
	}

	chunks := c.buildChunks(texts)
	if len(chunks) == 0 {
		return results
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		failed    bool
		semaphore = make(chan struct{}, c.concurrency)
	)

	for _, ck := range chunks {
		wg.Add(1)
		go func(ck chunk) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			start := time.Now()
			scores, err := c.scorer.ScoreBatch(ctx, ck.texts)
			c.metrics.ObserveClassifyDuration(time.Since(start))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if !failed {
					c.logger.Errorf(providers.TypeClassify, "Error analyzing batch sentiment: %s", err)
				}
				failed = true
				return
			}
			for i, s := range scores {
				results[ck.positions[i]] = mapScores(s)
			}
		}(ck)
	}
	wg.Wait()

	if failed {
		c.metrics.IncClassifyCalls("fallback")
		for i := range results {
			results[i] = Neutral()
		}
		return results
	}
	c.metrics.IncClassifyCalls("success")
	return results
}

// buildChunks filters out blank entries and groups the rest into
// consecutive chunks of at most batchSize, each entry tagged with its
// original position.
func (c *Classifier) buildChunks(texts []string) []chunk {
	var chunks []chunk
	current := chunk{}
	for i, text := range texts {
		if isBlank(text) {
			continue
		}
		current.positions = append(current.positions, i)
		current.texts = append(current.texts, text)
		if len(current.texts) == c.batchSize {
			chunks = append(chunks, current)
			current = chunk{}
		}
	}
	if len(current.texts) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
