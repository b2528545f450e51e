package sentiment

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railpulse/internal/providers"
	"railpulse/internal/structures"
)

// local mocks to avoid an import cycle with testutil

type classifierTestLogger struct{}

func (m *classifierTestLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *classifierTestLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *classifierTestLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *classifierTestLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *classifierTestLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *classifierTestLogger) Close()                                                  {}

type classifierTestMetrics struct{}

func (m *classifierTestMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *classifierTestMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *classifierTestMetrics) IncCacheHits()                                    {}
func (m *classifierTestMetrics) IncCacheMisses()                                  {}
func (m *classifierTestMetrics) IncClassifyCalls(_ string)                        {}
func (m *classifierTestMetrics) ObserveClassifyDuration(_ time.Duration)          {}
func (m *classifierTestMetrics) ObserveArchiveDuration(_ time.Duration)           {}

type testScorer struct {
	mu         sync.Mutex
	scoreFn    func(text string) (Scores, error)
	batchFn    func(texts []string) ([]Scores, error)
	batchCalls [][]string
}

func (s *testScorer) Score(_ context.Context, text string) (Scores, error) {
	if s.scoreFn != nil {
		return s.scoreFn(text)
	}
	return Scores{Neutral: 1}, nil
}

func (s *testScorer) ScoreBatch(_ context.Context, texts []string) ([]Scores, error) {
	s.mu.Lock()
	s.batchCalls = append(s.batchCalls, texts)
	s.mu.Unlock()
	if s.batchFn != nil {
		return s.batchFn(texts)
	}
	out := make([]Scores, len(texts))
	for i := range out {
		out[i] = Scores{Neutral: 1}
	}
	return out, nil
}

func classifierConfig(batchSize, concurrency int) *structures.Config {
	return &structures.Config{
		Sentiment: structures.SentimentConfig{
			BatchSize:   batchSize,
			Concurrency: concurrency,
		},
	}
}

func newTestClassifier(scorer ScorerInterface, batchSize, concurrency int) ClassifierInterface {
	return NewClassifier(classifierConfig(batchSize, concurrency), scorer, &classifierTestLogger{}, &classifierTestMetrics{})
}

func TestMapScores_ThresholdRules(t *testing.T) {
	tests := []struct {
		name      string
		scores    Scores
		wantScore int
		wantConf  float64
	}{
		{"strong positive", Scores{Positive: 0.81, Neutral: 0.1, Negative: 0.09}, 5, 0.81},
		{"positive", Scores{Positive: 0.7, Neutral: 0.2, Negative: 0.1}, 4, 0.7},
		{"neutral", Scores{Positive: 0.1, Neutral: 0.8, Negative: 0.1}, 3, 0.8},
		{"negative", Scores{Positive: 0.1, Neutral: 0.2, Negative: 0.7}, 2, 0.7},
		{"strong negative fallthrough", Scores{Positive: 0.3, Neutral: 0.3, Negative: 0.4}, 1, 0.4},
		{"boundary positive not strong", Scores{Positive: 0.8, Neutral: 0.1, Negative: 0.1}, 4, 0.8},
		{"boundary neutral not matched", Scores{Positive: 0.2, Neutral: 0.6, Negative: 0.2}, 1, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapScores(tt.scores)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantConf, got.Confidence)
		})
	}
}

func TestClassify_EmptyTextSkipsRemoteCall(t *testing.T) {
	scorer := &testScorer{
		scoreFn: func(_ string) (Scores, error) {
			t.Fatal("remote scorer must not be called for blank text")
			return Scores{}, nil
		},
	}
	c := newTestClassifier(scorer, 10, 1)

	assert.Equal(t, Neutral(), c.Classify(context.Background(), ""))
	assert.Equal(t, Neutral(), c.Classify(context.Background(), "   \t\n"))
}

func TestClassify_MapsRemoteScores(t *testing.T) {
	scorer := &testScorer{
		scoreFn: func(_ string) (Scores, error) {
			return Scores{Positive: 0.9, Neutral: 0.05, Negative: 0.05}, nil
		},
	}
	c := newTestClassifier(scorer, 10, 1)

	got := c.Classify(context.Background(), "love the new trains")
	assert.Equal(t, 5, got.Score)
	assert.Equal(t, 0.9, got.Confidence)
}

func TestClassify_ErrorFallsBackToNeutral(t *testing.T) {
	scorer := &testScorer{
		scoreFn: func(_ string) (Scores, error) {
			return Scores{}, errors.New("service down")
		},
	}
	c := newTestClassifier(scorer, 10, 1)

	assert.Equal(t, Neutral(), c.Classify(context.Background(), "anything"))
}

func TestClassifyBatch_EmptyInput(t *testing.T) {
	c := newTestClassifier(&testScorer{}, 10, 1)
	got := c.ClassifyBatch(context.Background(), []string{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClassifyBatch_PreservesOrder(t *testing.T) {
	scorer := &testScorer{
		batchFn: func(texts []string) ([]Scores, error) {
			out := make([]Scores, len(texts))
			for i, text := range texts {
				// score encodes the input so order can be checked
				n, _ := strconv.Atoi(text)
				out[i] = Scores{Positive: 0.9, Neutral: float64(n)}
			}
			return out, nil
		},
	}
	c := newTestClassifier(scorer, 10, 4)

	texts := make([]string, 25)
	for i := range texts {
		texts[i] = strconv.Itoa(i)
	}
	got := c.ClassifyBatch(context.Background(), texts)

	require.Len(t, got, 25)
	for i, r := range got {
		assert.Equal(t, 5, r.Score, "position %d", i)
	}
}

func TestClassifyBatch_ChunksRespectBatchSize(t *testing.T) {
	scorer := &testScorer{}
	c := newTestClassifier(scorer, 10, 1)

	texts := make([]string, 25)
	for i := range texts {
		texts[i] = "text " + strconv.Itoa(i)
	}
	c.ClassifyBatch(context.Background(), texts)

	require.Len(t, scorer.batchCalls, 3)
	total := 0
	for _, call := range scorer.batchCalls {
		assert.LessOrEqual(t, len(call), 10)
		total += len(call)
	}
	assert.Equal(t, 25, total)
}

func TestClassifyBatch_BlankEntriesNotDispatched(t *testing.T) {
	scorer := &testScorer{
		batchFn: func(texts []string) ([]Scores, error) {
			out := make([]Scores, len(texts))
			for i := range out {
				out[i] = Scores{Negative: 0.9}
			}
			return out, nil
		},
	}
	c := newTestClassifier(scorer, 10, 1)

	got := c.ClassifyBatch(context.Background(), []string{"bad service", "", "  ", "worse service"})

	require.Len(t, got, 4)
	assert.Equal(t, 2, got[0].Score)
	assert.Equal(t, Neutral(), got[1])
	assert.Equal(t, Neutral(), got[2])
	assert.Equal(t, 2, got[3].Score)

	require.Len(t, scorer.batchCalls, 1)
	assert.Equal(t, []string{"bad service", "worse service"}, scorer.batchCalls[0])
}

func TestClassifyBatch_AllBlank(t *testing.T) {
	scorer := &testScorer{
		batchFn: func(_ []string) ([]Scores, error) {
			t.Fatal("no chunk should be dispatched")
			return nil, nil
		},
	}
	c := newTestClassifier(scorer, 10, 1)

	got := c.ClassifyBatch(context.Background(), []string{"", "  "})
	assert.Equal(t, []Result{Neutral(), Neutral()}, got)
}

func TestClassifyBatch_AnyChunkFailureDegradesAll(t *testing.T) {
	var calls int
	var mu sync.Mutex
	scorer := &testScorer{
		batchFn: func(texts []string) ([]Scores, error) {
			mu.Lock()
			calls++
			failing := calls == 2
			mu.Unlock()
			if failing {
				return nil, errors.New("boom")
			}
			out := make([]Scores, len(texts))
			for i := range out {
				out[i] = Scores{Positive: 0.95}
			}
			return out, nil
		},
	}
	c := newTestClassifier(scorer, 10, 1)

	texts := make([]string, 25)
	for i := range texts {
		texts[i] = "text " + strconv.Itoa(i)
	}
	got := c.ClassifyBatch(context.Background(), texts)

	require.Len(t, got, 25)
	for i, r := range got {
		assert.Equal(t, Neutral(), r, "position %d", i)
	}
}

func TestNewClassifier_ClampsBatchSize(t *testing.T) {
	scorer := &testScorer{}
	c := NewClassifier(classifierConfig(50, 0), scorer, &classifierTestLogger{}, &classifierTestMetrics{})

	texts := make([]string, 15)
	for i := range texts {
		texts[i] = "t"
	}
	c.ClassifyBatch(context.Background(), texts)

	for _, call := range scorer.batchCalls {
		assert.LessOrEqual(t, len(call), MaxBatchSize)
	}
}
