package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"railpulse/internal/providers"
	"railpulse/internal/sentiment"
	"railpulse/internal/services"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// CountByLevel returns how many entries were recorded at the given level.
func (m *MockLogger) CountByLevel(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockScorer implements sentiment.ScorerInterface with injectable behavior.
type MockScorer struct {
	mu           sync.Mutex
	ScoreFn      func(ctx context.Context, text string) (sentiment.Scores, error)
	ScoreBatchFn func(ctx context.Context, texts []string) ([]sentiment.Scores, error)
	ScoreCalls   []string
	BatchCalls   [][]string
}

func (m *MockScorer) Score(ctx context.Context, text string) (sentiment.Scores, error) {
	m.mu.Lock()
	m.ScoreCalls = append(m.ScoreCalls, text)
	m.mu.Unlock()
	if m.ScoreFn != nil {
		return m.ScoreFn(ctx, text)
	}
	return sentiment.Scores{Neutral: 1}, nil
}

func (m *MockScorer) ScoreBatch(ctx context.Context, texts []string) ([]sentiment.Scores, error) {
	m.mu.Lock()
	m.BatchCalls = append(m.BatchCalls, texts)
	m.mu.Unlock()
	if m.ScoreBatchFn != nil {
		return m.ScoreBatchFn(ctx, texts)
	}
	out := make([]sentiment.Scores, len(texts))
	for i := range out {
		out[i] = sentiment.Scores{Neutral: 1}
	}
	return out, nil
}

// KeywordScorer returns a ScoreBatchFn mapping texts to scores by
// keyword, so classification tests can drive every bucket without a
// live endpoint.
func KeywordScorer() func(ctx context.Context, texts []string) ([]sentiment.Scores, error) {
	return func(_ context.Context, texts []string) ([]sentiment.Scores, error) {
		out := make([]sentiment.Scores, len(texts))
		for i, text := range texts {
			switch {
			case strings.Contains(text, "love"):
				out[i] = sentiment.Scores{Positive: 0.95, Neutral: 0.03, Negative: 0.02}
			case strings.Contains(text, "good"):
				out[i] = sentiment.Scores{Positive: 0.7, Neutral: 0.2, Negative: 0.1}
			case strings.Contains(text, "bad"):
				out[i] = sentiment.Scores{Positive: 0.1, Neutral: 0.2, Negative: 0.7}
			case strings.Contains(text, "terrible"):
				out[i] = sentiment.Scores{Positive: 0.02, Neutral: 0.08, Negative: 0.9}
			default:
				out[i] = sentiment.Scores{Positive: 0.1, Neutral: 0.8, Negative: 0.1}
			}
		}
		return out, nil
	}
}

// MockPipelineService implements services.PipelineServiceInterface.
type MockPipelineService struct {
	mu           sync.Mutex
	IngestCalls  [][]services.IncomingTweet
	IngestFn     func(ctx context.Context, posts []services.IncomingTweet) (*services.IngestReport, error)
	ClassifyFn   func(ctx context.Context, text string) sentiment.Result
	ClassifyArgs []string
}

func (m *MockPipelineService) Ingest(ctx context.Context, posts []services.IncomingTweet) (*services.IngestReport, error) {
	m.mu.Lock()
	m.IngestCalls = append(m.IngestCalls, posts)
	m.mu.Unlock()
	if m.IngestFn != nil {
		return m.IngestFn(ctx, posts)
	}
	return &services.IngestReport{Received: len(posts), Inserted: len(posts)}, nil
}

func (m *MockPipelineService) ClassifyText(ctx context.Context, text string) sentiment.Result {
	m.mu.Lock()
	m.ClassifyArgs = append(m.ClassifyArgs, text)
	m.mu.Unlock()
	if m.ClassifyFn != nil {
		return m.ClassifyFn(ctx, text)
	}
	return sentiment.Neutral()
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu            sync.Mutex
	Requests      int
	CacheHits     int
	CacheMisses   int
	ClassifyCalls map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{ClassifyCalls: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(endpoint string, duration time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncClassifyCalls(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClassifyCalls[outcome]++
}

func (m *MockMetrics) ObserveClassifyDuration(duration time.Duration) {}

func (m *MockMetrics) ObserveArchiveDuration(duration time.Duration) {}
