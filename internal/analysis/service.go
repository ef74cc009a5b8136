package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resumatch-gateway/internal/cache"
	"resumatch-gateway/internal/extract"
	"resumatch-gateway/internal/llm"
	"resumatch-gateway/internal/metrics"
	"resumatch-gateway/pkg/logging/logging"

	"go.uber.org/zap"
)

// Client-input failures. The handler maps these to 400; everything
// else coming out of Analyze is a server/upstream failure.
var (
	ErrEmptyDocument      = errors.New("analysis: empty document")
	ErrUnreadableDocument = errors.New("analysis: no extractable text in document")
)

// IsClientError reports whether err is the caller's fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyDocument) || errors.Is(err, ErrUnreadableDocument)
}

// Analyzer orchestrates one analysis request: fingerprint, cache
// lookup, and on a miss the extract/request/normalize/cache-write
// sequence. The cache is best-effort throughout; only the upstream
// call and the normalization can fail a request past the input checks.
type Analyzer struct {
	cache cache.ResultCache
	ttl   time.Duration
	llm   llm.Client
	model string

	// extractText is swapped out in tests; production always uses the
	// PDF extractor.
	extractText func(ctx context.Context, doc []byte) string
}

func NewAnalyzer(c cache.ResultCache, ttl time.Duration, llmClient llm.Client, model string) *Analyzer {
	return &Analyzer{
		cache:       c,
		ttl:         ttl,
		llm:         llmClient,
		model:       model,
		extractText: extract.Text,
	}
}

// Analyze produces the compatibility report for one (document, job
// description) pair. Reports served from the cache carry Cached=true;
// fresh reports are stored without the flag before being returned.
func (a *Analyzer) Analyze(ctx context.Context, doc []byte, jd string) (*Report, error) {
	logger := logging.L(ctx)

	if len(doc) == 0 {
		return nil, ErrEmptyDocument
	}

	key := cache.NewFingerprint(doc, jd).String()

	if report, ok := a.lookup(ctx, key); ok {
		report.Cached = true
		metrics.AnalysesTotal.WithLabelValues("hit").Inc()
		return report, nil
	}

	resumeText := a.extractText(ctx, doc)
	if strings.TrimSpace(resumeText) == "" {
		metrics.AnalysesTotal.WithLabelValues("unreadable").Inc()
		return nil, ErrUnreadableDocument
	}

	raw, err := a.request(ctx, resumeText, jd)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("upstream_error").Inc()
		return nil, err
	}

	report, err := Normalize(raw)
	if err != nil {
		// The raw text is logged for diagnosis, never returned.
		logger.Error("model output not parseable",
			zap.String("raw_preview", preview(raw, 300)),
			zap.Error(err),
		)
		metrics.AnalysesTotal.WithLabelValues("malformed_output").Inc()
		return nil, err
	}

	a.store(ctx, key, report)

	metrics.AnalysesTotal.WithLabelValues("miss").Inc()
	return report, nil
}

// lookup is the fail-open cache read: backend errors and corrupt
// entries are logged and treated as misses.
func (a *Analyzer) lookup(ctx context.Context, key string) (*Report, bool) {
	data, hit, err := a.cache.Get(ctx, key)
	if err != nil {
		logging.L(ctx).Warn("cache get failed, treating as miss", zap.Error(err))
		return nil, false
	}
	if !hit {
		return nil, false
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		logging.L(ctx).Warn("corrupt cache entry, treating as miss",
			zap.String("cache_key", key),
			zap.Error(err),
		)
		return nil, false
	}

	return &report, true
}

// request sends the structured-output prompt upstream and returns the
// first completion choice.
func (a *Analyzer) request(ctx context.Context, resumeText, jd string) (string, error) {
	req := &llm.ChatRequest{
		Model: a.model,
		Messages: []llm.ChatMessage{
			{Role: llm.RoleUser, Content: buildPrompt(resumeText, jd)},
		},
		// Low temperature keeps scoring reproducible.
		Temperature: 0.1,
	}

	resp, err := a.llm.ChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("analysis request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("analysis request: empty completion")
	}

	return resp.Choices[0].Message.Content, nil
}

// store is the fail-silent cache write. The report is marshaled before
// the Cached flag is ever set, so the flag is never persisted.
func (a *Analyzer) store(ctx context.Context, key string, report *Report) {
	data, err := json.Marshal(report)
	if err != nil {
		logging.L(ctx).Warn("marshal report for cache failed", zap.Error(err))
		return
	}
	if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
		logging.L(ctx).Warn("cache set failed", zap.Error(err))
	}
}

func preview(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
