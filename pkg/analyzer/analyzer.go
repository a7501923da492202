// Package analyzer sequences one analysis request: validation, cache lookup,
// offline guard, remote call, tolerant parse, cache write.
package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/dtnitsch/termscan/models"
	"github.com/dtnitsch/termscan/pkg/cache"
	"github.com/dtnitsch/termscan/pkg/gemini"
	"github.com/dtnitsch/termscan/pkg/netwatch"
	"github.com/dtnitsch/termscan/pkg/prompt"
)

// MinContentChars is the smallest document worth sending to the backend.
const MinContentChars = 100

// Backend produces raw model text for a prompt. *gemini.Client satisfies it;
// tests substitute their own.
type Backend interface {
	Generate(ctx context.Context, promptText string) (string, error)
}

// Analyzer orchestrates analysis requests. Cache and Monitor are optional;
// a nil Cache disables caching and a nil Monitor skips the offline guard.
type Analyzer struct {
	backend Backend
	cache   *cache.Store
	monitor *netwatch.Monitor
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an orchestrator around the given collaborators.
func New(backend Backend, store *cache.Store, monitor *netwatch.Monitor, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		backend: backend,
		cache:   store,
		monitor: monitor,
		logger:  logger,
		now:     time.Now,
	}
}

// Analyze returns a risk summary for the given document content. Content
// shorter than MinContentChars fails validation locally; a fresh cached
// result for (pageKey, language) short-circuits the remote call; an offline
// monitor fails fast. Remote failures are not retried here. A credential
// problem surfaces as gemini.ErrNoAPIKey; every other remote failure wraps
// into *BackendError.
func (a *Analyzer) Analyze(ctx context.Context, pageKey, content, language string) (models.AnalysisResult, error) {
	if utf8.RuneCountInString(content) < MinContentChars {
		return models.AnalysisResult{}, ErrContentTooShort
	}

	if a.cache != nil {
		result, ok, err := a.cache.Get(pageKey, language)
		if err != nil {
			a.logger.Warn("cache read failed", "page_key", pageKey, "error", err)
		} else if ok {
			a.logger.Info("cache hit", "page_key", pageKey, "language", language)
			return result, nil
		}
	}

	if a.monitor != nil && !a.monitor.Online() {
		return models.AnalysisResult{}, ErrOffline
	}

	raw, err := a.backend.Generate(ctx, prompt.Build(content, language))
	if err != nil {
		if errors.Is(err, gemini.ErrNoAPIKey) {
			return models.AnalysisResult{}, err
		}
		var statusErr *gemini.StatusError
		if errors.As(err, &statusErr) {
			return models.AnalysisResult{}, &BackendError{Status: statusErr.Code, Err: err}
		}
		return models.AnalysisResult{}, &BackendError{Err: err}
	}

	result := prompt.Parse(raw)
	result.Timestamp = a.now()

	if a.cache != nil {
		if err := a.cache.Put(pageKey, content, result, language); err != nil {
			// Cache write failures are not fatal to the result.
			a.logger.Warn("cache write failed", "page_key", pageKey, "error", err)
		}
	}

	a.logger.Info("analysis complete",
		"page_key", pageKey,
		"language", language,
		"risk_level", result.RiskLevel,
	)
	return result, nil
}
