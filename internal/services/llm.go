package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"qahiring/cv-analyzer/internal/config"
)

// ErrMissingAPIKey is returned when the selected provider has no key.
var ErrMissingAPIKey = errors.New("LLM API key is not configured")

// LLMProvider generates a completion for a single prompt.
type LLMProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder is implemented by providers that can embed text for retrieval.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewLLMProvider builds the provider named in cfg.Provider.
func NewLLMProvider(ctx context.Context, cfg config.LLMConfig) (LLMProvider, error) {
	if cfg.APIKey() == "" {
		return nil, ErrMissingAPIKey
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	case config.ProviderGemini:
		return NewGeminiProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

type throttledProvider struct {
	next         LLMProvider
	limiter      *rate.Limiter
	maxAttempts  int
	initialDelay time.Duration
}

// NewThrottledProvider spaces calls to next at requestsPerMinute and retries
// failures with exponential backoff. A non-positive rate disables throttling.
func NewThrottledProvider(next LLMProvider, requestsPerMinute, maxAttempts int, initialDelay time.Duration) LLMProvider {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &throttledProvider{
		next:         next,
		limiter:      rate.NewLimiter(limit, 1),
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
	}
}

func (p *throttledProvider) Name() string {
	return p.next.Name()
}

func (p *throttledProvider) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	delay := p.initialDelay

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		text, err := p.next.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		if attempt < p.maxAttempts {
			log.Printf("⚠️  %s attempt %d failed: %v. Retrying in %s...\n", p.next.Name(), attempt, err, delay)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", p.maxAttempts, lastErr)
}
