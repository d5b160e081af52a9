package pipeline

import (
	"context"
	"time"

	"github.com/jmylchreest/docuscout/pkg/llm"
)

// defaultCallTimeout bounds a single LM call attempt, independent of the
// retry schedule wrapped around it.
const defaultCallTimeout = 60 * time.Second

// RetryingProvider wraps an llm.Provider so every Complete call is retried
// with jittered exponential backoff. Both the filter and extractor stages
// are handed a RetryingProvider-wrapped provider, so a single retry policy
// governs both instead of each stage implementing its own.
type RetryingProvider struct {
	inner       llm.Provider
	retry       retryConfig
	callTimeout time.Duration
}

// WrapProvider wraps inner with the default retry policy. A nil inner
// passes through as nil so an optional provider (the filter stage's, absent
// when filtering is disabled) can be wrapped unconditionally.
func WrapProvider(inner llm.Provider) llm.Provider {
	if inner == nil {
		return nil
	}
	return &RetryingProvider{inner: inner, retry: defaultRetryConfig(), callTimeout: defaultCallTimeout}
}

func (p *RetryingProvider) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	var resp llm.CompletionResponse
	err := withRetry(ctx, p.retry, func() error {
		callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		defer cancel()
		var callErr error
		resp, callErr = p.inner.Complete(callCtx, req)
		return callErr
	})
	return resp, err
}

func (p *RetryingProvider) Name() string { return p.inner.Name() }
