// Package llm provides the completion collaborator used by the agents. The
// collaborator is optional: construction with provider "none" yields no
// client, and every caller carries a deterministic fallback path.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/config"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm/geminiapi"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm/openaiapi"
)

// Client executes a single synchronous completion request.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type client struct {
	inner   completer
	timeout time.Duration
	retries int
}

// New constructs a collaborator client for the configured provider. Provider
// "none" returns (nil, nil): callers must treat a nil client as unavailable
// and take their fallback branch.
func New(cfg config.LLMConfig) (Client, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var inner completer
	var err error
	switch strings.TrimSpace(cfg.Provider) {
	case config.ProviderNone, "":
		return nil, nil
	case config.ProviderOpenAI:
		inner, err = openaiapi.NewClient(openaiapi.Config{
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			APIKeyEnv: cfg.APIKeyEnv,
			Timeout:   timeout,
		})
	case config.ProviderGemini:
		inner, err = geminiapi.NewClient(geminiapi.Config{
			Model:     cfg.Model,
			APIKeyEnv: cfg.APIKeyEnv,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &client{inner: inner, timeout: timeout, retries: cfg.MaxRetries}, nil
}

// Complete runs the request with a bounded timeout and at most one retry.
// There is never more than one in-flight call per request.
func (c *client) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		out, err := c.inner.Complete(callCtx, prompt)
		cancel()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < c.retries {
			log.Warn().Err(err).Msg("completion failed, retrying once")
		}
	}
	return "", lastErr
}
