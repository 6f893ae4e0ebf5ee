// Package llm wraps the text-generation services used to write tests.
//
// Every provider is reduced to a single synchronous call: a prompt goes in and
// the generated text comes out. No retry or timeout is applied here; callers
// control cancellation through the context.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrNoContent       = errors.New("no content generated")
)

// Options selects and configures a provider.
type Options struct {
	Provider string
	Model    string
	APIKey   string

	// BaseURL overrides the endpoint of OpenAI compatible services.
	BaseURL string
}

// CredentialEnv returns the environment variable holding the API key of provider.
func CredentialEnv(provider string) (string, error) {
	switch provider {
	case ProviderGemini:
		return "GEMINI_API_KEY", nil
	case ProviderOpenAI:
		return "OPENAI_API_KEY", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
}

// DefaultModel returns the model used when Options.Model is empty.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return "gemini-2.0-flash"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	}
	return ""
}

// New returns the Generator for opts.Provider.
func New(ctx context.Context, opts Options) (Generator, error) {
	if opts.Model == "" {
		opts.Model = DefaultModel(opts.Provider)
	}
	switch opts.Provider {
	case ProviderGemini:
		return NewGemini(ctx, opts.APIKey, opts.Model)
	case ProviderOpenAI:
		return NewOpenAI(opts.APIKey, opts.Model, opts.BaseURL), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
}
