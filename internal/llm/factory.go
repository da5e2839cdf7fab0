package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Options selects and configures one provider.
type Options struct {
	Provider  string
	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
}

// CredentialEnv names the environment variable holding the key for provider.
func CredentialEnv(provider string) string {
	switch normalizeProvider(provider) {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "ANTHROPIC_API_KEY"
	}
}

// New builds the provider named in opts. A missing key yields
// ErrMissingCredential so the relay can still start and report it per call.
func New(ctx context.Context, opts Options) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch normalizeProvider(opts.Provider) {
	case ProviderAnthropic:
		p, err = NewAnthropic(opts.Anthropic)
	case ProviderOpenAI:
		p, err = NewOpenAI(opts.OpenAI)
	case ProviderGemini:
		p, err = NewGemini(ctx, opts.Gemini)
	default:
		err = fmt.Errorf("llm: unknown provider %q", opts.Provider)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func normalizeProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "claude" {
		return ProviderAnthropic
	}
	return name
}
