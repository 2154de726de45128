package llm

import (
	"fmt"

	"github.com/joss/testsmith/internal/config"
)

// NewFromEnv builds the configured provider client. The provider is
// selected by TESTSMITH_PROVIDER, defaulting to Gemini.
func NewFromEnv(env *config.TestsmithEnv) (Client, error) {
	switch env.Provider {
	case "gemini", "":
		if env.GeminiKey == "" {
			return nil, fmt.Errorf("%w: set GEMINI_API_KEY (free key at https://aistudio.google.com)", ErrNoAPIKey)
		}
		if env.GeminiBaseURL != "" {
			return NewGeminiWithClient(env.GeminiKey, env.Model, env.GeminiBaseURL, nil), nil
		}
		return NewGemini(env.GeminiKey, env.Model), nil
	case "openai":
		model := env.Model
		if model == "gemini-2.5-pro" {
			// The model default tracks the default provider, swap it
			// when only the provider was overridden.
			model = "gpt-4o-mini"
		}
		return NewOpenAI(env.OpenAIKey, model, env.OpenAIBaseURL)
	default:
		return nil, fmt.Errorf("unknown provider %q", env.Provider)
	}
}
