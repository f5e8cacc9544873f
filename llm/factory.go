package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/lexcodex/reactcoder/framework"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Settings selects and configures a model backend.
type Settings struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// New builds the LanguageModel for s.Provider. An empty provider selects the
// OpenAI-compatible client.
func New(s Settings) (framework.LanguageModel, error) {
	switch strings.ToLower(s.Provider) {
	case "", ProviderOpenAI:
		return NewOpenAIClient(s.BaseURL, s.APIKey, s.Model, s.Timeout), nil
	case ProviderOllama:
		return NewClient(s.BaseURL, s.Model, s.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
	}
}
