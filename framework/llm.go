package framework

import "context"

// LLMOptions configures language model calls. A nil Temperature leaves the
// provider default in place; a pointer to zero requests greedy decoding.
type LLMOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
	Stop        []string
}

// Temperature returns a pointer suitable for LLMOptions.Temperature.
func Temperature(v float64) *float64 { return &v }

// LLMResponse is the result of a language model invocation. Usage keys follow
// whatever the provider reported (input_tokens, prompt_tokens, ...).
type LLMResponse struct {
	Text         string         `json:"text,omitempty"`
	FinishReason string         `json:"finish_reason,omitempty"`
	Usage        map[string]int `json:"usage,omitempty"`
}

// LanguageModel is a text-in/text-out completion backend.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string, options *LLMOptions) (*LLMResponse, error)
}

// ModelInvoker is the collaborator workflows and the router talk to. It sends
// a prompt, charges token usage to the session and records the exchange.
type ModelInvoker interface {
	Invoke(ctx context.Context, prompt string, session *Session) (string, error)
}
