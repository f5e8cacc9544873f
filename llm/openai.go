package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lexcodex/reactcoder/framework"
)

// OpenAIClient implements framework.LanguageModel against any
// OpenAI-compatible chat completions endpoint (OpenAI, LM Studio, vLLM).
type OpenAIClient struct {
	client *openai.Client
	Model  string
}

// NewOpenAIClient builds a client for baseURL. An empty baseURL targets the
// public OpenAI API.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), Model: model}
}

// Generate sends the prompt as a single user message.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if options != nil {
		if options.Model != "" {
			req.Model = options.Model
		}
		if options.Temperature != nil {
			req.Temperature = float32(*options.Temperature)
			if req.Temperature == 0 {
				// zero is dropped by omitempty; the smallest float keeps it explicit
				req.Temperature = math.SmallestNonzeroFloat32
			}
		}
		req.MaxTokens = options.MaxTokens
		req.Stop = options.Stop
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}
	choice := resp.Choices[0]
	return &framework.LLMResponse{
		Text:         choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: map[string]int{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
		},
	}, nil
}
