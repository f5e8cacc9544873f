package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexcodex/reactcoder/framework"
	"github.com/lexcodex/reactcoder/persistence"
)

// Invoker is the model invocation service used by workflows and the router.
// Each call charges reported token usage to the session and records the
// exchange.
type Invoker struct {
	model     framework.LanguageModel
	options   framework.LLMOptions
	exchanges persistence.ExchangeStore
	logger    *slog.Logger
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithExchangeStore records every exchange in store.
func WithExchangeStore(store persistence.ExchangeStore) InvokerOption {
	return func(i *Invoker) { i.exchanges = store }
}

// WithInvokerLogger sets the logger.
func WithInvokerLogger(logger *slog.Logger) InvokerOption {
	return func(i *Invoker) { i.logger = logger }
}

// NewInvoker builds an invoker that calls model with options.
func NewInvoker(model framework.LanguageModel, options framework.LLMOptions, opts ...InvokerOption) *Invoker {
	i := &Invoker{model: model, options: options}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = slog.Default()
	}
	return i
}

// WithModel returns a copy that targets another model name. An empty name
// keeps the current model.
func (i *Invoker) WithModel(model string) *Invoker {
	clone := *i
	if model != "" {
		clone.options.Model = model
	}
	return &clone
}

// WithTemperature returns a copy with a fixed sampling temperature.
func (i *Invoker) WithTemperature(t float64) *Invoker {
	clone := *i
	clone.options.Temperature = framework.Temperature(t)
	return &clone
}

// Options returns the options sent with every call.
func (i *Invoker) Options() framework.LLMOptions { return i.options }

// Invoke sends prompt to the model and returns the response text. Exchange
// recording failures are logged, not returned.
func (i *Invoker) Invoke(ctx context.Context, prompt string, session *framework.Session) (string, error) {
	opts := i.options
	resp, err := i.model.Generate(ctx, prompt, &opts)
	if err != nil {
		return "", fmt.Errorf("invoke model: %w", err)
	}
	input, output := UsageCounts(resp.Usage)
	if session == nil {
		return resp.Text, nil
	}
	session.AddUsage(input, output)
	if i.exchanges != nil {
		err := i.exchanges.Append(ctx, persistence.Exchange{
			SessionID:    session.ID,
			Model:        opts.Model,
			Prompt:       prompt,
			Response:     resp.Text,
			InputTokens:  input,
			OutputTokens: output,
			Timestamp:    time.Now().UTC(),
		})
		if err != nil {
			i.logger.Warn("record exchange failed", "session_id", session.ID, "error", err)
		}
	}
	return resp.Text, nil
}
