package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lexcodex/reactcoder/framework"
)

var tracer = otel.Tracer("github.com/lexcodex/reactcoder/llm")

// InstrumentedModel wraps a LanguageModel with tracing, metrics and
// prompt/response telemetry.
type InstrumentedModel struct {
	Inner        framework.LanguageModel
	Telemetry    framework.Telemetry
	DefaultModel string
	Debug        bool
}

func NewInstrumentedModel(inner framework.LanguageModel, telemetry framework.Telemetry, defaultModel string, debug bool) *InstrumentedModel {
	return &InstrumentedModel{Inner: inner, Telemetry: telemetry, DefaultModel: defaultModel, Debug: debug}
}

func (m *InstrumentedModel) Generate(ctx context.Context, prompt string, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	model := m.modelName(options)
	ctx, span := tracer.Start(ctx, "llm.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", model),
		attribute.Int("llm.prompt_chars", len(prompt)),
	)

	meta := map[string]interface{}{
		"model":          model,
		"prompt_chars":   len(prompt),
		"prompt_preview": clip(prompt, 1024),
	}
	if m.Debug {
		meta["prompt"] = clip(prompt, 8192)
	}
	m.emit(framework.EventLLMPrompt, "llm generate prompt", meta)

	start := time.Now()
	resp, err := m.Inner.Generate(ctx, prompt, options)
	RecordCall(model, err, time.Since(start).Seconds())

	respMeta := map[string]interface{}{"model": model, "duration_ms": time.Since(start).Milliseconds()}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		respMeta["error"] = err.Error()
	}
	if resp != nil {
		input, output := UsageCounts(resp.Usage)
		RecordTokens(model, input, output)
		span.SetAttributes(attribute.Int("llm.input_tokens", input), attribute.Int("llm.output_tokens", output))
		respMeta["finish_reason"] = resp.FinishReason
		respMeta["text_preview"] = clip(resp.Text, 1024)
		respMeta["usage"] = resp.Usage
	}
	m.emit(framework.EventLLMResponse, "llm generate response", respMeta)
	return resp, err
}

func (m *InstrumentedModel) emit(kind framework.EventType, message string, meta map[string]interface{}) {
	if m.Telemetry == nil {
		return
	}
	framework.EmitTo(m.Telemetry, framework.Event{Type: kind, Message: message, Metadata: meta})
}

func (m *InstrumentedModel) modelName(options *framework.LLMOptions) string {
	if options != nil && options.Model != "" {
		return options.Model
	}
	if m.DefaultModel != "" {
		return m.DefaultModel
	}
	return "default"
}

func clip(s string, max int) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return fmt.Sprintf("%s...(truncated)", framework.Truncate(s, max))
}
