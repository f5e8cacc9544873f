package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/reactcoder/framework"
	"github.com/lexcodex/reactcoder/persistence"
)

type stubLLM struct {
	responses []*framework.LLMResponse
	err       error
	idx       int
	calls     int
	options   []framework.LLMOptions
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	s.calls++
	if options != nil {
		s.options = append(s.options, *options)
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.idx >= len(s.responses) {
		return nil, errors.New("no response")
	}
	resp := s.responses[s.idx]
	s.idx++
	return resp, nil
}

type memoryStore struct {
	exchanges []persistence.Exchange
	err       error
}

func (m *memoryStore) Append(ctx context.Context, ex persistence.Exchange) error {
	m.exchanges = append(m.exchanges, ex)
	return m.err
}

func TestInvokerChargesUsageAndRecords(t *testing.T) {
	model := &stubLLM{responses: []*framework.LLMResponse{
		{Text: "first", Usage: map[string]int{"input_tokens": 10, "output_tokens": 4}},
		{Text: "second", Usage: map[string]int{"prompt_tokens": 6, "completion_tokens": 1}},
		{Text: "third"},
	}}
	store := &memoryStore{}
	invoker := NewInvoker(model, framework.LLMOptions{Model: "qwen", MaxTokens: 4096}, WithExchangeStore(store))
	session := framework.NewSession("s1", "/tmp/s1")

	for _, want := range []string{"first", "second", "third"} {
		text, err := invoker.Invoke(context.Background(), "prompt", session)
		require.NoError(t, err)
		assert.Equal(t, want, text)
	}
	in, out := session.Usage()
	assert.Equal(t, 16, in)
	assert.Equal(t, 5, out)
	require.Len(t, store.exchanges, 3)
	assert.Equal(t, "s1", store.exchanges[0].SessionID)
	assert.Equal(t, "qwen", store.exchanges[0].Model)
	assert.Equal(t, 10, store.exchanges[0].InputTokens)
}

func TestInvokerStoreFailureIsNotFatal(t *testing.T) {
	model := &stubLLM{responses: []*framework.LLMResponse{{Text: "ok"}}}
	invoker := NewInvoker(model, framework.LLMOptions{}, WithExchangeStore(&memoryStore{err: errors.New("disk full")}))
	text, err := invoker.Invoke(context.Background(), "p", framework.NewSession("s1", "/tmp"))
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestInvokerPropagatesModelError(t *testing.T) {
	invoker := NewInvoker(&stubLLM{err: errors.New("connection refused")}, framework.LLMOptions{})
	_, err := invoker.Invoke(context.Background(), "p", framework.NewSession("s1", "/tmp"))
	assert.ErrorContains(t, err, "connection refused")
}

func TestInvokerDerivedCopies(t *testing.T) {
	model := &stubLLM{responses: []*framework.LLMResponse{{Text: "a"}, {Text: "b"}}}
	base := NewInvoker(model, framework.LLMOptions{Model: "main", Temperature: framework.Temperature(0.1)})
	router := base.WithModel("router").WithTemperature(0)

	_, err := router.Invoke(context.Background(), "p", nil)
	require.NoError(t, err)
	_, err = base.Invoke(context.Background(), "p", nil)
	require.NoError(t, err)

	require.Len(t, model.options, 2)
	assert.Equal(t, "router", model.options[0].Model)
	assert.Equal(t, 0.0, *model.options[0].Temperature)
	assert.Equal(t, "main", model.options[1].Model)
	assert.Equal(t, 0.1, *model.options[1].Temperature)
	assert.Equal(t, "main", base.WithModel("").Options().Model)
}

type recordingTelemetry struct {
	events []framework.Event
}

func (r *recordingTelemetry) Emit(e framework.Event) { r.events = append(r.events, e) }

func TestInstrumentedModelMetricsAndTelemetry(t *testing.T) {
	sink := &recordingTelemetry{}
	inner := &stubLLM{responses: []*framework.LLMResponse{{Text: "ok", Usage: map[string]int{"prompt_tokens": 3, "completion_tokens": 2}}}}
	model := NewInstrumentedModel(inner, sink, "instrumented-test", false)

	calls := testutil.ToFloat64(llmCallsTotal.WithLabelValues("instrumented-test", "success"))
	tokens := testutil.ToFloat64(llmTokensTotal.WithLabelValues("instrumented-test", "input"))

	_, err := model.Generate(context.Background(), "hello", &framework.LLMOptions{})
	require.NoError(t, err)
	assert.Equal(t, calls+1, testutil.ToFloat64(llmCallsTotal.WithLabelValues("instrumented-test", "success")))
	assert.Equal(t, tokens+3, testutil.ToFloat64(llmTokensTotal.WithLabelValues("instrumented-test", "input")))

	require.Len(t, sink.events, 2)
	assert.Equal(t, framework.EventLLMPrompt, sink.events[0].Type)
	assert.Equal(t, framework.EventLLMResponse, sink.events[1].Type)

	_, err = model.Generate(context.Background(), "again", nil)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(llmCallsTotal.WithLabelValues("instrumented-test", "error")))
}
