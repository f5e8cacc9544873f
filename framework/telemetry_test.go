package framework

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTelemetry struct {
	events []Event
}

func (r *recordingTelemetry) Emit(e Event) { r.events = append(r.events, e) }

func TestMultiplexTelemetryFansOut(t *testing.T) {
	a, b := &recordingTelemetry{}, &recordingTelemetry{}
	EmitTo(MultiplexTelemetry{Sinks: []Telemetry{a, nil, b}}, Event{Type: EventToolCall, Message: "list_files"})
	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.False(t, a.events[0].Timestamp.IsZero())
}

func TestJSONFileTelemetryWritesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink, err := NewJSONFileTelemetry(path)
	require.NoError(t, err)
	EmitTo(sink, Event{Type: EventWorkflowStart, SessionID: "s1", Workflow: "simple_modification"})
	EmitTo(sink, Event{Type: EventWorkflowFinish, SessionID: "s1"})
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var types []EventType
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{EventWorkflowStart, EventWorkflowFinish}, types)
}

func TestEmitToNilSinkIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitTo(nil, Event{Type: EventToolCall, Message: "list_files"})
	})
}
