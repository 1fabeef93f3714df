package a2a

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStateIsTerminal(t *testing.T) {
	assert.True(t, TaskStateCompleted.IsTerminal())
	assert.True(t, TaskStateCanceled.IsTerminal())
	assert.True(t, TaskStateFailed.IsTerminal())
	assert.True(t, TaskStateRejected.IsTerminal())

	assert.False(t, TaskStateSubmitted.IsTerminal())
	assert.False(t, TaskStateWorking.IsTerminal())
	assert.False(t, TaskStateInputRequired.IsTerminal())
	assert.False(t, TaskStateAuthRequired.IsTerminal())
}

func TestArtifactRoundTrip(t *testing.T) {
	artifact := Artifact{
		Name:  "result",
		Index: 0,
		Parts: []Part{TextPart{Text: "hi"}, DataPart{Data: map[string]any{"n": float64(2)}}},
	}

	raw, err := json.Marshal(artifact)
	require.NoError(t, err)

	var decoded Artifact
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Parts, 2)
	assert.Equal(t, "hi", decoded.Parts[0].(TextPart).Text)
	assert.Equal(t, float64(2), decoded.Parts[1].(DataPart).Data["n"])
}

func TestTaskImplementsResultNotEvent(t *testing.T) {
	var _ Result = Task{}
	_, isEvent := any(Task{}).(Event)
	assert.False(t, isEvent, "Task must not satisfy Event; a bare task never flows through a subscriber queue")
}

func TestJSONRPCErrorImplementsEvent(t *testing.T) {
	var _ Result = (*JSONRPCError)(nil)
	var _ Event = (*JSONRPCError)(nil)
}
