package remoteagent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micro/micro-a2a/pkg/a2a"
	"github.com/micro/micro-a2a/pkg/a2a/client"
)

func TestMergeAndRotateFillsRequestMetadataOnly(t *testing.T) {
	response := &a2a.Message{Metadata: map[string]any{"message_id": "old-id", "own": "response-value"}}
	request := a2a.Message{Metadata: map[string]any{"own": "request-value", "extra": "carried-over"}}

	mergeAndRotate(response, request)

	assert.Equal(t, "response-value", response.Metadata["own"], "response-side value must win on key conflict")
	assert.Equal(t, "carried-over", response.Metadata["extra"], "request-only keys must be merged in")
	assert.Equal(t, "old-id", response.Metadata["last_message_id"])

	newID, ok := response.Metadata["message_id"].(string)
	require.True(t, ok)
	assert.NotEqual(t, "old-id", newID)
}

func TestMergeAndRotateHandlesNilResponseMetadata(t *testing.T) {
	response := &a2a.Message{}
	request := a2a.Message{Metadata: map[string]any{"k": "v"}}

	mergeAndRotate(response, request)

	assert.Equal(t, "v", response.Metadata["k"])
	assert.NotEmpty(t, response.Metadata["message_id"])
	_, hadPrevious := response.Metadata["last_message_id"]
	assert.False(t, hadPrevious, "no previous message_id means nothing to rotate into last_message_id")
}

func TestSendTaskStreamingTerminatesOnJSONRPCErrorFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		raw, err := json.Marshal(a2a.JSONRPCResponse{JSONRPC: "2.0", ID: "1", Result: a2a.ErrTaskNotCancelable("t1")})
		require.NoError(t, err)
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", raw)
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	card := a2a.AgentCard{Capabilities: &a2a.AgentCapabilities{Streaming: true}}
	adapter := New(card, client.New(srv.URL))

	var events []a2a.Event
	err := adapter.SendTask(context.Background(), a2a.TaskSendParams{
		ID:      "t1",
		Message: a2a.Message{MessageId: "m1", Role: a2a.MessageRoleUser, Parts: []a2a.Part{a2a.TextPart{Text: "hi"}}},
	}, func(event a2a.Event) { events = append(events, event) })

	require.Error(t, err)
	var rpcErr *a2a.JSONRPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, a2a.ErrorTaskNotCancelable, rpcErr.Code)

	require.Len(t, events, 2, "the synthetic SUBMITTED event, then the terminating error event")
	_, ok := events[1].(*a2a.JSONRPCError)
	assert.True(t, ok)
}
