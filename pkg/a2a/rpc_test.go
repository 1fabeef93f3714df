package a2a

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRPCRequestRoundTrip(t *testing.T) {
	req := JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      "req-1",
		Method:  MethodTasksSend,
		Params: TaskSendParams{
			ID: "task-1",
			Message: Message{
				MessageId: "msg-1",
				Role:      MessageRoleUser,
				Parts:     []Part{TextPart{Text: "hello"}},
			},
		},
	}

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded JSONRPCRequest
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, req.JSONRPC, decoded.JSONRPC)
	assert.Equal(t, req.Method, decoded.Method)
	params, ok := decoded.Params.(TaskSendParams)
	require.True(t, ok)
	assert.Equal(t, "task-1", params.ID)
	assert.Equal(t, "hello", params.Message.Parts[0].(TextPart).Text)
}

func TestJSONRPCRequestUnknownMethod(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"tasks/bogus","params":{}}`)
	var req JSONRPCRequest
	err := json.Unmarshal(raw, &req)
	assert.Error(t, err)
}

func TestJSONRPCResponseRoundTripTask(t *testing.T) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      "req-1",
		Result: Task{
			ID:     "task-1",
			Status: TaskStatus{State: TaskStateCompleted},
		},
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded JSONRPCResponse
	require.NoError(t, json.Unmarshal(raw, &decoded))

	task, ok := decoded.Result.(Task)
	require.True(t, ok)
	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, TaskStateCompleted, task.Status.State)
}

func TestJSONRPCResponseRoundTripStatusEvent(t *testing.T) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      "req-1",
		Result: TaskStatusUpdateEvent{
			ID:     "task-1",
			Status: TaskStatus{State: TaskStateWorking},
			Final:  false,
		},
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded JSONRPCResponse
	require.NoError(t, json.Unmarshal(raw, &decoded))

	event, ok := decoded.Result.(TaskStatusUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, "task-1", event.ID)
	assert.False(t, event.Final)
}

func TestJSONRPCResponseRoundTripArtifactEvent(t *testing.T) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      "req-1",
		Result: TaskArtifactUpdateEvent{
			ID: "task-1",
			Artifact: Artifact{
				Name:  "result",
				Parts: []Part{TextPart{Text: "done"}},
			},
		},
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded JSONRPCResponse
	require.NoError(t, json.Unmarshal(raw, &decoded))

	event, ok := decoded.Result.(TaskArtifactUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, "result", event.Artifact.Name)
}

func TestJSONRPCResponseRoundTripError(t *testing.T) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      "req-1",
		Error:   ErrTaskNotFound("task-1"),
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded JSONRPCResponse
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrorTaskNotFound, decoded.Error.Code)
	assert.Nil(t, decoded.Result)
}

func TestJSONRPCResponseRoundTripErrorAsStreamingResult(t *testing.T) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      "req-1",
		Result:  ErrInternal(assert.AnError),
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded JSONRPCResponse
	require.NoError(t, json.Unmarshal(raw, &decoded))

	rpcErr, ok := decoded.Result.(*JSONRPCError)
	require.True(t, ok, "a streaming frame's Result must decode back to *JSONRPCError, not fall through to the Task/event branches")
	assert.Equal(t, ErrorInternal, rpcErr.Code)
	assert.Nil(t, decoded.Error, "the terminating error rides in Result here, distinct from a request-level wire.Error")
}

func TestValidateMethodParams(t *testing.T) {
	assert.NoError(t, ValidateMethodParams(MethodTasksGet, TaskQueryParams{ID: "t1"}))
	assert.Error(t, ValidateMethodParams(MethodTasksGet, TaskIDParams{ID: "t1"}))
	assert.Error(t, ValidateMethodParams(MethodTasksGet, nil))
	assert.Error(t, ValidateMethodParams(Method("bogus"), TaskIDParams{}))
}
