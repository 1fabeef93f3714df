package a2a

import (
	"encoding/json"
	"fmt"
)

// Method names one of the seven A2A RPC operations.
type Method string

const (
	MethodTasksGet                 Method = "tasks/get"
	MethodTasksSend                Method = "tasks/send"
	MethodTasksSendSubscribe       Method = "tasks/sendSubscribe"
	MethodTasksCancel              Method = "tasks/cancel"
	MethodTasksPushNotificationSet Method = "tasks/pushNotification/set"
	MethodTasksPushNotificationGet Method = "tasks/pushNotification/get"
	MethodTasksResubscribe         Method = "tasks/resubscribe"
)

// Params is implemented by every method's request payload type.
type Params interface {
	paramGlue()
}

// TaskIDParams addresses a task by ID alone: used by tasks/cancel,
// tasks/resubscribe and tasks/pushNotification/get.
type TaskIDParams struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (TaskIDParams) paramGlue() {}

// TaskQueryParams is the tasks/get payload: a task ID plus how much history
// to return.
type TaskQueryParams struct {
	ID            string         `json:"id"`
	HistoryLength int            `json:"historyLength,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

func (TaskQueryParams) paramGlue() {}

// TaskSendParams is the tasks/send and tasks/sendSubscribe payload: a new
// message to append to (or start) a task.
type TaskSendParams struct {
	ID               string                  `json:"id"`
	SessionID        string                  `json:"sessionId,omitempty"`
	Message          Message                 `json:"message"`
	HistoryLength    int                     `json:"historyLength,omitempty"`
	PushNotification *PushNotificationConfig `json:"pushNotification,omitempty"`
	Metadata         map[string]any          `json:"metadata,omitempty"`
}

func (TaskSendParams) paramGlue() {}

// methodParamsType maps each Method to the zero value of its Params
// implementation, used by the client to validate a call before it leaves
// the process.
var methodParamsType = map[Method]Params{
	MethodTasksGet:                 TaskQueryParams{},
	MethodTasksSend:                TaskSendParams{},
	MethodTasksSendSubscribe:       TaskSendParams{},
	MethodTasksCancel:              TaskIDParams{},
	MethodTasksPushNotificationSet: TaskPushNotificationConfig{},
	MethodTasksPushNotificationGet: TaskIDParams{},
	MethodTasksResubscribe:         TaskIDParams{},
}

// ValidateMethodParams reports whether params is the Params type that
// method expects.
func ValidateMethodParams(method Method, params Params) error {
	expected, ok := methodParamsType[method]
	if !ok {
		return fmt.Errorf("a2a: unsupported method %q", method)
	}
	if params == nil {
		return fmt.Errorf("a2a: params cannot be nil for method %q", method)
	}
	wantType := fmt.Sprintf("%T", expected)
	gotType := fmt.Sprintf("%T", params)
	if wantType != gotType {
		return fmt.Errorf("a2a: invalid params type for method %q: expected %s, got %s", method, wantType, gotType)
	}
	return nil
}

// requestWire is the over-the-wire shape of JSONRPCRequest: Params stays a
// RawMessage until Method tells us how to decode it.
type requestWire struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  Method          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCRequest is the envelope every RPC call is carried in, per section
// 4.1 of the spec.
type JSONRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Method  Method `json:"method"`
	Params  Params `json:"params,omitempty"`
}

func (r JSONRPCRequest) MarshalJSON() ([]byte, error) {
	wire := requestWire{JSONRPC: r.JSONRPC, ID: r.ID, Method: r.Method}
	if r.Params != nil {
		raw, err := json.Marshal(r.Params)
		if err != nil {
			return nil, err
		}
		wire.Params = raw
	}
	return json.Marshal(wire)
}

func (r *JSONRPCRequest) UnmarshalJSON(data []byte) error {
	var wire requestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.JSONRPC = wire.JSONRPC
	r.ID = wire.ID
	r.Method = wire.Method

	switch r.Method {
	case MethodTasksCancel, MethodTasksResubscribe, MethodTasksPushNotificationGet:
		var v TaskIDParams
		if err := json.Unmarshal(wire.Params, &v); err != nil {
			return err
		}
		r.Params = v
	case MethodTasksGet:
		var v TaskQueryParams
		if err := json.Unmarshal(wire.Params, &v); err != nil {
			return err
		}
		r.Params = v
	case MethodTasksSend, MethodTasksSendSubscribe:
		var v TaskSendParams
		if err := json.Unmarshal(wire.Params, &v); err != nil {
			return err
		}
		r.Params = v
	case MethodTasksPushNotificationSet:
		var v TaskPushNotificationConfig
		if err := json.Unmarshal(wire.Params, &v); err != nil {
			return err
		}
		r.Params = v
	default:
		return fmt.Errorf("a2a: unknown method %q", r.Method)
	}
	return nil
}

// responseWire is the over-the-wire shape of JSONRPCResponse: Result stays
// a RawMessage until its shape is sniffed.
type responseWire struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCResponse is the envelope every RPC reply (unary or one frame of an
// SSE stream) is carried in.
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      any           `json:"id,omitempty"`
	Result  Result        `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

func (r JSONRPCResponse) MarshalJSON() ([]byte, error) {
	wire := responseWire{JSONRPC: r.JSONRPC, ID: r.ID, Error: r.Error}
	if r.Result != nil {
		raw, err := json.Marshal(r.Result)
		if err != nil {
			return nil, err
		}
		wire.Result = raw
	}
	return json.Marshal(wire)
}

// UnmarshalJSON sniffs the decoded result's keys to choose a concrete
// Result type, since a bare JSON object carries no method context to
// dispatch on at the response side.
func (r *JSONRPCResponse) UnmarshalJSON(data []byte) error {
	var wire responseWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.JSONRPC = wire.JSONRPC
	r.ID = wire.ID
	r.Error = wire.Error

	if len(wire.Result) == 0 || string(wire.Result) == "null" {
		return nil
	}

	var probe map[string]any
	if err := json.Unmarshal(wire.Result, &probe); err != nil {
		return err
	}

	_, hasID := probe["id"]
	_, hasStatus := probe["status"]
	_, hasArtifact := probe["artifact"]
	_, hasFinal := probe["final"]
	_, hasPushConfig := probe["pushNotificationConfig"]
	_, hasCode := probe["code"]

	switch {
	// A streaming frame can carry a *JSONRPCError as its Result to
	// terminate a dequeue loop on failure (distinct from wire.Error, which
	// reports a request-level JSON-RPC error). Neither a Task, an update
	// event, nor a push notification config ever has a bare "code" key.
	case hasCode && !hasID:
		var v JSONRPCError
		if err := json.Unmarshal(wire.Result, &v); err != nil {
			return err
		}
		r.Result = &v
	case hasPushConfig:
		var v TaskPushNotificationConfig
		if err := json.Unmarshal(wire.Result, &v); err != nil {
			return err
		}
		r.Result = v
	case hasID && hasArtifact:
		var v TaskArtifactUpdateEvent
		if err := json.Unmarshal(wire.Result, &v); err != nil {
			return err
		}
		r.Result = v
	case hasID && hasFinal:
		var v TaskStatusUpdateEvent
		if err := json.Unmarshal(wire.Result, &v); err != nil {
			return err
		}
		r.Result = v
	case hasID && hasStatus:
		var v Task
		if err := json.Unmarshal(wire.Result, &v); err != nil {
			return err
		}
		r.Result = v
	default:
		return fmt.Errorf("a2a: could not determine result type from response payload")
	}
	return nil
}
