package a2a

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskState is the task lifecycle state, per the state machine in section 3
// of the spec: SUBMITTED -> WORKING -> {INPUT_REQUIRED <-> WORKING,
// COMPLETED, FAILED, CANCELED}. COMPLETED, FAILED, CANCELED and REJECTED
// are terminal/sticky.
type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateFailed        TaskState = "failed"
	TaskStateRejected      TaskState = "rejected"
	TaskStateAuthRequired  TaskState = "auth-required"
	TaskStateUnknown       TaskState = "unknown"
)

// IsTerminal reports whether a task in this state will never transition
// again.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed, TaskStateRejected:
		return true
	default:
		return false
	}
}

// TaskStatus is the current state of a Task plus the context that produced
// it.
type TaskStatus struct {
	State     TaskState  `json:"state"`
	Message   *Message   `json:"message,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Artifact is a piece of output an agent attaches to a task, optionally one
// chunk of a larger, appended-to artifact (Append/LastChunk/Index).
type Artifact struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parts       []Part         `json:"parts"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Index       int            `json:"index"`
	Append      bool           `json:"append,omitempty"`
	LastChunk   bool           `json:"lastChunk,omitempty"`
}

type artifactWire struct {
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Parts       []json.RawMessage `json:"parts"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
	Index       int               `json:"index"`
	Append      bool              `json:"append,omitempty"`
	LastChunk   bool              `json:"lastChunk,omitempty"`
}

func (a Artifact) MarshalJSON() ([]byte, error) {
	wire := artifactWire{
		Name:        a.Name,
		Description: a.Description,
		Metadata:    a.Metadata,
		Index:       a.Index,
		Append:      a.Append,
		LastChunk:   a.LastChunk,
	}
	wire.Parts = make([]json.RawMessage, len(a.Parts))
	for i, part := range a.Parts {
		raw, err := marshalPart(part)
		if err != nil {
			return nil, fmt.Errorf("a2a: marshal artifact part %d: %w", i, err)
		}
		wire.Parts[i] = raw
	}
	return json.Marshal(wire)
}

func (a *Artifact) UnmarshalJSON(data []byte) error {
	var wire artifactWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	a.Name = wire.Name
	a.Description = wire.Description
	a.Metadata = wire.Metadata
	a.Index = wire.Index
	a.Append = wire.Append
	a.LastChunk = wire.LastChunk

	a.Parts = make([]Part, 0, len(wire.Parts))
	for _, raw := range wire.Parts {
		part, err := unmarshalPart(raw)
		if err != nil {
			return fmt.Errorf("a2a: decode artifact part: %w", err)
		}
		a.Parts = append(a.Parts, part)
	}
	return nil
}

// Result is implemented by every JSON-RPC result payload this module can
// return: Task, TaskStatusUpdateEvent, TaskArtifactUpdateEvent,
// TaskPushNotificationConfig, and *JSONRPCError (a streaming frame that
// terminates a dequeue loop on failure).
type Result interface {
	isResult()
}

// Task is the unit of work tracked by the Task Store, addressed by ID and
// scoped to a session.
type Task struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId"`
	Status    TaskStatus     `json:"status"`
	History   []Message      `json:"history,omitempty"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (Task) isResult() {}

// TaskStatusUpdateEvent streams a task's new status during
// tasks/sendSubscribe or tasks/resubscribe. Final marks the last event for
// a given task; exactly one is ever published per spec's property P-ONE.
type TaskStatusUpdateEvent struct {
	ID       string         `json:"id"`
	Status   TaskStatus     `json:"status"`
	Final    bool           `json:"final"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (TaskStatusUpdateEvent) isResult() {}

// TaskArtifactUpdateEvent streams a newly produced (or appended-to)
// artifact during tasks/sendSubscribe or tasks/resubscribe.
type TaskArtifactUpdateEvent struct {
	ID       string         `json:"id"`
	Artifact Artifact       `json:"artifact"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (TaskArtifactUpdateEvent) isResult() {}

// Event is the narrower type the Subscriber Registry and Task Manager deal
// in: a TaskStatusUpdateEvent, a TaskArtifactUpdateEvent, or a
// *JSONRPCError terminating the stream on failure. It is distinct from
// Result because a JSON-RPC response's Result can also be a bare Task (the
// tasks/send reply) or a TaskPushNotificationConfig, neither of which ever
// flows through a subscriber queue.
type Event interface {
	Result
	isEvent()
}

func (TaskStatusUpdateEvent) isEvent()   {}
func (TaskArtifactUpdateEvent) isEvent() {}

// isResult/isEvent on *JSONRPCError let a dequeue-loop failure terminate a
// stream as a genuine Event, carrying the original code and message instead
// of being downgraded to a generic Failed status.
func (*JSONRPCError) isResult() {}
func (*JSONRPCError) isEvent()  {}
