package a2a

import (
	"encoding/json"
	"fmt"
)

// MessageRole identifies who authored a Message.
type MessageRole string

const (
	MessageRoleUser  MessageRole = "user"
	MessageRoleAgent MessageRole = "agent"
)

// MessageKind is the constant "kind" discriminator for Message, mirroring
// the discriminator every Part also carries.
const MessageKind = "message"

// Message represents one turn of communication between a client and an
// agent, carried as the payload of tasks/send and tasks/sendSubscribe and
// accumulated into a Task's history.
type Message struct {
	Kind             string         `json:"kind"`
	MessageId        string         `json:"messageId"`
	Role             MessageRole    `json:"role"`
	Parts            []Part         `json:"parts"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	TaskId           string         `json:"taskId,omitempty"`
	ContextId        string         `json:"contextId,omitempty"`
	ReferenceTaskIds []string       `json:"referenceTaskIds,omitempty"`
}

type messageWire struct {
	Kind             string            `json:"kind"`
	MessageId        string            `json:"messageId"`
	Role             MessageRole       `json:"role"`
	Parts            []json.RawMessage `json:"parts"`
	Metadata         map[string]any    `json:"metadata,omitempty"`
	TaskId           string            `json:"taskId,omitempty"`
	ContextId        string            `json:"contextId,omitempty"`
	ReferenceTaskIds []string          `json:"referenceTaskIds,omitempty"`
}

// MarshalJSON fills in the Kind discriminator when unset and fans each Part
// out to its concrete marshaler.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.MessageId == "" {
		return nil, fmt.Errorf("a2a: message missing required messageId")
	}

	wire := messageWire{
		Kind:             m.Kind,
		MessageId:        m.MessageId,
		Role:             m.Role,
		Metadata:         m.Metadata,
		TaskId:           m.TaskId,
		ContextId:        m.ContextId,
		ReferenceTaskIds: m.ReferenceTaskIds,
	}
	if wire.Kind == "" {
		wire.Kind = MessageKind
	}

	wire.Parts = make([]json.RawMessage, len(m.Parts))
	for i, part := range m.Parts {
		raw, err := marshalPart(part)
		if err != nil {
			return nil, fmt.Errorf("a2a: marshal message part %d: %w", i, err)
		}
		wire.Parts[i] = raw
	}

	return json.Marshal(wire)
}

// UnmarshalJSON decodes the envelope, then discriminates each part by its
// "kind" (or legacy "type") field.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire messageWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.MessageId == "" {
		return fmt.Errorf("a2a: message missing required messageId")
	}

	m.Kind = wire.Kind
	if m.Kind == "" {
		m.Kind = MessageKind
	}
	m.MessageId = wire.MessageId
	m.Role = wire.Role
	m.Metadata = wire.Metadata
	m.TaskId = wire.TaskId
	m.ContextId = wire.ContextId
	m.ReferenceTaskIds = wire.ReferenceTaskIds

	m.Parts = make([]Part, 0, len(wire.Parts))
	for _, raw := range wire.Parts {
		part, err := unmarshalPart(raw)
		if err != nil {
			return fmt.Errorf("a2a: decode message part: %w", err)
		}
		m.Parts = append(m.Parts, part)
	}

	return nil
}
