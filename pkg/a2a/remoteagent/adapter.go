// Package remoteagent implements the Remote Agent Adapter, section 4.8 of
// the spec: a client-side facade that drives a streaming or non-streaming
// peer through one SendTask(callback) entry point, merging metadata and
// rotating message ids the same way across both paths.
package remoteagent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/micro/micro-a2a/pkg/a2a"
	"github.com/micro/micro-a2a/pkg/a2a/client"
)

// Callback receives one event per task update. For the unary path it is
// invoked exactly once; for the streaming path it is invoked once per SSE
// frame, including a synthetic initial SUBMITTED event.
type Callback func(event a2a.Event)

// Adapter drives a single remote agent, discovered once via its AgentCard.
type Adapter struct {
	card   a2a.AgentCard
	client *client.Client
}

// New builds an Adapter. Callers typically obtain card via
// client.ResolveAgentCard against the same baseURL passed to c.
func New(card a2a.AgentCard, c *client.Client) *Adapter {
	return &Adapter{card: card, client: c}
}

// SendTask chooses streaming vs. unary based on the AgentCard's declared
// capability and drives callback accordingly, per section 4.8.
func (a *Adapter) SendTask(ctx context.Context, params a2a.TaskSendParams, callback Callback) error {
	if a.card.Capabilities != nil && a.card.Capabilities.Streaming {
		return a.sendStreaming(ctx, params, callback)
	}
	return a.sendUnary(ctx, params, callback)
}

// sendStreaming emits a synthetic initial SUBMITTED event carrying the
// request message, then relays every TaskStatusUpdateEvent and
// TaskArtifactUpdateEvent from the SSE stream, merging metadata and
// rotating message ids on each status event that carries a message.
// Iteration stops once a Final event is delivered or the stream ends.
func (a *Adapter) sendStreaming(ctx context.Context, params a2a.TaskSendParams, callback Callback) error {
	callback(a2a.TaskStatusUpdateEvent{
		ID: params.ID,
		Status: a2a.TaskStatus{
			State:   a2a.TaskStateSubmitted,
			Message: &params.Message,
		},
		Final: false,
	})

	for resp, err := range a.client.Stream(ctx, a2a.MethodTasksSendSubscribe, params) {
		if err != nil {
			return fmt.Errorf("a2a: streaming task %s: %w", params.ID, err)
		}
		if resp.Error != nil {
			return resp.Error
		}

		switch event := resp.Result.(type) {
		case a2a.TaskStatusUpdateEvent:
			if event.Status.Message != nil {
				merged := *event.Status.Message
				mergeAndRotate(&merged, params.Message)
				event.Status.Message = &merged
			}
			callback(event)
			if event.Final {
				return nil
			}
		case a2a.TaskArtifactUpdateEvent:
			callback(event)
		case *a2a.JSONRPCError:
			callback(event)
			return event
		}
	}
	return nil
}

// sendUnary performs the same metadata merge and id rotation once, against
// the returned Task's status message, and invokes callback exactly once.
func (a *Adapter) sendUnary(ctx context.Context, params a2a.TaskSendParams, callback Callback) error {
	resp, err := a.client.Call(ctx, a2a.MethodTasksSend, params)
	if err != nil {
		return fmt.Errorf("a2a: sending task %s: %w", params.ID, err)
	}
	if resp.Error != nil {
		return resp.Error
	}

	task, ok := resp.Result.(a2a.Task)
	if !ok {
		return fmt.Errorf("a2a: tasks/send returned unexpected result type %T", resp.Result)
	}

	if task.Status.Message != nil {
		merged := *task.Status.Message
		mergeAndRotate(&merged, params.Message)
		task.Status.Message = &merged
	}

	callback(a2a.TaskStatusUpdateEvent{
		ID:     task.ID,
		Status: task.Status,
		Final:  task.Status.State.IsTerminal(),
	})
	return nil
}

// mergeAndRotate shallow-merges request metadata into response (response
// keeps its own value on conflict, request fills in everything else) and
// rotates response's message_id to last_message_id, minting a fresh
// message_id, so a conversation manager can chain partial replies back to
// the message that produced them.
func mergeAndRotate(response *a2a.Message, request a2a.Message) {
	if response.Metadata == nil {
		response.Metadata = make(map[string]any)
	}
	for k, v := range request.Metadata {
		if _, exists := response.Metadata[k]; !exists {
			response.Metadata[k] = v
		}
	}

	if id, ok := response.Metadata["message_id"]; ok {
		response.Metadata["last_message_id"] = id
	}
	response.Metadata["message_id"] = uuid.NewString()
}
