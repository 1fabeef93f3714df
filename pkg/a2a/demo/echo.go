// Package demo holds a reference Executor used by cmd/agent's serve
// command: it echoes the caller's text back in an artifact and then
// completes the task, grounded on the teacher's own MyAgentHandlers
// example (main.go, now generalized behind the taskmanager.Executor
// contract instead of a pair of bespoke TaskHandler/StreamHandler
// methods).
package demo

import (
	"context"
	"time"

	"github.com/micro/micro-a2a/pkg/a2a"
)

// EchoExecutor completes every task by echoing the first text part of the
// sent message back as a single artifact, publishing a WORKING event first
// so streaming callers see at least one intermediate update.
type EchoExecutor struct{}

func (EchoExecutor) Execute(ctx context.Context, task *a2a.Task, message a2a.Message, publish func(a2a.Event)) error {
	publish(a2a.TaskStatusUpdateEvent{
		ID:     task.ID,
		Status: a2a.TaskStatus{State: a2a.TaskStateWorking},
		Final:  false,
	})

	text := firstText(message)

	select {
	case <-ctx.Done():
		publish(a2a.TaskStatusUpdateEvent{
			ID:     task.ID,
			Status: a2a.TaskStatus{State: a2a.TaskStateCanceled},
			Final:  true,
		})
		return ctx.Err()
	case <-time.After(50 * time.Millisecond):
	}

	publish(a2a.TaskArtifactUpdateEvent{
		ID: task.ID,
		Artifact: a2a.Artifact{
			Name: "echo",
			Parts: []a2a.Part{
				a2a.TextPart{Text: text},
			},
		},
	})

	now := time.Now()
	publish(a2a.TaskStatusUpdateEvent{
		ID: task.ID,
		Status: a2a.TaskStatus{
			State:     a2a.TaskStateCompleted,
			Timestamp: &now,
		},
		Final: true,
	})
	return nil
}

func firstText(message a2a.Message) string {
	for _, part := range message.Parts {
		if text, ok := part.(a2a.TextPart); ok {
			return text.Text
		}
	}
	return ""
}
