// Package taskmanager implements the Task Manager, section 4.6 of the
// spec: the seven-method contract every A2A RPC Server drives, and an
// in-memory reference composition of the Task Store and Subscriber
// Registry around an injected Executor.
package taskmanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/micro/micro-a2a/pkg/a2a"
	"github.com/micro/micro-a2a/pkg/a2a/store"
	"go-micro.dev/v5/logger"
)

// Executor is the agent-specific logic a Task Manager drives. Given a
// task's accumulated history and the newly sent message, it does whatever
// work the agent does and reports progress through publish, ending with
// exactly one call carrying the task's last a2a.TaskStatus: a terminal
// state (Completed, Failed, Canceled or Rejected) or InputRequired, which
// returns control to the caller without making the task terminal.
//
// Execute must itself publish the final TaskStatusUpdateEvent (with
// Final set appropriately) before returning; the Task Manager does not
// invent one on Execute's behalf, mirroring how the teacher's
// AgentStreamHandler owns its own termination event.
type Executor interface {
	Execute(ctx context.Context, task *a2a.Task, message a2a.Message, publish func(a2a.Event)) error
}

// TaskManager is the abstract contract behind every one of the seven A2A
// RPC methods, independent of transport (the RPC Server calls these
// directly; nothing here knows about HTTP or JSON-RPC envelopes).
type TaskManager interface {
	OnGetTask(ctx context.Context, params a2a.TaskQueryParams) (*a2a.Task, error)
	OnSendTask(ctx context.Context, params a2a.TaskSendParams) (*a2a.Task, error)
	OnSendTaskSubscribe(ctx context.Context, params a2a.TaskSendParams) (*store.Subscriber, error)
	OnCancelTask(ctx context.Context, params a2a.TaskIDParams) (*a2a.Task, error)
	OnSetTaskPushNotification(ctx context.Context, cfg a2a.TaskPushNotificationConfig) (*a2a.TaskPushNotificationConfig, error)
	OnGetTaskPushNotification(ctx context.Context, params a2a.TaskIDParams) (*a2a.TaskPushNotificationConfig, error)
	OnResubscribeToTask(ctx context.Context, params a2a.TaskIDParams) (*store.Subscriber, error)

	// Detach releases a subscriber obtained from OnSendTaskSubscribe or
	// OnResubscribeToTask, used by the RPC Server when its SSE connection
	// drops before a Final event arrives.
	Detach(sub *store.Subscriber)
}

// InMemoryTaskManager is the reference TaskManager: it wires a TaskStore
// and a SubscriberRegistry around an Executor, the same split the
// teacher's AgentHandler/AgentStreamHandler draws, generalized from "one
// handler per agent process" to "one handler per task manager instance".
type InMemoryTaskManager struct {
	tasks    store.TaskStore
	subs     *store.SubscriberRegistry
	executor Executor
	log      logger.Logger
}

// New builds an InMemoryTaskManager. tasks and subs default to fresh
// in-memory instances when nil, so tests can share a store across
// managers or exercise this one standalone.
func New(executor Executor, tasks store.TaskStore, subs *store.SubscriberRegistry, log logger.Logger) *InMemoryTaskManager {
	if tasks == nil {
		tasks = store.NewInMemoryTaskStore()
	}
	if subs == nil {
		subs = store.NewSubscriberRegistry()
	}
	if log == nil {
		log = logger.NewLogger()
	}
	return &InMemoryTaskManager{tasks: tasks, subs: subs, executor: executor, log: log}
}

func (m *InMemoryTaskManager) OnGetTask(ctx context.Context, params a2a.TaskQueryParams) (*a2a.Task, error) {
	return m.tasks.Get(ctx, params.ID, params.HistoryLength)
}

// OnSendTask runs the Executor synchronously and returns the task in
// whatever state Execute left it in: the unary tasks/send path, no
// streaming, no subscriber involved.
func (m *InMemoryTaskManager) OnSendTask(ctx context.Context, params a2a.TaskSendParams) (*a2a.Task, error) {
	task, err := m.tasks.Upsert(ctx, params)
	if err != nil {
		return nil, err
	}

	publish := func(event a2a.Event) {
		m.applyEvent(ctx, task.ID, event)
	}

	if err := m.executor.Execute(ctx, task, params.Message, publish); err != nil {
		m.tasks.Update(ctx, task.ID, &a2a.TaskStatus{State: a2a.TaskStateFailed}, nil)
		return nil, a2a.ErrInternal(err)
	}

	return m.tasks.GetFull(ctx, task.ID)
}

// OnSendTaskSubscribe upserts the task, attaches a Subscriber, publishes
// the initial SUBMITTED event synchronously so a caller reading the first
// event off the returned Subscriber never races the goroutine below, then
// runs the Executor in the background, translating every publish call
// into both a store update and a registry fan-out. This is the
// "dequeue-loop generator" the spec describes: the Subscriber's channel
// is the lazy sequence the RPC Server turns into an SSE response.
func (m *InMemoryTaskManager) OnSendTaskSubscribe(ctx context.Context, params a2a.TaskSendParams) (*store.Subscriber, error) {
	task, err := m.tasks.Upsert(ctx, params)
	if err != nil {
		return nil, err
	}

	sub := m.subs.Subscribe(task.ID)
	m.subs.Publish(task.ID, a2a.TaskStatusUpdateEvent{
		ID:     task.ID,
		Status: task.Status,
		Final:  false,
	})

	go func() {
		publish := func(event a2a.Event) {
			m.applyEvent(context.Background(), task.ID, event)
		}
		if err := m.executor.Execute(context.Background(), task, params.Message, publish); err != nil {
			m.log.Log(logger.ErrorLevel, fmt.Sprintf("task %s: executor failed: %v", task.ID, err))
			failed := a2a.TaskStatus{State: a2a.TaskStateFailed}
			m.tasks.Update(context.Background(), task.ID, &failed, nil)
			m.subs.Publish(task.ID, toExecutorError(err))
		}
	}()

	return sub, nil
}

func (m *InMemoryTaskManager) OnCancelTask(ctx context.Context, params a2a.TaskIDParams) (*a2a.Task, error) {
	task, err := m.tasks.Get(ctx, params.ID, 0)
	if err != nil {
		return nil, err
	}
	if task.Status.State.IsTerminal() {
		return nil, a2a.ErrTaskNotCancelable(params.ID)
	}

	status := a2a.TaskStatus{State: a2a.TaskStateCanceled}
	updated, err := m.tasks.Update(ctx, params.ID, &status, nil)
	if err != nil {
		return nil, err
	}
	m.subs.Publish(params.ID, a2a.TaskStatusUpdateEvent{ID: params.ID, Status: status, Final: true})
	return updated, nil
}

func (m *InMemoryTaskManager) OnSetTaskPushNotification(ctx context.Context, cfg a2a.TaskPushNotificationConfig) (*a2a.TaskPushNotificationConfig, error) {
	if err := m.tasks.SetPushNotificationConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (m *InMemoryTaskManager) OnGetTaskPushNotification(ctx context.Context, params a2a.TaskIDParams) (*a2a.TaskPushNotificationConfig, error) {
	cfg, err := m.tasks.GetPushNotificationConfig(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, a2a.ErrTaskNotFound(params.ID)
	}
	return cfg, nil
}

// OnResubscribeToTask is intentionally unsupported in the reference
// implementation: replaying history that predates a new SSE connection
// would require buffering every event this process has ever published,
// which the spec's Non-goals rule out. Per the open-question decision
// recorded in SPEC_FULL.md, this returns ErrUnsupportedOperation rather
// than silently degrading to "subscribe to whatever happens next".
func (m *InMemoryTaskManager) OnResubscribeToTask(ctx context.Context, params a2a.TaskIDParams) (*store.Subscriber, error) {
	return nil, a2a.ErrUnsupportedOperation(string(a2a.MethodTasksResubscribe))
}

// Detach removes sub from the Subscriber Registry and closes its channel.
func (m *InMemoryTaskManager) Detach(sub *store.Subscriber) {
	m.subs.Detach(sub)
}

// applyEvent records event against the store (when it carries a status or
// artifact) and fans it out to taskID's subscribers. taskID is passed
// explicitly rather than read off event because a *a2a.JSONRPCError event
// carries no task ID of its own.
func (m *InMemoryTaskManager) applyEvent(ctx context.Context, taskID string, event a2a.Event) {
	switch e := event.(type) {
	case a2a.TaskStatusUpdateEvent:
		status := e.Status
		m.tasks.Update(ctx, e.ID, &status, nil)
	case a2a.TaskArtifactUpdateEvent:
		artifact := e.Artifact
		m.tasks.Update(ctx, e.ID, nil, &artifact)
	}
	m.subs.Publish(taskID, event)
}

// toExecutorError converts an Executor's returned error into the
// *JSONRPCError a streaming frame carries, passing an already-typed
// domain error through unchanged rather than discarding its code.
func toExecutorError(err error) *a2a.JSONRPCError {
	var rpcErr *a2a.JSONRPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return a2a.ErrInternal(err)
}

var _ TaskManager = (*InMemoryTaskManager)(nil)
