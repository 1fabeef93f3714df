// Package store holds the Task Store and Subscriber Registry: the two
// mutex-guarded collections the Task Manager is built on top of, per
// sections 4.4 and 4.5 of the spec.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gostore "go-micro.dev/v5/store"

	"github.com/micro/micro-a2a/pkg/a2a"
)

// TaskStore is the contract the Task Manager drives: create-or-continue a
// task (upsert), read it back with bounded history, record a status or
// artifact update, and read a history window. Implementations must be safe
// for concurrent use.
type TaskStore interface {
	// Upsert creates a new task (when params.ID is unseen) or appends
	// params.Message to an existing one's history, returning the task in
	// its state after the append.
	Upsert(ctx context.Context, params a2a.TaskSendParams) (*a2a.Task, error)

	// Get returns a task by ID with its history truncated to the most
	// recent historyLength messages. historyLength <= 0 returns an empty
	// history, per history_view's documented invariant: omitting the field
	// on the wire means "no history", not "all of it". This is the
	// tasks/get read path specifically.
	Get(ctx context.Context, id string, historyLength int) (*a2a.Task, error)

	// GetFull returns a task by ID with its complete, untruncated history:
	// the shape on_send_task and on_send_task_subscribe hand back, which
	// unlike tasks/get never applies history_view.
	GetFull(ctx context.Context, id string) (*a2a.Task, error)

	// Update applies a new status to a task, appending status.Message to
	// history when present, and/or appends an artifact. Either argument
	// may be nil to leave that aspect unchanged.
	Update(ctx context.Context, id string, status *a2a.TaskStatus, artifact *a2a.Artifact) (*a2a.Task, error)

	// HistoryView applies history_view(task, historyLength) without
	// fetching the rest of the record: historyLength <= 0 returns an empty
	// slice, otherwise the most recent historyLength messages.
	HistoryView(ctx context.Context, id string, historyLength int) ([]a2a.Message, error)

	// SetPushNotificationConfig associates a push notification config with
	// an existing task. Per the preserved open-question decision in
	// spec.md section 9, the task must already exist.
	SetPushNotificationConfig(ctx context.Context, cfg a2a.TaskPushNotificationConfig) error

	// GetPushNotificationConfig returns the push notification config
	// previously set for a task, if any.
	GetPushNotificationConfig(ctx context.Context, taskID string) (*a2a.TaskPushNotificationConfig, error)
}

// InMemoryTaskStore is the reference TaskStore: one mutex guarding a plain
// map, mirroring the single-process, non-durable scope the spec's
// Non-goals set (no cross-process migration, no transactional guarantees).
type InMemoryTaskStore struct {
	mu     sync.Mutex
	tasks  map[string]*a2a.Task
	pushes map[string]a2a.TaskPushNotificationConfig

	// snapshot, when set via WithSnapshotStore, receives a best-effort
	// durable copy of every task record after each mutation. It is never
	// consulted for reads; InMemoryTaskStore's own map remains the source
	// of truth for this process's lifetime.
	snapshot gostore.Store
}

// NewInMemoryTaskStore builds an empty store, optionally wired to a
// go-micro store.Store for snapshotting (see WithSnapshotStore).
func NewInMemoryTaskStore(opts ...TaskStoreOption) *InMemoryTaskStore {
	s := &InMemoryTaskStore{
		tasks:  make(map[string]*a2a.Task),
		pushes: make(map[string]a2a.TaskPushNotificationConfig),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TaskStoreOption configures an InMemoryTaskStore.
type TaskStoreOption func(*InMemoryTaskStore)

// WithSnapshotStore wires a go-micro store.Store that receives a
// best-effort JSON snapshot of each task after every mutation, the pluggable
// substitute the spec's Task Store section calls for behind the same
// interface, without making the in-memory map itself durable.
func WithSnapshotStore(s gostore.Store) TaskStoreOption {
	return func(st *InMemoryTaskStore) {
		st.snapshot = s
	}
}

func (s *InMemoryTaskStore) Upsert(ctx context.Context, params a2a.TaskSendParams) (*a2a.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[params.ID]
	if !ok {
		task = &a2a.Task{
			ID:        params.ID,
			SessionID: params.SessionID,
			Status: a2a.TaskStatus{
				State: a2a.TaskStateSubmitted,
			},
			Metadata: params.Metadata,
		}
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		s.tasks[task.ID] = task
	}

	task.History = append(task.History, params.Message)
	s.snapshotLocked(task)
	return cloneTask(task), nil
}

func (s *InMemoryTaskStore) Get(ctx context.Context, id string, historyLength int) (*a2a.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, a2a.ErrTaskNotFound(id)
	}

	clone := cloneTask(task)
	clone.History = truncateHistory(clone.History, historyLength)
	return clone, nil
}

func (s *InMemoryTaskStore) GetFull(ctx context.Context, id string) (*a2a.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, a2a.ErrTaskNotFound(id)
	}
	return cloneTask(task), nil
}

func (s *InMemoryTaskStore) Update(ctx context.Context, id string, status *a2a.TaskStatus, artifact *a2a.Artifact) (*a2a.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, a2a.ErrTaskNotFound(id)
	}

	if status != nil {
		task.Status = *status
		// Append-only history log: every status message that accompanies
		// a transition is recorded, even if an identical message was
		// already appended by an earlier transition to the same state.
		if status.Message != nil {
			task.History = append(task.History, *status.Message)
		}
	}
	if artifact != nil {
		task.Artifacts = append(task.Artifacts, *artifact)
	}

	s.snapshotLocked(task)
	return cloneTask(task), nil
}

func (s *InMemoryTaskStore) HistoryView(ctx context.Context, id string, historyLength int) ([]a2a.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, a2a.ErrTaskNotFound(id)
	}
	return truncateHistory(append([]a2a.Message{}, task.History...), historyLength), nil
}

func (s *InMemoryTaskStore) SetPushNotificationConfig(ctx context.Context, cfg a2a.TaskPushNotificationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[cfg.ID]; !ok {
		return a2a.ErrTaskNotFound(cfg.ID)
	}
	s.pushes[cfg.ID] = cfg
	return nil
}

func (s *InMemoryTaskStore) GetPushNotificationConfig(ctx context.Context, taskID string) (*a2a.TaskPushNotificationConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.pushes[taskID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

// snapshotLocked writes a best-effort copy of task to the optional
// snapshot store. Failures are not fatal to the in-memory operation; the
// spec's durability Non-goal makes this advisory only. Must be called with
// s.mu held.
func (s *InMemoryTaskStore) snapshotLocked(task *a2a.Task) {
	if s.snapshot == nil {
		return
	}
	raw, err := json.Marshal(task)
	if err != nil {
		return
	}
	_ = s.snapshot.Write(&gostore.Record{
		Key:    fmt.Sprintf("task/%s", task.ID),
		Value:  raw,
		Expiry: 24 * time.Hour,
	})
}

func cloneTask(t *a2a.Task) *a2a.Task {
	c := *t
	c.History = append([]a2a.Message{}, t.History...)
	c.Artifacts = append([]a2a.Artifact{}, t.Artifacts...)
	return &c
}

// truncateHistory implements history_view(task, n): n <= 0 yields an empty
// history (the default when historyLength is omitted on the wire), n at or
// beyond the full length yields it unchanged, otherwise the most recent n
// messages.
func truncateHistory(history []a2a.Message, historyLength int) []a2a.Message {
	if historyLength <= 0 {
		return nil
	}
	if historyLength >= len(history) {
		return history
	}
	return history[len(history)-historyLength:]
}
