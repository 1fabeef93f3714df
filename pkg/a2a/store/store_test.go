package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micro/micro-a2a/pkg/a2a"
)

func msg(id, text string) a2a.Message {
	return a2a.Message{MessageId: id, Role: a2a.MessageRoleUser, Parts: []a2a.Part{a2a.TextPart{Text: text}}}
}

func TestUpsertCreatesAndContinues(t *testing.T) {
	s := NewInMemoryTaskStore()
	ctx := context.Background()

	task, err := s.Upsert(ctx, a2a.TaskSendParams{ID: "t1", Message: msg("m1", "hi")})
	require.NoError(t, err)
	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, a2a.TaskStateSubmitted, task.Status.State)
	assert.Len(t, task.History, 1)

	task, err = s.Upsert(ctx, a2a.TaskSendParams{ID: "t1", Message: msg("m2", "again")})
	require.NoError(t, err)
	assert.Len(t, task.History, 2)
}

func TestUpsertGeneratesIDWhenEmpty(t *testing.T) {
	s := NewInMemoryTaskStore()
	task, err := s.Upsert(context.Background(), a2a.TaskSendParams{Message: msg("m1", "hi")})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
}

func TestGetUnknownTask(t *testing.T) {
	s := NewInMemoryTaskStore()
	_, err := s.Get(context.Background(), "nope", 0)
	require.Error(t, err)
	var rpcErr *a2a.JSONRPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, a2a.ErrorTaskNotFound, rpcErr.Code)
}

func TestGetTruncatesHistory(t *testing.T) {
	s := NewInMemoryTaskStore()
	ctx := context.Background()

	_, err := s.Upsert(ctx, a2a.TaskSendParams{ID: "t1", Message: msg("m1", "a")})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, a2a.TaskSendParams{ID: "t1", Message: msg("m2", "b")})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, a2a.TaskSendParams{ID: "t1", Message: msg("m3", "c")})
	require.NoError(t, err)

	task, err := s.Get(ctx, "t1", 2)
	require.NoError(t, err)
	require.Len(t, task.History, 2)
	assert.Equal(t, "m2", task.History[0].MessageId)
	assert.Equal(t, "m3", task.History[1].MessageId)

	empty, err := s.Get(ctx, "t1", 0)
	require.NoError(t, err)
	assert.Empty(t, empty.History, "historyLength<=0 must yield an empty history, per history_view's documented invariant")

	full, err := s.GetFull(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, full.History, 3)
}

func TestUpdateAppendsStatusMessageAndArtifact(t *testing.T) {
	s := NewInMemoryTaskStore()
	ctx := context.Background()
	_, err := s.Upsert(ctx, a2a.TaskSendParams{ID: "t1", Message: msg("m1", "hi")})
	require.NoError(t, err)

	statusMsg := msg("m2", "working on it")
	task, err := s.Update(ctx, "t1", &a2a.TaskStatus{State: a2a.TaskStateWorking, Message: &statusMsg}, nil)
	require.NoError(t, err)
	assert.Equal(t, a2a.TaskStateWorking, task.Status.State)
	assert.Len(t, task.History, 2)

	task, err = s.Update(ctx, "t1", nil, &a2a.Artifact{Name: "result"})
	require.NoError(t, err)
	require.Len(t, task.Artifacts, 1)
	assert.Equal(t, "result", task.Artifacts[0].Name)
}

func TestUpdateUnknownTask(t *testing.T) {
	s := NewInMemoryTaskStore()
	_, err := s.Update(context.Background(), "nope", &a2a.TaskStatus{State: a2a.TaskStateWorking}, nil)
	assert.Error(t, err)
}

func TestPushNotificationConfigRequiresExistingTask(t *testing.T) {
	s := NewInMemoryTaskStore()
	cfg := a2a.TaskPushNotificationConfig{ID: "missing", PushNotificationConfig: a2a.PushNotificationConfig{URL: "http://example.com"}}
	err := s.SetPushNotificationConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestPushNotificationConfigRoundTrip(t *testing.T) {
	s := NewInMemoryTaskStore()
	ctx := context.Background()
	_, err := s.Upsert(ctx, a2a.TaskSendParams{ID: "t1", Message: msg("m1", "hi")})
	require.NoError(t, err)

	cfg := a2a.TaskPushNotificationConfig{ID: "t1", PushNotificationConfig: a2a.PushNotificationConfig{URL: "http://example.com/hook"}}
	require.NoError(t, s.SetPushNotificationConfig(ctx, cfg))

	got, err := s.GetPushNotificationConfig(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "http://example.com/hook", got.PushNotificationConfig.URL)
}

func TestGetPushNotificationConfigUnset(t *testing.T) {
	s := NewInMemoryTaskStore()
	got, err := s.GetPushNotificationConfig(context.Background(), "t1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	s := NewInMemoryTaskStore()
	ctx := context.Background()
	_, err := s.Upsert(ctx, a2a.TaskSendParams{ID: "t1", Message: msg("m1", "hi")})
	require.NoError(t, err)

	task, err := s.GetFull(ctx, "t1")
	require.NoError(t, err)
	task.History[0].MessageId = "mutated"

	again, err := s.GetFull(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "m1", again.History[0].MessageId)
}
