package chat

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/calendar/internal/domain"
	"example.com/calendar/internal/events"
	"example.com/calendar/internal/llm"
	"example.com/calendar/internal/persistence/memory"
)

func newExecutor() (*Executor, *domain.Service, *capturePublisher) {
	publisher := &capturePublisher{}
	service := domain.NewService(memory.NewRepository(), publisher)
	return NewExecutor(service), service, publisher
}

func execute(t *testing.T, e *Executor, name, args string) map[string]interface{} {
	t.Helper()
	content := e.Execute(context.Background(), llm.ToolCall{ID: "call", Name: name, Arguments: args})
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(content), &decoded), "tool results must be JSON text: %s", content)
	return decoded
}

func TestExecuteCreateActivity(t *testing.T) {
	e, service, publisher := newExecutor()

	result := execute(t, e, toolCreateActivity, `{"title":"Standup","date":"2024-03-01","time":"09:30"}`)
	require.Equal(t, "Standup", result["title"])
	require.Equal(t, "2024-03-01", result["date"])
	require.NotZero(t, result["id"])
	require.NotEmpty(t, result["created_at"])

	listed, err := service.ListActivities(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.Len(t, publisher.published, 1)
	require.Equal(t, events.ActivityCreated, publisher.published[0].Event)
}

func TestExecuteCreateActivityValidation(t *testing.T) {
	e, _, publisher := newExecutor()

	result := execute(t, e, toolCreateActivity, `{"date":"2024-03-01"}`)
	require.Contains(t, result["error"], "title is required")
	require.Empty(t, publisher.published)
}

func TestExecuteUpdateResolvesByTitleEarliestDate(t *testing.T) {
	e, service, publisher := newExecutor()
	ctx := context.Background()

	a, err := service.CreateActivity(ctx, domain.CreateActivityInput{Title: "T", Date: "2024-01-01"})
	require.NoError(t, err)
	b, err := service.CreateActivity(ctx, domain.CreateActivityInput{Title: "T", Date: "2024-02-01"})
	require.NoError(t, err)
	publisher.published = nil

	result := execute(t, e, toolUpdateActivity, `{"title":"T","time":"08:00"}`)
	require.EqualValues(t, a.ID, result["id"])
	require.Equal(t, "08:00", result["time"])

	// The later record is untouched.
	unchanged, err := service.GetActivity(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "", unchanged.Time)

	require.Len(t, publisher.published, 1)
	require.Equal(t, events.ActivityUpdated, publisher.published[0].Event)
}

func TestExecuteUpdateDistinguishesClearFromOmit(t *testing.T) {
	e, service, _ := newExecutor()
	ctx := context.Background()

	created, err := service.CreateActivity(ctx, domain.CreateActivityInput{
		Title: "Dentist", Description: "bring card", Date: "2024-03-02", Time: "11:00",
	})
	require.NoError(t, err)

	result := execute(t, e, toolUpdateActivity, `{"id":`+jsonInt(created.ID)+`,"description":""}`)
	_, hasDescription := result["description"]
	require.False(t, hasDescription, "cleared description must be empty")
	require.Equal(t, "11:00", result["time"], "omitted time must be unchanged")
}

func TestExecuteUpdateNotFound(t *testing.T) {
	e, _, _ := newExecutor()

	result := execute(t, e, toolUpdateActivity, `{"id":42,"time":"08:00"}`)
	require.Equal(t, "activity not found", result["error"])
}

func TestExecuteDeleteByDateEarliestTime(t *testing.T) {
	e, service, publisher := newExecutor()
	ctx := context.Background()

	early, err := service.CreateActivity(ctx, domain.CreateActivityInput{Title: "Early", Date: "2024-03-01", Time: "08:00"})
	require.NoError(t, err)
	_, err = service.CreateActivity(ctx, domain.CreateActivityInput{Title: "Late", Date: "2024-03-01", Time: "18:00"})
	require.NoError(t, err)
	publisher.published = nil

	result := execute(t, e, toolDeleteActivity, `{"date":"2024-03-01"}`)
	require.EqualValues(t, early.ID, result["id"])
	require.Equal(t, "Early", result["title"])
	require.Equal(t, "2024-03-01", result["date"])
	require.Equal(t, "Activity deleted successfully", result["message"])

	require.Len(t, publisher.published, 1)
	require.Equal(t, events.ActivityDeleted, publisher.published[0].Event)

	_, err = service.GetActivity(ctx, early.ID)
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestExecuteInvalidArguments(t *testing.T) {
	e, _, _ := newExecutor()

	result := execute(t, e, toolCreateActivity, `{"title":`)
	require.Contains(t, result["error"], "invalid arguments for create_activity")
}

func TestExecuteUnknownTool(t *testing.T) {
	e, _, _ := newExecutor()

	result := execute(t, e, "bogus_tool", `{}`)
	require.Contains(t, result["error"], "unknown tool: bogus_tool")
}

func jsonInt(v int64) string {
	data, _ := json.Marshal(v)
	return string(data)
}
