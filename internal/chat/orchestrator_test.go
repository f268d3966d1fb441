package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/calendar/internal/domain"
	"example.com/calendar/internal/events"
	"example.com/calendar/internal/llm"
	"example.com/calendar/internal/persistence/memory"
)

type fakeClient struct {
	ready     error
	responses []llm.ChatResponse
	requests  []llm.ChatRequest
}

func (f *fakeClient) Ready() error { return f.ready }

func (f *fakeClient) CreateChatCompletion(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	f.requests = append(f.requests, req)
	if len(f.responses) == 0 {
		return llm.ChatResponse{}, fmt.Errorf("%w: no scripted response", llm.ErrService)
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

type capturePublisher struct {
	published []events.ActivityChanged
}

func (p *capturePublisher) PublishActivityChanged(event string, payload events.ActivityPayload) {
	p.published = append(p.published, events.ActivityChanged{Event: event, Activity: payload})
}

func newOrchestrator(client llm.Client) (*Orchestrator, *domain.Service, *capturePublisher) {
	publisher := &capturePublisher{}
	service := domain.NewService(memory.NewRepository(), publisher)
	o := NewOrchestrator(client, service)
	o.now = func() time.Time { return time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC) }
	return o, service, publisher
}

func TestRespondFailsFastWithoutCredential(t *testing.T) {
	client := &fakeClient{ready: llm.ErrMissingAPIKey}
	o, _, _ := newOrchestrator(client)

	_, err := o.Respond(context.Background(), "hello")
	require.ErrorIs(t, err, llm.ErrMissingAPIKey)
	require.Empty(t, client.requests, "no model call may happen without a credential")
}

func TestRespondWithoutToolCalls(t *testing.T) {
	client := &fakeClient{responses: []llm.ChatResponse{
		{Content: "You have Standup tomorrow at 09:30."},
	}}
	o, service, publisher := newOrchestrator(client)

	_, err := service.CreateActivity(context.Background(), domain.CreateActivityInput{
		Title: "Standup", Date: "2024-02-29", Time: "09:30",
	})
	require.NoError(t, err)
	publisher.published = nil

	answer, err := o.Respond(context.Background(), "What's on my calendar tomorrow?")
	require.NoError(t, err)
	require.Equal(t, "You have Standup tomorrow at 09:30.", answer)

	require.Len(t, client.requests, 1)
	require.Len(t, client.requests[0].Tools, 3)

	system := client.requests[0].Messages[0]
	require.Equal(t, llm.RoleSystem, system.Role)
	require.Contains(t, system.Content, "Current date: 2024-02-28")
	require.Contains(t, system.Content, "Standup on 2024-02-29 at 09:30")

	require.Empty(t, publisher.published, "a read-only turn must not mutate")
}

func TestRespondEmptyCalendarNotice(t *testing.T) {
	client := &fakeClient{responses: []llm.ChatResponse{{Content: "Your calendar is empty."}}}
	o, _, _ := newOrchestrator(client)

	_, err := o.Respond(context.Background(), "anything planned?")
	require.NoError(t, err)
	require.Contains(t, client.requests[0].Messages[0].Content, "There are no activities in the calendar.")
}

func TestRespondDispatchesCreateToolCall(t *testing.T) {
	client := &fakeClient{responses: []llm.ChatResponse{
		{ToolCalls: []llm.ToolCall{{
			ID:        "call_1",
			Name:      "create_activity",
			Arguments: `{"title":"Standup","date":"2024-03-01"}`,
		}}},
		{Content: "Done: Standup is scheduled for 2024-03-01."},
	}}
	o, service, publisher := newOrchestrator(client)

	answer, err := o.Respond(context.Background(), "Create a meeting titled Standup on 2024-03-01")
	require.NoError(t, err)
	require.Equal(t, "Done: Standup is scheduled for 2024-03-01.", answer)

	listed, err := service.ListActivities(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "Standup", listed[0].Title)

	require.Len(t, publisher.published, 1)
	require.Equal(t, events.ActivityCreated, publisher.published[0].Event)
	require.Equal(t, listed[0].ID, publisher.published[0].Activity.ID)

	// Second call carries the augmented conversation and no tool definitions.
	require.Len(t, client.requests, 2)
	second := client.requests[1]
	require.Empty(t, second.Tools)

	assistant := second.Messages[2]
	require.Equal(t, llm.RoleAssistant, assistant.Role)
	require.Len(t, assistant.ToolCalls, 1)

	toolMsg := second.Messages[3]
	require.Equal(t, llm.RoleTool, toolMsg.Role)
	require.Equal(t, "call_1", toolMsg.ToolCallID)
	require.Contains(t, toolMsg.Content, `"title":"Standup"`)
}

func TestRespondUnknownToolYieldsInlineError(t *testing.T) {
	client := &fakeClient{responses: []llm.ChatResponse{
		{ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "reboot_universe", Arguments: "{}"}}},
		{Content: "I cannot do that."},
	}}
	o, _, publisher := newOrchestrator(client)

	answer, err := o.Respond(context.Background(), "reboot the universe")
	require.NoError(t, err)
	require.Equal(t, "I cannot do that.", answer)

	toolMsg := client.requests[1].Messages[3]
	require.Contains(t, toolMsg.Content, "unknown tool: reboot_universe")
	require.Empty(t, publisher.published)
}

func TestRespondNotFoundIsFedBackAsToolResult(t *testing.T) {
	client := &fakeClient{responses: []llm.ChatResponse{
		{ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "delete_activity", Arguments: `{"id":42}`}}},
		{Content: "There was nothing to delete."},
	}}
	o, _, _ := newOrchestrator(client)

	answer, err := o.Respond(context.Background(), "delete activity 42")
	require.NoError(t, err)
	require.Equal(t, "There was nothing to delete.", answer)

	toolMsg := client.requests[1].Messages[3]
	require.Contains(t, toolMsg.Content, "activity not found")
}

func TestRespondSurfacesServiceError(t *testing.T) {
	client := &fakeClient{}
	o, _, _ := newOrchestrator(client)

	_, err := o.Respond(context.Background(), "hello")
	require.ErrorIs(t, err, llm.ErrService)
}

func TestSystemPromptRendersDescriptions(t *testing.T) {
	prompt := systemPrompt([]domain.Activity{
		{ID: 7, Title: "Dentist", Date: "2024-03-02", Time: "11:00", Description: "bring insurance card"},
		{ID: 8, Title: "Holiday", Date: "2024-03-04"},
	}, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))

	require.Contains(t, prompt, "Current date: 2024-03-01")
	require.Contains(t, prompt, "[id 7] Dentist on 2024-03-02 at 11:00 - bring insurance card")
	require.Contains(t, prompt, "[id 8] Holiday on 2024-03-04")
	require.False(t, strings.Contains(prompt, "Holiday on 2024-03-04 at"))
}
