// Package chat implements the tool-calling conversation loop between the
// calendar store and the LLM provider.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/calendar/internal/domain"
	"example.com/calendar/internal/llm"
)

const systemInstructions = `You are a helpful calendar assistant. Help the user consult and manage their activities.

Answer concisely. When asked about activities, use the calendar information above. If there is no relevant information, say so politely. Use the tools to create, update, or delete activities when the user asks for a change; never invent activity data.`

// Orchestrator runs one chat turn: grounding context, first model call with
// tool definitions, tool dispatch, and the follow-up call for the final
// natural-language answer. No state survives across requests.
type Orchestrator struct {
	client   llm.Client
	service  *domain.Service
	executor *Executor
	now      func() time.Time
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(client llm.Client, service *domain.Service) *Orchestrator {
	return &Orchestrator{
		client:   client,
		service:  service,
		executor: NewExecutor(service),
		now:      time.Now,
	}
}

// Respond handles one user message and returns the assistant's reply.
func (o *Orchestrator) Respond(ctx context.Context, message string) (string, error) {
	if err := o.client.Ready(); err != nil {
		chatRequestsCounter.WithLabelValues("config_error").Inc()
		return "", err
	}

	requestID := uuid.NewString()

	activities, err := o.service.ListActivities(ctx)
	if err != nil {
		chatRequestsCounter.WithLabelValues("store_error").Inc()
		return "", fmt.Errorf("load grounding context: %w", err)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt(activities, o.now())},
		{Role: llm.RoleUser, Content: message},
	}

	resp, err := o.client.CreateChatCompletion(ctx, llm.ChatRequest{
		Messages: messages,
		Tools:    toolDefinitions(),
	})
	if err != nil {
		chatRequestsCounter.WithLabelValues("service_error").Inc()
		return "", err
	}

	if len(resp.ToolCalls) == 0 {
		chatRequestsCounter.WithLabelValues("answered").Inc()
		return resp.Content, nil
	}

	messages = append(messages, llm.Message{
		Role:      llm.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})

	for _, call := range resp.ToolCalls {
		result := o.executor.Execute(ctx, call)
		log.Printf("chat %s: tool %s -> %s", requestID, call.Name, result)
		messages = append(messages, llm.Message{
			Role:       llm.RoleTool,
			ToolCallID: call.ID,
			Content:    result,
		})
	}

	// Second pass without tool definitions: the model summarizes the tool
	// outcomes as the final answer.
	final, err := o.client.CreateChatCompletion(ctx, llm.ChatRequest{Messages: messages})
	if err != nil {
		chatRequestsCounter.WithLabelValues("service_error").Inc()
		return "", err
	}

	chatRequestsCounter.WithLabelValues("answered_with_tools").Inc()
	return final.Content, nil
}

// systemPrompt renders the grounding block: the current date plus every
// activity as human-readable text, or an explicit empty-calendar notice.
func systemPrompt(activities []domain.Activity, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current date: %s\n\n", now.Format("2006-01-02"))
	b.WriteString(renderActivities(activities))
	b.WriteString("\n\n")
	b.WriteString(systemInstructions)
	return b.String()
}

func renderActivities(activities []domain.Activity) string {
	if len(activities) == 0 {
		return "There are no activities in the calendar."
	}

	var b strings.Builder
	b.WriteString("Activities in the calendar:\n")
	for _, a := range activities {
		fmt.Fprintf(&b, "\n- [id %d] %s on %s", a.ID, a.Title, a.Date)
		if a.Time != "" {
			fmt.Fprintf(&b, " at %s", a.Time)
		}
		if a.Description != "" {
			fmt.Fprintf(&b, " - %s", a.Description)
		}
	}
	return b.String()
}
