// Package llm wraps the chat-completion provider behind a narrow interface.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrMissingAPIKey indicates the provider credential was never configured.
	// Chat requests fail fast on it, before any model call.
	ErrMissingAPIKey = errors.New("llm api key not configured")
	// ErrService marks any failure talking to the provider.
	ErrService = errors.New("llm service error")
)

// Message roles, mirroring the OpenAI chat-completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of a conversation.
type Message struct {
	Role       string
	Content    string
	ToolCallID string
	ToolCalls  []ToolCall
}

// ToolCall is a structured function-call request from the model. Arguments is
// the raw JSON argument text; ID is the provider's correlation token.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDef describes one function tool exposed to the model. Parameters is a
// JSON-schema object.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ChatRequest carries one completion call: the conversation so far plus the
// tools the model may invoke (nil disables tool use).
type ChatRequest struct {
	Messages []Message
	Tools    []ToolDef
}

// ChatResponse is the model's reply: plain text, tool calls, or both.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// Client is the chat-completion boundary consumed by the orchestrator.
type Client interface {
	// Ready reports whether the client is usable; ErrMissingAPIKey when the
	// credential is absent.
	Ready() error
	CreateChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error)
}
