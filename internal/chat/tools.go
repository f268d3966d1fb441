package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"example.com/calendar/internal/domain"
	"example.com/calendar/internal/llm"
)

// The closed set of tools exposed to the model. Dispatch is a switch over
// these names; anything else falls through to an inline error result so a
// misbehaving model never fails the whole turn.
const (
	toolCreateActivity = "create_activity"
	toolUpdateActivity = "update_activity"
	toolDeleteActivity = "delete_activity"
)

func toolDefinitions() []llm.ToolDef {
	return []llm.ToolDef{
		{
			Name:        toolCreateActivity,
			Description: "Create a new calendar activity.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":       map[string]interface{}{"type": "string", "description": "Title of the activity"},
					"description": map[string]interface{}{"type": "string", "description": "Optional description"},
					"date":        map[string]interface{}{"type": "string", "description": "Date in YYYY-MM-DD format"},
					"time":        map[string]interface{}{"type": "string", "description": "Optional time in HH:MM format"},
				},
				"required": []string{"title", "date"},
			},
		},
		{
			Name:        toolUpdateActivity,
			Description: "Update an existing calendar activity. Only the supplied fields change.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":          map[string]interface{}{"type": "integer", "description": "ID of the activity to update"},
					"title":       map[string]interface{}{"type": "string", "description": "New title"},
					"description": map[string]interface{}{"type": "string", "description": "New description"},
					"date":        map[string]interface{}{"type": "string", "description": "New date in YYYY-MM-DD format"},
					"time":        map[string]interface{}{"type": "string", "description": "New time in HH:MM format"},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        toolDeleteActivity,
			Description: "Delete a calendar activity.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": map[string]interface{}{"type": "integer", "description": "ID of the activity to delete"},
				},
				"required": []string{"id"},
			},
		},
	}
}

type createActivityArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// updateActivityArgs uses pointers so an omitted field is distinguishable
// from one explicitly set to the empty string. Title and date double as the
// lookup key when the model omits the id.
type updateActivityArgs struct {
	ID          *int64  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
}

type deleteActivityArgs struct {
	ID    *int64 `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// deleteConfirmation is the payload returned after a successful delete.
type deleteConfirmation struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Date    string `json:"date"`
}

// Executor runs model-requested tool calls against the domain service. Every
// outcome, including not-found and validation failures, is folded into the
// tool-result content so the model can phrase it naturally.
type Executor struct {
	service *domain.Service
}

// NewExecutor constructs an Executor.
func NewExecutor(service *domain.Service) *Executor {
	return &Executor{service: service}
}

// Execute dispatches one tool call and returns the result rendered as text.
func (e *Executor) Execute(ctx context.Context, call llm.ToolCall) string {
	var (
		result  interface{}
		err     error
		outcome = "ok"
	)

	switch call.Name {
	case toolCreateActivity:
		result, err = e.createActivity(ctx, call.Arguments)
	case toolUpdateActivity:
		result, err = e.updateActivity(ctx, call.Arguments)
	case toolDeleteActivity:
		result, err = e.deleteActivity(ctx, call.Arguments)
	default:
		toolCallsCounter.WithLabelValues(call.Name, "unknown").Inc()
		return renderResult(map[string]string{"error": fmt.Sprintf("unknown tool: %s", call.Name)})
	}

	if err != nil {
		outcome = "error"
		result = map[string]string{"error": err.Error()}
	}
	toolCallsCounter.WithLabelValues(call.Name, outcome).Inc()
	return renderResult(result)
}

func (e *Executor) createActivity(ctx context.Context, rawArgs string) (interface{}, error) {
	var args createActivityArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %v", toolCreateActivity, err)
	}

	activity, err := e.service.CreateActivity(ctx, domain.CreateActivityInput{
		Title:       args.Title,
		Description: args.Description,
		Date:        args.Date,
		Time:        args.Time,
	})
	if err != nil {
		return nil, err
	}
	return activityResult(*activity), nil
}

func (e *Executor) updateActivity(ctx context.Context, rawArgs string) (interface{}, error) {
	var args updateActivityArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %v", toolUpdateActivity, err)
	}

	target, err := e.resolveTarget(ctx, args.ID, args.Title, args.Date)
	if err != nil {
		return nil, err
	}

	activity, err := e.service.UpdateActivity(ctx, target.ID, domain.UpdateActivityInput{
		Title:       args.Title,
		Description: args.Description,
		Date:        args.Date,
		Time:        args.Time,
	})
	if err != nil {
		return nil, err
	}
	return activityResult(*activity), nil
}

func (e *Executor) deleteActivity(ctx context.Context, rawArgs string) (interface{}, error) {
	var args deleteActivityArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %v", toolDeleteActivity, err)
	}

	target, err := e.resolveTarget(ctx, args.ID, &args.Title, &args.Date)
	if err != nil {
		return nil, err
	}

	activity, err := e.service.DeleteActivity(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	return deleteConfirmation{
		Message: "Activity deleted successfully",
		ID:      activity.ID,
		Title:   activity.Title,
		Date:    activity.Date,
	}, nil
}

func (e *Executor) resolveTarget(ctx context.Context, id *int64, title, date *string) (*domain.Activity, error) {
	ref := domain.TargetRef{ID: id}
	if title != nil {
		ref.Title = *title
	}
	if date != nil {
		ref.Date = *date
	}
	return e.service.ResolveTarget(ctx, ref)
}

type activityPayload struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func activityResult(a domain.Activity) activityPayload {
	return activityPayload{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Date:        a.Date,
		Time:        a.Time,
		CreatedAt:   a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// renderResult serializes a tool result for the conversation: structured
// values as JSON text, anything unserializable via a best-effort string.
func renderResult(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
