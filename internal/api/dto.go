package api

import (
	"errors"
	"strings"
	"time"

	"example.com/calendar/internal/domain"
)

// CreateActivityRequest is the payload for POST /api/activities.
type CreateActivityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Validate ensures request correctness.
func (r CreateActivityRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(r.Date) == "" {
		return errors.New("date is required")
	}
	return nil
}

// UpdateActivityRequest is the payload for PUT /api/activities/{id}. Omitted
// fields (nil pointers) are left unchanged.
type UpdateActivityRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
}

// ActivityView exposes full details about an activity.
type ActivityView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DeleteActivityResponse confirms a delete with the removed record's identity.
type DeleteActivityResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Date    string `json:"date"`
}

// ChatRequest is the payload for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// Validate ensures request correctness.
func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return errors.New("message is required")
	}
	return nil
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Response string `json:"response"`
}

func toActivityView(activity domain.Activity) ActivityView {
	return ActivityView{
		ID:          activity.ID,
		Title:       activity.Title,
		Description: activity.Description,
		Date:        activity.Date,
		Time:        activity.Time,
		CreatedAt:   activity.CreatedAt,
	}
}
