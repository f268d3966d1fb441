// Package domain defines the business logic for the calendar service.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"example.com/calendar/internal/events"
)

var (
	// ErrActivityNotFound is returned when an activity cannot be located,
	// whether by id or by the title/date fallback lookup.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrValidation marks rejected input; the wrapped message names the field.
	ErrValidation = errors.New("validation failed")
)

// ActivityRepository captures persistence operations. Lookups return
// (nil, nil) when no row matches; the service maps that to ErrActivityNotFound.
type ActivityRepository interface {
	List(ctx context.Context) ([]Activity, error)
	Get(ctx context.Context, id int64) (*Activity, error)
	FindByTitleAndDate(ctx context.Context, title, date string) (*Activity, error)
	FindByTitle(ctx context.Context, title string) (*Activity, error)
	FindByDate(ctx context.Context, date string) (*Activity, error)
	Create(ctx context.Context, activity Activity) (*Activity, error)
	Update(ctx context.Context, id int64, input UpdateActivityInput) (*Activity, error)
	Delete(ctx context.Context, id int64) (*Activity, error)
}

// Service orchestrates activity workflows and emits one change event per
// successful mutation, after the store commit and before returning.
type Service struct {
	repo      ActivityRepository
	publisher events.Publisher
}

// NewService constructs a Service. A nil publisher disables events.
func NewService(repo ActivityRepository, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher}
}

// CreateActivityInput captures the payload from the API layer or a tool call.
type CreateActivityInput struct {
	Title       string
	Description string
	Date        string
	Time        string
}

// UpdateActivityInput applies only the fields that are non-nil; a nil pointer
// means "leave unchanged", which is distinct from a pointer to the empty
// string ("clear the field").
type UpdateActivityInput struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
}

func (in UpdateActivityInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Date == nil && in.Time == nil
}

// TargetRef identifies an activity for update/delete when the caller may not
// know the id. Resolution precedence: id, then title+date, then title alone
// (earliest by date and time), then date alone (earliest by time).
type TargetRef struct {
	ID    *int64
	Title string
	Date  string
}

// ListActivities returns all activities ordered by (date, time) ascending.
func (s *Service) ListActivities(ctx context.Context) ([]Activity, error) {
	return s.repo.List(ctx)
}

// GetActivity fetches by id.
func (s *Service) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	activity, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// CreateActivity validates required fields, persists the record, and
// publishes a "created" event carrying the full new record.
func (s *Service) CreateActivity(ctx context.Context, input CreateActivityInput) (*Activity, error) {
	title := strings.TrimSpace(input.Title)
	date := strings.TrimSpace(input.Date)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}

	activity, err := s.repo.Create(ctx, Activity{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Date:        date,
		Time:        strings.TrimSpace(input.Time),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishActivityChanged(events.ActivityCreated, toPayload(*activity))
	return activity, nil
}

// UpdateActivity applies the supplied fields to the activity, leaving omitted
// fields untouched, and publishes an "updated" event with the post-update
// record. Clearing title or date is rejected; they are always present.
func (s *Service) UpdateActivity(ctx context.Context, id int64, input UpdateActivityInput) (*Activity, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if input.Date != nil && strings.TrimSpace(*input.Date) == "" {
		return nil, fmt.Errorf("%w: date cannot be empty", ErrValidation)
	}

	if input.empty() {
		// Nothing to change; still confirm the target exists.
		return s.GetActivity(ctx, id)
	}

	activity, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}

	s.publisher.PublishActivityChanged(events.ActivityUpdated, toPayload(*activity))
	return activity, nil
}

// DeleteActivity removes the activity and publishes a "deleted" event with
// the removed record. The returned record backs the confirmation payload.
func (s *Service) DeleteActivity(ctx context.Context, id int64) (*Activity, error) {
	activity, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}

	s.publisher.PublishActivityChanged(events.ActivityDeleted, toPayload(*activity))
	return activity, nil
}

// ResolveTarget finds the activity a TargetRef points at, following the
// documented precedence. An unresolvable ref yields ErrActivityNotFound.
func (s *Service) ResolveTarget(ctx context.Context, ref TargetRef) (*Activity, error) {
	title := strings.TrimSpace(ref.Title)
	date := strings.TrimSpace(ref.Date)

	var (
		activity *Activity
		err      error
	)
	switch {
	case ref.ID != nil:
		activity, err = s.repo.Get(ctx, *ref.ID)
	case title != "" && date != "":
		activity, err = s.repo.FindByTitleAndDate(ctx, title, date)
	case title != "":
		activity, err = s.repo.FindByTitle(ctx, title)
	case date != "":
		activity, err = s.repo.FindByDate(ctx, date)
	default:
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

func toPayload(a Activity) events.ActivityPayload {
	return events.ActivityPayload{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Date:        a.Date,
		Time:        a.Time,
		CreatedAt:   a.CreatedAt,
	}
}
