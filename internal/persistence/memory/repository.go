// Package memory provides an in-memory ActivityRepository for local
// development and unit tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"example.com/calendar/internal/domain"
)

// Repository stores activities in memory behind a mutex.
type Repository struct {
	mu         sync.RWMutex
	activities map[int64]domain.Activity
	nextID     int64
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		activities: make(map[int64]domain.Activity),
		nextID:     1,
	}
}

// List returns all activities ordered by (date, time, id) ascending.
func (r *Repository) List(ctx context.Context) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(func(domain.Activity) bool { return true }), nil
}

// Get returns the activity with the given id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id int64) (*domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity, ok := r.activities[id]
	if !ok {
		return nil, nil
	}
	return &activity, nil
}

// FindByTitleAndDate returns the earliest activity matching both fields.
func (r *Repository) FindByTitleAndDate(ctx context.Context, title, date string) (*domain.Activity, error) {
	return r.first(func(a domain.Activity) bool { return a.Title == title && a.Date == date })
}

// FindByTitle returns the earliest-ordered activity with the given title.
func (r *Repository) FindByTitle(ctx context.Context, title string) (*domain.Activity, error) {
	return r.first(func(a domain.Activity) bool { return a.Title == title })
}

// FindByDate returns the earliest activity on the given date.
func (r *Repository) FindByDate(ctx context.Context, date string) (*domain.Activity, error) {
	return r.first(func(a domain.Activity) bool { return a.Date == date })
}

// Create assigns the next id and stores the activity.
func (r *Repository) Create(ctx context.Context, activity domain.Activity) (*domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity.ID = r.nextID
	r.nextID++
	r.activities[activity.ID] = activity
	return &activity, nil
}

// Update applies the non-nil fields and returns the updated record, or nil
// when the id is unknown.
func (r *Repository) Update(ctx context.Context, id int64, input domain.UpdateActivityInput) (*domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[id]
	if !ok {
		return nil, nil
	}
	if input.Title != nil {
		activity.Title = *input.Title
	}
	if input.Description != nil {
		activity.Description = *input.Description
	}
	if input.Date != nil {
		activity.Date = *input.Date
	}
	if input.Time != nil {
		activity.Time = *input.Time
	}
	r.activities[id] = activity
	return &activity, nil
}

// Delete removes the activity and returns the removed record, or nil when
// the id is unknown.
func (r *Repository) Delete(ctx context.Context, id int64) (*domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[id]
	if !ok {
		return nil, nil
	}
	delete(r.activities, id)
	return &activity, nil
}

func (r *Repository) first(match func(domain.Activity) bool) (*domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := r.sortedLocked(match)
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (r *Repository) sortedLocked(match func(domain.Activity) bool) []domain.Activity {
	out := make([]domain.Activity, 0, len(r.activities))
	for _, activity := range r.activities {
		if match(activity) {
			out = append(out, activity)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out
}
