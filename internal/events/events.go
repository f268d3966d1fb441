// Package events defines the activity-change payloads shared by the CRUD
// handlers, the chat tool executor, and the realtime hub.
package events

import "time"

// Event names carried on the realtime channel.
const (
	ActivityCreated = "created"
	ActivityUpdated = "updated"
	ActivityDeleted = "deleted"
)

// ActivityPayload is the record shape exchanged with clients.
type ActivityPayload struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityChanged is the message pushed to every subscriber when an activity
// is created, updated, or deleted.
type ActivityChanged struct {
	Event    string          `json:"event"`
	Activity ActivityPayload `json:"activity"`
}

// Publisher delivers activity-change events to whoever is listening. Delivery
// is best effort; implementations must never block or fail the caller.
type Publisher interface {
	PublishActivityChanged(event string, payload ActivityPayload)
}

// NopPublisher discards every event. Useful for tests and tooling that do not
// need the realtime channel.
type NopPublisher struct{}

// PublishActivityChanged implements Publisher.
func (NopPublisher) PublishActivityChanged(string, ActivityPayload) {}
