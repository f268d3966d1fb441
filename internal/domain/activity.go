package domain

import "time"

// Activity is the canonical calendar entry stored in Postgres.
//
// Date and Time are kept as text in their canonical forms (YYYY-MM-DD and
// HH:MM). This layer does not validate them as real calendar values; ordering
// relies on the lexicographic order of the canonical forms.
type Activity struct {
	ID          int64
	Title       string
	Description string
	Date        string
	Time        string
	CreatedAt   time.Time
}
