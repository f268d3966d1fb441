// Package postgres provides Postgres-backed persistence for activities.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/calendar/internal/domain"
	"example.com/calendar/internal/observability"
)

const activityColumns = `id, title, description, "date", "time", created_at`

// Repository implements domain.ActivityRepository on a pgx pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all activities ordered by (date, time, id) ascending.
func (r *Repository) List(ctx context.Context) ([]domain.Activity, error) {
	query := fmt.Sprintf(`SELECT %s FROM activities ORDER BY "date", "time", id`, activityColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// Get retrieves an activity by id, returning nil when absent.
func (r *Repository) Get(ctx context.Context, id int64) (*domain.Activity, error) {
	query := fmt.Sprintf(`SELECT %s FROM activities WHERE id=$1`, activityColumns)
	return r.queryOne(ctx, query, id)
}

// FindByTitleAndDate returns the earliest activity matching both fields.
func (r *Repository) FindByTitleAndDate(ctx context.Context, title, date string) (*domain.Activity, error) {
	query := fmt.Sprintf(`SELECT %s FROM activities WHERE title=$1 AND "date"=$2 ORDER BY "time", id LIMIT 1`, activityColumns)
	return r.queryOne(ctx, query, title, date)
}

// FindByTitle returns the earliest-ordered activity with the given title.
func (r *Repository) FindByTitle(ctx context.Context, title string) (*domain.Activity, error) {
	query := fmt.Sprintf(`SELECT %s FROM activities WHERE title=$1 ORDER BY "date", "time", id LIMIT 1`, activityColumns)
	return r.queryOne(ctx, query, title)
}

// FindByDate returns the earliest activity on the given date.
func (r *Repository) FindByDate(ctx context.Context, date string) (*domain.Activity, error) {
	query := fmt.Sprintf(`SELECT %s FROM activities WHERE "date"=$1 ORDER BY "time", id LIMIT 1`, activityColumns)
	return r.queryOne(ctx, query, date)
}

// Create inserts the activity and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, activity domain.Activity) (*domain.Activity, error) {
	query := fmt.Sprintf(`INSERT INTO activities (title, description, "date", "time", created_at)
        VALUES ($1,$2,$3,$4,$5) RETURNING %s`, activityColumns)

	row := r.pool.QueryRow(ctx, query,
		activity.Title,
		activity.Description,
		activity.Date,
		activity.Time,
		activity.CreatedAt,
	)
	created, err := scanActivity(row)
	if err != nil {
		return nil, err
	}
	observability.RecordActivityPersisted(created.CreatedAt)
	return &created, nil
}

// Update applies only the supplied fields in a single statement and returns
// the post-update row, or nil when the id is unknown.
func (r *Repository) Update(ctx context.Context, id int64, input domain.UpdateActivityInput) (*domain.Activity, error) {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)

	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf(`%s=$%d`, column, len(args)))
	}
	appendSet("title", input.Title)
	appendSet("description", input.Description)
	appendSet(`"date"`, input.Date)
	appendSet(`"time"`, input.Time)

	if len(sets) == 0 {
		return r.Get(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE activities SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), activityColumns)

	activity, err := r.queryOne(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if activity != nil {
		observability.RecordActivityPersisted(activity.CreatedAt)
	}
	return activity, nil
}

// Delete removes the activity and returns the removed row, or nil when the
// id is unknown.
func (r *Repository) Delete(ctx context.Context, id int64) (*domain.Activity, error) {
	query := fmt.Sprintf(`DELETE FROM activities WHERE id=$1 RETURNING %s`, activityColumns)
	return r.queryOne(ctx, query, id)
}

func (r *Repository) queryOne(ctx context.Context, query string, args ...interface{}) (*domain.Activity, error) {
	row := r.pool.QueryRow(ctx, query, args...)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

func scanActivity(row pgx.Row) (domain.Activity, error) {
	var activity domain.Activity
	err := row.Scan(
		&activity.ID,
		&activity.Title,
		&activity.Description,
		&activity.Date,
		&activity.Time,
		&activity.CreatedAt,
	)
	return activity, err
}
