package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"daylog/internal/domain"
	"daylog/internal/repository"
)

var createActivitiesSchema = []string{`
CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	mood TEXT NOT NULL,
	category TEXT NOT NULL,
	privacy TEXT NOT NULL,
	latitude REAL NULL,
	longitude REAL NULL,
	location_text TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	CHECK ((latitude IS NULL) = (longitude IS NULL))
);`,
	`CREATE INDEX IF NOT EXISTS idx_activities_created ON activities (created_at DESC, id DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user ON activities (user_id);`,
}

const selectActivity = `
SELECT a.id, a.user_id, u.username, a.title, a.description, a.mood, a.category, a.privacy,
	a.latitude, a.longitude, a.location_text, a.created_at, a.updated_at
FROM activities a
JOIN users u ON u.id = a.user_id`

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) repository.ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Init(ctx context.Context) error {
	if err := execAll(ctx, r.db, createActivitiesSchema...); err != nil {
		return fmt.Errorf("create activities table: %w", err)
	}
	return nil
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) (int64, error) {
	now := time.Now().UTC()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	lat, lng := locationArgs(activity.Location)
	res, err := r.db.ExecContext(ctx, `
INSERT INTO activities (user_id, title, description, mood, category, privacy, latitude, longitude, location_text, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.OwnerID,
		activity.Title,
		activity.Description,
		string(activity.Mood),
		string(activity.Category),
		string(activity.Privacy),
		lat,
		lng,
		activity.LocationText,
		activity.CreatedAt,
		activity.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("activity owner %d: %w", activity.OwnerID, domain.ErrNotFound)
		}
		return 0, domain.NewStorageError("insert activity", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.NewStorageError("activity last insert id", err)
	}
	activity.ID = id
	return id, nil
}

func (r *ActivityRepository) Get(ctx context.Context, id int64) (*domain.Activity, error) {
	row := r.db.QueryRowContext(ctx, selectActivity+`
WHERE a.id = ?`, id)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("activity %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return activity, nil
}

func (r *ActivityRepository) Update(ctx context.Context, activity *domain.Activity) error {
	activity.UpdatedAt = time.Now().UTC()

	lat, lng := locationArgs(activity.Location)
	res, err := r.db.ExecContext(ctx, `
UPDATE activities
SET title=?, description=?, mood=?, category=?, privacy=?, latitude=?, longitude=?, location_text=?, updated_at=?
WHERE id=? AND user_id=?`,
		activity.Title,
		activity.Description,
		string(activity.Mood),
		string(activity.Category),
		string(activity.Privacy),
		lat,
		lng,
		activity.LocationText,
		activity.UpdatedAt,
		activity.ID,
		activity.OwnerID,
	)
	if err != nil {
		return domain.NewStorageError("update activity", err)
	}
	return expectRow(res, "activity")
}

func (r *ActivityRepository) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id=? AND user_id=?`, id, ownerID)
	if err != nil {
		return domain.NewStorageError("delete activity", err)
	}
	return expectRow(res, "activity")
}

func (r *ActivityRepository) Scan(ctx context.Context, filter domain.ActivityFilter) iter.Seq2[domain.Activity, error] {
	query, args := buildScanQuery(filter)
	return func(yield func(domain.Activity, error) bool) {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(domain.Activity{}, domain.NewStorageError("query activities", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			activity, err := scanActivity(rows)
			if err != nil {
				yield(domain.Activity{}, err)
				return
			}
			if !yield(*activity, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.Activity{}, domain.NewStorageError("iterate activities", err))
		}
	}
}

func buildScanQuery(filter domain.ActivityFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.OwnerID != 0 {
		where = append(where, "a.user_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Category != "" {
		where = append(where, "a.category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.Mood != "" {
		where = append(where, "a.mood = ?")
		args = append(args, string(filter.Mood))
	}

	var b strings.Builder
	b.WriteString(selectActivity)
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\nORDER BY a.created_at DESC, a.id DESC")
	return b.String(), args
}

func scanActivity(row interface {
	Scan(dest ...any) error
}) (*domain.Activity, error) {
	var (
		activity                domain.Activity
		mood, category, privacy string
		lat, lng                sql.NullFloat64
	)
	if err := row.Scan(
		&activity.ID,
		&activity.OwnerID,
		&activity.OwnerName,
		&activity.Title,
		&activity.Description,
		&mood,
		&category,
		&privacy,
		&lat,
		&lng,
		&activity.LocationText,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, domain.NewStorageError("scan activity", err)
	}
	activity.Mood = domain.Mood(mood)
	activity.Category = domain.Category(category)
	activity.Privacy = domain.Privacy(privacy)
	if lat.Valid && lng.Valid {
		activity.Location = &domain.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &activity, nil
}

func locationArgs(loc *domain.GeoPoint) (any, any) {
	if loc == nil {
		return nil, nil
	}
	return loc.Lat, loc.Lng
}
