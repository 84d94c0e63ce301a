package repository

import (
	"context"
	"iter"

	"daylog/internal/domain"
)

// ActivityRepository exposes persistence operations for activities.
//
// Update and Delete are scoped to the owner: a row is only touched when both
// the activity id and the owner id match.
type ActivityRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, activity *domain.Activity) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Activity, error)
	Update(ctx context.Context, activity *domain.Activity) error
	Delete(ctx context.Context, id, ownerID int64) error
	// Scan streams activities matching filter, newest first. Each range
	// re-runs the query. Filter.Limit is ignored.
	Scan(ctx context.Context, filter domain.ActivityFilter) iter.Seq2[domain.Activity, error]
}
