package service

import (
	"context"
	"fmt"
	"iter"

	"daylog/internal/domain"
	"daylog/internal/metrics"
	"daylog/internal/repository"
	"daylog/internal/visibility"
)

// ActivityService coordinates activity reads and writes on behalf of a viewer.
// Update and Delete refuse non-owners; every listing passes rows through the
// visibility policy before yielding them.
type ActivityService interface {
	Create(ctx context.Context, viewer domain.Viewer, in domain.CreateActivityInput) (*domain.Activity, error)
	Update(ctx context.Context, activityID int64, viewer domain.Viewer, in domain.UpdateActivityInput) (*domain.Activity, error)
	Delete(ctx context.Context, activityID int64, viewer domain.Viewer) error
	// GetByID is the unscoped lookup. Callers exposing the result must check visibility.CanView.
	GetByID(ctx context.Context, activityID int64) (*domain.Activity, error)
	// Get returns ErrNotFound for activities the viewer may not see.
	Get(ctx context.Context, viewer domain.Viewer, activityID int64) (*domain.Activity, error)
	ListForViewer(ctx context.Context, viewer domain.Viewer, filter domain.ActivityFilter) iter.Seq2[domain.Activity, error]
	ListForOwner(ctx context.Context, viewer domain.Viewer, ownerID int64) (iter.Seq2[domain.Activity, error], error)
}

type activityService struct {
	activities repository.ActivityRepository
}

func NewActivityService(activities repository.ActivityRepository) ActivityService {
	return &activityService{activities: activities}
}

func (s *activityService) Create(ctx context.Context, viewer domain.Viewer, in domain.CreateActivityInput) (*domain.Activity, error) {
	if !viewer.Authenticated() {
		return nil, domain.ErrForbidden
	}
	fields, err := in.Validate()
	if err != nil {
		return nil, err
	}

	activity := &domain.Activity{
		OwnerID:      viewer.UserID,
		Title:        fields.Title,
		Description:  fields.Description,
		Mood:         fields.Mood,
		Category:     fields.Category,
		Privacy:      fields.Privacy,
		Location:     fields.Location,
		LocationText: fields.LocationText,
	}
	id, err := s.activities.Create(ctx, activity)
	if err != nil {
		return nil, err
	}
	metrics.RecordActivityWrite("create", string(activity.Privacy))

	return s.activities.Get(ctx, id)
}

func (s *activityService) Update(ctx context.Context, activityID int64, viewer domain.Viewer, in domain.UpdateActivityInput) (*domain.Activity, error) {
	activity, err := s.activities.Get(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if !visibility.CanEdit(viewer, *activity) {
		return nil, fmt.Errorf("edit activity %d: %w", activityID, domain.ErrForbidden)
	}

	patch, err := in.Validate()
	if err != nil {
		return nil, err
	}
	patch.Apply(activity)

	if err := s.activities.Update(ctx, activity); err != nil {
		return nil, err
	}
	metrics.RecordActivityWrite("update", string(activity.Privacy))

	return s.activities.Get(ctx, activityID)
}

func (s *activityService) Delete(ctx context.Context, activityID int64, viewer domain.Viewer) error {
	activity, err := s.activities.Get(ctx, activityID)
	if err != nil {
		return err
	}
	if !visibility.CanEdit(viewer, *activity) {
		return fmt.Errorf("delete activity %d: %w", activityID, domain.ErrForbidden)
	}
	if err := s.activities.Delete(ctx, activityID, viewer.UserID); err != nil {
		return err
	}
	metrics.RecordActivityWrite("delete", string(activity.Privacy))
	return nil
}

func (s *activityService) GetByID(ctx context.Context, activityID int64) (*domain.Activity, error) {
	return s.activities.Get(ctx, activityID)
}

func (s *activityService) Get(ctx context.Context, viewer domain.Viewer, activityID int64) (*domain.Activity, error) {
	activity, err := s.activities.Get(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if !visibility.CanView(viewer, *activity) {
		return nil, fmt.Errorf("activity %d: %w", activityID, domain.ErrNotFound)
	}
	return activity, nil
}

func (s *activityService) ListForViewer(ctx context.Context, viewer domain.Viewer, filter domain.ActivityFilter) iter.Seq2[domain.Activity, error] {
	candidates := s.activities.Scan(ctx, filter)
	return func(yield func(domain.Activity, error) bool) {
		yielded := 0
		for activity, err := range candidates {
			if err != nil {
				yield(domain.Activity{}, err)
				return
			}
			if !visibility.CanView(viewer, activity) {
				continue
			}
			if !yield(activity, nil) {
				return
			}
			yielded++
			if filter.Limit > 0 && yielded >= filter.Limit {
				return
			}
		}
	}
}

func (s *activityService) ListForOwner(ctx context.Context, viewer domain.Viewer, ownerID int64) (iter.Seq2[domain.Activity, error], error) {
	if !viewer.Is(ownerID) {
		return nil, fmt.Errorf("list activities of user %d: %w", ownerID, domain.ErrForbidden)
	}
	return s.activities.Scan(ctx, domain.ActivityFilter{OwnerID: ownerID}), nil
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[domain.Activity, error]) ([]domain.Activity, error) {
	out := []domain.Activity{}
	for activity, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, activity)
	}
	return out, nil
}
