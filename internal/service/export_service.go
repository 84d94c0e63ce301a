package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"daylog/internal/domain"
	"daylog/internal/metrics"
	"daylog/internal/storage"
)

// Export describes an uploaded activity archive.
type Export struct {
	Key       string
	URL       string
	Count     int
	CreatedAt time.Time
}

// ExportService writes an owner's full activity history to object storage.
type ExportService interface {
	Export(ctx context.Context, viewer domain.Viewer) (*Export, error)
	List(ctx context.Context, viewer domain.Viewer) ([]storage.ObjectInfo, error)
	Purge(ctx context.Context, viewer domain.Viewer) error
}

type ExportOptions struct {
	Bucket    string
	KeyPrefix string
	URLTTL    time.Duration
}

type exportService struct {
	activities ActivityService
	store      storage.Service
	opts       ExportOptions
	now        func() time.Time
}

// NewExportService returns a service that reports ErrExportDisabled for every
// call when store is nil or no bucket is configured.
func NewExportService(activities ActivityService, store storage.Service, opts ExportOptions) ExportService {
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "exports"
	}
	if opts.URLTTL <= 0 {
		opts.URLTTL = 15 * time.Minute
	}
	return &exportService{
		activities: activities,
		store:      store,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type exportDocument struct {
	UserID     int64              `json:"user_id"`
	ExportedAt time.Time          `json:"exported_at"`
	Activities []exportedActivity `json:"activities"`
}

type exportedActivity struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Mood         string    `json:"mood"`
	Category     string    `json:"category"`
	Privacy      string    `json:"privacy"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	LocationText string    `json:"location_text,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *exportService) Export(ctx context.Context, viewer domain.Viewer) (*Export, error) {
	if err := s.check(viewer); err != nil {
		return nil, err
	}

	seq, err := s.activities.ListForOwner(ctx, viewer, viewer.UserID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	doc := exportDocument{UserID: viewer.UserID, ExportedAt: now, Activities: []exportedActivity{}}
	for activity, err := range seq {
		if err != nil {
			return nil, err
		}
		doc.Activities = append(doc.Activities, toExported(activity))
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := path.Join(s.userPrefix(viewer), uuid.NewString()+".json")
	if err := s.store.PutObject(ctx, s.opts.Bucket, key, "application/json", bytes.NewReader(body)); err != nil {
		return nil, err
	}
	url, err := s.store.GetObjectURL(ctx, s.opts.Bucket, key, s.opts.URLTTL)
	if err != nil {
		return nil, err
	}
	metrics.RecordExport()

	return &Export{
		Key:       key,
		URL:       url,
		Count:     len(doc.Activities),
		CreatedAt: now,
	}, nil
}

func (s *exportService) List(ctx context.Context, viewer domain.Viewer) ([]storage.ObjectInfo, error) {
	if err := s.check(viewer); err != nil {
		return nil, err
	}
	return s.store.ListObjects(ctx, s.opts.Bucket, s.userPrefix(viewer)+"/")
}

func (s *exportService) Purge(ctx context.Context, viewer domain.Viewer) error {
	if err := s.check(viewer); err != nil {
		return err
	}
	return s.store.DeletePrefix(ctx, s.opts.Bucket, s.userPrefix(viewer)+"/")
}

func (s *exportService) check(viewer domain.Viewer) error {
	if s.store == nil || s.opts.Bucket == "" {
		return domain.ErrExportDisabled
	}
	if !viewer.Authenticated() {
		return domain.ErrForbidden
	}
	return nil
}

func (s *exportService) userPrefix(viewer domain.Viewer) string {
	return path.Join(s.opts.KeyPrefix, strconv.FormatInt(viewer.UserID, 10))
}

func toExported(a domain.Activity) exportedActivity {
	out := exportedActivity{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Mood:         string(a.Mood),
		Category:     string(a.Category),
		Privacy:      string(a.Privacy),
		LocationText: a.LocationText,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.Location != nil {
		lat, lng := a.Location.Lat, a.Location.Lng
		out.Latitude = &lat
		out.Longitude = &lng
	}
	return out
}
