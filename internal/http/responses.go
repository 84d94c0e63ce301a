package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daylog/internal/domain"
	"daylog/internal/storage"
	"daylog/internal/visibility"
)

type UserResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	CreatedAt   string `json:"created_at"`
}

type SessionResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
}

type ActivityResponse struct {
	ID           int64    `json:"id"`
	OwnerID      int64    `json:"owner_id"`
	Owner        string   `json:"owner"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Mood         string   `json:"mood"`
	Category     string   `json:"category"`
	Privacy      string   `json:"privacy"`
	Latitude     *float64 `json:"lat,omitempty"`
	Longitude    *float64 `json:"lng,omitempty"`
	LocationText string   `json:"location_text,omitempty"`
	CanEdit      bool     `json:"can_edit"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type ProfileResponse struct {
	User       UserResponse       `json:"user"`
	Activities []ActivityResponse `json:"activities"`
}

type ExportResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	Count     int    `json:"count"`
	CreatedAt string `json:"created_at"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Bio:         user.Bio,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

func activityToResponse(viewer domain.Viewer, a domain.Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:           a.ID,
		OwnerID:      a.OwnerID,
		Owner:        a.OwnerName,
		Title:        a.Title,
		Description:  a.Description,
		Mood:         string(a.Mood),
		Category:     string(a.Category),
		Privacy:      string(a.Privacy),
		LocationText: a.LocationText,
		CanEdit:      visibility.CanEdit(viewer, a),
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.Format(time.RFC3339),
	}
	if a.Location != nil {
		lat, lng := a.Location.Lat, a.Location.Lng
		resp.Latitude = &lat
		resp.Longitude = &lng
	}
	return resp
}

func activitiesToResponse(viewer domain.Viewer, activities []domain.Activity) []ActivityResponse {
	resp := make([]ActivityResponse, len(activities))
	for i := range activities {
		resp[i] = activityToResponse(viewer, activities[i])
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

// writeError maps service errors onto status codes. Unexpected errors are
// logged and reported without detail.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, domain.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, domain.ErrInvalidRegistrationSecret):
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid registration secret"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrExportDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "exports are not configured"})
	default:
		entry := h.logger.WithError(err)
		if id, ok := c.Get(requestIDKey); ok {
			entry = entry.WithField("request_id", id)
		}
		if errors.Is(err, domain.ErrStorageUnavailable) {
			entry.Error("storage unavailable")
		} else {
			entry.Error("unexpected error")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
