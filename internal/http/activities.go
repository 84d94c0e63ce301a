package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"daylog/internal/domain"
	"daylog/internal/service"
)

const (
	defaultFeedLimit = 50
	maxFeedLimit     = 100
)

func (h *Handler) feed(c *gin.Context) {
	filter, err := feedFilter(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	viewer := viewerFrom(c)
	activities, err := service.Collect(h.activities.ListForViewer(c.Request.Context(), viewer, filter))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activitiesToResponse(viewer, activities))
}

func feedFilter(c *gin.Context) (domain.ActivityFilter, error) {
	filter := domain.ActivityFilter{Limit: defaultFeedLimit}
	verr := &domain.ValidationError{}

	if raw := c.Query("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			verr.Add("category", "is invalid")
		}
		filter.Category = category
	}
	if raw := c.Query("mood"); raw != "" {
		mood, err := domain.ParseMood(raw)
		if err != nil {
			verr.Add("mood", "is invalid")
		}
		filter.Mood = mood
	}
	if raw := c.Query("owner"); raw != "" {
		owner, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || owner <= 0 {
			verr.Add("owner", "is invalid")
		}
		filter.OwnerID = owner
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			verr.Add("limit", "is invalid")
		}
		filter.Limit = min(limit, maxFeedLimit)
	}

	if err := verr.Err(); err != nil {
		return domain.ActivityFilter{}, err
	}
	return filter, nil
}

func (h *Handler) myActivities(c *gin.Context) {
	viewer := viewerFrom(c)
	seq, err := h.activities.ListForOwner(c.Request.Context(), viewer, viewer.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	activities, err := service.Collect(seq)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activitiesToResponse(viewer, activities))
}

func (h *Handler) createActivity(c *gin.Context) {
	var req domain.CreateActivityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := viewerFrom(c)
	activity, err := h.activities.Create(c.Request.Context(), viewer, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, activityToResponse(viewer, *activity))
}

func (h *Handler) getActivity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	viewer := viewerFrom(c)
	activity, err := h.activities.Get(c.Request.Context(), viewer, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activityToResponse(viewer, *activity))
}

func (h *Handler) updateActivity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req domain.UpdateActivityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := viewerFrom(c)
	activity, err := h.activities.Update(c.Request.Context(), id, viewer, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activityToResponse(viewer, *activity))
}

func (h *Handler) deleteActivity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.activities.Delete(c.Request.Context(), id, viewerFrom(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
