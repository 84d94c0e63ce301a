package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daylog/internal/domain"
	"daylog/internal/service"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req domain.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.respondSession(c, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.respondSession(c, http.StatusOK, user)
}

func (h *Handler) logout(c *gin.Context) {
	h.clearSession(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondSession(c *gin.Context, status int, user *domain.User) {
	token, expires, err := h.startSession(c, user)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(status, SessionResponse{
		User:      userToResponse(user),
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), viewerFrom(c).UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req domain.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), viewerFrom(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), viewerFrom(c), req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// profile shows a user with the activities the current viewer may see.
func (h *Handler) profile(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	viewer := viewerFrom(c)
	activities, err := service.Collect(h.activities.ListForViewer(c.Request.Context(), viewer, domain.ActivityFilter{OwnerID: id}))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		User:       userToResponse(user),
		Activities: activitiesToResponse(viewer, activities),
	})
}

func (h *Handler) createExport(c *gin.Context) {
	export, err := h.exports.Export(c.Request.Context(), viewerFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ExportResponse{
		Key:       export.Key,
		URL:       export.URL,
		Count:     export.Count,
		CreatedAt: export.CreatedAt.Format(time.RFC3339),
	})
}

func (h *Handler) listExports(c *gin.Context) {
	objects, err := h.exports.List(c.Request.Context(), viewerFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) purgeExports(c *gin.Context) {
	if err := h.exports.Purge(c.Request.Context(), viewerFrom(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
