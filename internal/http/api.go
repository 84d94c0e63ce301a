package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"daylog/internal/auth"
	"daylog/internal/domain"
	"daylog/internal/metrics"
	"daylog/internal/service"
)

const (
	sessionCookie = "daylog_session"
	viewerKey     = "daylog.viewer"
	requestIDKey  = "daylog.request_id"
)

// Config carries the collaborators and options of a Handler.
type Config struct {
	Users        service.UserService
	Activities   service.ActivityService
	Exports      service.ExportService
	Tokens       *auth.Manager
	Logger       *logrus.Logger
	SecureCookie bool
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users        service.UserService
	activities   service.ActivityService
	exports      service.ExportService
	tokens       *auth.Manager
	logger       *logrus.Logger
	secureCookie bool
}

func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Handler{
		users:        cfg.Users,
		activities:   cfg.Activities,
		exports:      cfg.Exports,
		tokens:       cfg.Tokens,
		logger:       cfg.Logger,
		secureCookie: cfg.SecureCookie,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger(), corsMiddleware(), h.viewerMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.POST("/auth/logout", h.logout)

		api.GET("/feed", h.feed)
		api.GET("/users/:id", h.profile)
		api.GET("/activities/:id", h.getActivity)

		member := api.Group("", requireViewer())
		{
			member.GET("/me", h.me)
			member.PATCH("/me", h.updateProfile)
			member.PUT("/me/password", h.changePassword)
			member.GET("/me/activities", h.myActivities)
			member.POST("/me/exports", h.createExport)
			member.GET("/me/exports", h.listExports)
			member.DELETE("/me/exports", h.purgeExports)

			member.POST("/activities", h.createActivity)
			member.PATCH("/activities/:id", h.updateActivity)
			member.DELETE("/activities/:id", h.deleteActivity)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		metrics.ObserveRequest(c.Request.Method, c.FullPath(), status, elapsed)

		entry := h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    elapsed.String(),
			"viewer":     viewerFrom(c).UserID,
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Info("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}

// viewerMiddleware resolves the session token into a domain.Viewer. Requests
// without a valid token continue as anonymous.
func (h *Handler) viewerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := domain.Anonymous()

		token, fromCookie := sessionToken(c)
		if token != "" {
			claims, err := h.tokens.Parse(token)
			if err != nil {
				h.logger.WithError(err).Debug("ignoring session token")
				if fromCookie {
					h.clearSession(c)
				}
			} else {
				viewer = claims.Viewer()
			}
		}

		c.Set(viewerKey, viewer)
		c.Next()
	}
}

func requireViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !viewerFrom(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}

func sessionToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1]), false
		}
		return "", false
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie, true
	}
	return "", false
}

func viewerFrom(c *gin.Context) domain.Viewer {
	if v, ok := c.Get(viewerKey); ok {
		if viewer, ok := v.(domain.Viewer); ok {
			return viewer
		}
	}
	return domain.Anonymous()
}

func (h *Handler) startSession(c *gin.Context, user *domain.User) (string, time.Time, error) {
	token, expires, err := h.tokens.Issue(user)
	if err != nil {
		return "", time.Time{}, err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(h.tokens.TTL().Seconds()), "/", "", h.secureCookie, true)
	return token, expires, nil
}

func (h *Handler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", h.secureCookie, true)
}
