package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pawpair/backend/pkg/logger"
)

// NewRouter wires every route onto a new gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})))

	r.GET("/healthz", h.Health)

	r.GET("/ws/rooms/:room_id", h.RequireUser(), h.ServeWebSocket)

	api := r.Group("/api/v1")
	api.POST("/auth/token", h.IssueToken)

	authed := api.Group("", h.RequireUser())
	{
		authed.POST("/interests", h.RecordInterest)
		authed.GET("/interests/sent", h.SentInterests)
		authed.GET("/interests/received", h.ReceivedInterests)
		authed.GET("/interests/:to_user_id", h.HasInterest)
		authed.POST("/likes", h.ToggleLike)
		authed.GET("/likes/:to_user_id", h.IsLiked)

		authed.GET("/matches", h.ListMatches)
		authed.GET("/matches/active", h.ListActiveMatches)
		authed.PUT("/matches/:match_id/status", h.UpdateMatchStatus)

		authed.GET("/chat/rooms", h.ListRooms)
		authed.POST("/chat/rooms/match/:match_id", h.OpenRoom)
		authed.GET("/chat/rooms/match/:match_id", h.RoomByMatch)
		authed.GET("/chat/rooms/:room_id/history", h.History)
		authed.GET("/chat/rooms/:room_id/unread-count", h.UnreadCount)
		authed.PUT("/chat/rooms/:room_id/read", h.MarkRead)
		authed.GET("/chat/rooms/:room_id/last-message", h.LastMessage)
	}
	return r
}

// Health reports whether the hub is delivering events.
func (h *Handler) Health(c *gin.Context) {
	select {
	case <-h.Hub.Ready():
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if userID := c.GetString(ctxUserID); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}
