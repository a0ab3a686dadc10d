package handlers

import (
	"io"

	"fixline/middleware"
	"fixline/services/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RealtimeHandler bridges a caller's session channel onto an SSE stream.
type RealtimeHandler struct {
	Channel *notification.DefaultNotificationService
	Logger  *zap.Logger
}

// NewRealtimeHandler creates a RealtimeHandler.
func NewRealtimeHandler(channel *notification.DefaultNotificationService, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{Channel: channel, Logger: logger}
}

// Stream subscribes the caller to their session channel and forwards every
// published event as an SSE message until the client disconnects. Events
// published while nobody is subscribed are dropped, not queued; the dispatch
// response window covers that gap.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	callerID := middleware.CallerID(c)

	pubsub := h.Channel.Subscribe(c.Request.Context(), callerID)
	defer pubsub.Close()

	events := pubsub.Channel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("message", msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.Logger.Debug("realtime stream closed", zap.String("callerID", callerID))
}
