package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evalmate-service/internal/events"
	"github.com/SAP-F-2025/evalmate-service/internal/services"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
)

const streamBuffer = 32

// Subscriber registers a listener for store events and returns its disposer.
type Subscriber func(events.Listener) func()

type NotificationHandler struct {
	BaseHandler
	service   services.DashboardService
	subscribe Subscriber
	heartbeat time.Duration
}

func NewNotificationHandler(service services.DashboardService, subscribe Subscriber, heartbeat time.Duration, logger utils.Logger) *NotificationHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &NotificationHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		subscribe:   subscribe,
		heartbeat:   heartbeat,
	}
}

// GetNotifications returns the feed behind the notification bell
// @Router /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	feed, err := h.service.GetNotifications(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// StreamEvents pushes every form and submission event as a server-sent
// event until the client disconnects. Events are dropped for clients that
// fall behind.
// @Router /notifications/stream [get]
func (h *NotificationHandler) StreamEvents(c *gin.Context) {
	logger := utils.GetLogger(c, h.logger)
	stream := make(chan events.Event, streamBuffer)
	dispose := h.subscribe(func(ev events.Event) {
		select {
		case stream <- ev:
		default:
			logger.Warn("Notification stream lagging, dropping event", "event_type", ev.Type)
		}
	})
	defer dispose()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	logger.Info("Notification stream opened")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev := <-stream:
			c.SSEvent(string(ev.Type), ev)
			return true
		case <-ticker.C:
			c.SSEvent("heartbeat", gin.H{"timestamp": time.Now().UTC()})
			return true
		}
	})
	logger.Info("Notification stream closed")
}
