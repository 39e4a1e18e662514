package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Broadcaster delivers a binary payload to every connected session.
type Broadcaster interface {
	BroadcastToAll(payload []byte) int
}

type IngressHandler struct {
	broadcaster  Broadcaster
	maxBodyBytes int64
	logger       *slog.Logger
}

func NewIngressHandler(broadcaster Broadcaster, maxBodyBytes int64, logger *slog.Logger) *IngressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngressHandler{broadcaster: broadcaster, maxBodyBytes: maxBodyBytes, logger: logger}
}

// PushData handles POST /data. The body is fanned out to every session as
// a binary frame and the caller always gets OK, even with nobody connected.
func (h *IngressHandler) PushData(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	delivered := h.broadcaster.BroadcastToAll(body)
	h.logger.Debug("ingress_broadcast", "bytes", len(body), "delivered", delivered)

	c.String(http.StatusOK, "OK")
}
