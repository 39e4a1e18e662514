package handler

import (
	"errors"
	"net/http"
	"webremote/internal/microservices/http-api/dto"
	"webremote/internal/microservices/http-api/models"
	"webremote/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 60

type HealthHandler struct {
	healthService service.HealthService
}

func NewHealthHandler(healthService service.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// GetHealth handles GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	status, err := h.healthService.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read health status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// UpdateHealth handles POST /health
func (h *HealthHandler) UpdateHealth(c *gin.Context) {
	var req dto.UpdateHealthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.HealthStatus{
		Connected:       *req.Connected,
		Latency:         req.Latency,
		UpTime:          req.UpTime,
		ContainerStatus: models.ContainerStatus(req.ContainerStatus),
		LastMessageTime: req.LastMessageTime,
	}

	if err := h.healthService.Update(c.Request.Context(), status); err != nil {
		if errors.Is(err, models.ErrInvalidContainerStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update health status"})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Health updated"})
}

// GetHistory handles GET /health/history?limit=N
func (h *HealthHandler) GetHistory(c *gin.Context) {
	var q dto.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultHistoryLimit
	}

	list, err := h.healthService.History(c.Request.Context(), q.Limit)
	if errors.Is(err, service.ErrHistoryDisabled) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load health history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": list, "count": len(list)})
}
