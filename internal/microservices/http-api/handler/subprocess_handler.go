package handler

import (
	"net/http"
	"webremote/internal/microservices/http-api/dto"
	"webremote/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type SubprocessHandler struct {
	subprocessService service.SubprocessService
}

func NewSubprocessHandler(subprocessService service.SubprocessService) *SubprocessHandler {
	return &SubprocessHandler{subprocessService: subprocessService}
}

// Start handles GET /subprocess/start
func (h *SubprocessHandler) Start(c *gin.Context) {
	pid, err := h.subprocessService.Start(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start process: " + err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, dto.SubprocessStartedResponse{
		Message: "Process started successfully",
		PID:     pid,
	})
}
