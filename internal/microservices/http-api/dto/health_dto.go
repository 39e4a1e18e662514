package dto

// DTOs for vehicle health operations in HTTP API

type UpdateHealthRequest struct {
	Connected       *bool  `json:"connected" binding:"required"`
	Latency         int64  `json:"latency" binding:"min=0"`
	UpTime          int64  `json:"up_time" binding:"min=0"`
	ContainerStatus string `json:"container_status" binding:"required,oneof=RUNNING STOPPED ERROR"`
	LastMessageTime int64  `json:"last_message_time" binding:"min=0"`
}

type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SubprocessStartedResponse struct {
	Message string `json:"message"`
	PID     int    `json:"pid"`
}
