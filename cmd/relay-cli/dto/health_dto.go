package dto

// DTOs mirrored from the relay HTTP API

type HealthStatus struct {
	Connected       bool   `json:"connected"`
	Latency         int64  `json:"latency"`
	UpTime          int64  `json:"up_time"`
	ContainerStatus string `json:"container_status"`
	LastMessageTime int64  `json:"last_message_time"`
}

type HealthSnapshot struct {
	ID              int64  `json:"id"`
	Connected       bool   `json:"connected"`
	Latency         int64  `json:"latency"`
	UpTime          int64  `json:"up_time"`
	ContainerStatus string `json:"container_status"`
	LastMessageTime int64  `json:"last_message_time"`
	RecordedAt      string `json:"recorded_at"`
}

type HealthHistoryResponse struct {
	Snapshots []HealthSnapshot `json:"snapshots"`
	Count     int              `json:"count"`
}

type SubprocessStartedResponse struct {
	Message string `json:"message"`
	PID     int    `json:"pid"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
