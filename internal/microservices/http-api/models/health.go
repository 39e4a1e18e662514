package models

import (
	"errors"
	"fmt"
	"time"
)

// ContainerStatus is the state of the vehicle's workload container.
type ContainerStatus string

const (
	ContainerUnknown ContainerStatus = "UNKNOWN"
	ContainerRunning ContainerStatus = "RUNNING"
	ContainerStopped ContainerStatus = "STOPPED"
	ContainerError   ContainerStatus = "ERROR"
)

var ErrInvalidContainerStatus = errors.New("invalid container status")

// ParseContainerStatus accepts only the statuses a vehicle may report.
// UNKNOWN is the store's initial value and cannot be set explicitly.
func ParseContainerStatus(s string) (ContainerStatus, error) {
	switch cs := ContainerStatus(s); cs {
	case ContainerRunning, ContainerStopped, ContainerError:
		return cs, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidContainerStatus, s)
	}
}

// HealthStatus is the latest report from the vehicle. Latency and UpTime
// are milliseconds, LastMessageTime is a unix millisecond timestamp.
type HealthStatus struct {
	Connected       bool            `json:"connected"`
	Latency         int64           `json:"latency"`
	UpTime          int64           `json:"up_time"`
	ContainerStatus ContainerStatus `json:"container_status"`
	LastMessageTime int64           `json:"last_message_time"`
}

// InitialHealthStatus is reported before any update arrives.
func InitialHealthStatus() HealthStatus {
	return HealthStatus{ContainerStatus: ContainerUnknown}
}

// Serving reports whether the vehicle is reachable and its workload runs.
func (h HealthStatus) Serving() bool {
	return h.Connected && h.ContainerStatus == ContainerRunning
}

// HealthSnapshot is one accepted health update persisted for history.
type HealthSnapshot struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Connected       bool      `gorm:"not null" json:"connected"`
	Latency         int64     `gorm:"not null;default:0" json:"latency"`
	UpTime          int64     `gorm:"not null;default:0" json:"up_time"`
	ContainerStatus string    `gorm:"type:text;not null" json:"container_status"`
	LastMessageTime int64     `gorm:"not null;default:0" json:"last_message_time"`
	RecordedAt      time.Time `gorm:"not null;index:idx_health_snapshots_recorded_at" json:"recorded_at"`
}

// TableName overrides the table name used by HealthSnapshot to `health_snapshots`
func (HealthSnapshot) TableName() string {
	return "health_snapshots"
}

// NewHealthSnapshot copies a status into a history row stamped with at.
func NewHealthSnapshot(status HealthStatus, at time.Time) *HealthSnapshot {
	return &HealthSnapshot{
		Connected:       status.Connected,
		Latency:         status.Latency,
		UpTime:          status.UpTime,
		ContainerStatus: string(status.ContainerStatus),
		LastMessageTime: status.LastMessageTime,
		RecordedAt:      at.UTC(),
	}
}
