package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"webremote/internal/microservices/http-api/models"
	"webremote/internal/microservices/http-api/repository"
)

var ErrHistoryDisabled = errors.New("health history disabled")

// HealthStore keeps the latest vehicle health report.
type HealthStore interface {
	Update(ctx context.Context, status models.HealthStatus) error
	Get(ctx context.Context) (models.HealthStatus, error)
}

// MemoryHealthStore is the default in-process store.
type MemoryHealthStore struct {
	mu     sync.RWMutex
	status models.HealthStatus
}

func NewMemoryHealthStore() *MemoryHealthStore {
	return &MemoryHealthStore{status: models.InitialHealthStatus()}
}

func (s *MemoryHealthStore) Update(_ context.Context, status models.HealthStatus) error {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	return nil
}

func (s *MemoryHealthStore) Get(_ context.Context) (models.HealthStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, nil
}

// HealthListener is notified after every accepted update.
type HealthListener func(models.HealthStatus)

type HealthService interface {
	Get(ctx context.Context) (models.HealthStatus, error)
	Update(ctx context.Context, status models.HealthStatus) error
	History(ctx context.Context, limit int) ([]models.HealthSnapshot, error)
	Subscribe(listener HealthListener)
}

type healthService struct {
	store   HealthStore
	history repository.HealthHistoryRepository // nil when no database is configured
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	listeners []HealthListener
}

// NewHealthService wires a store and an optional history repository.
func NewHealthService(store HealthStore, history repository.HealthHistoryRepository, logger *slog.Logger) HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &healthService{
		store:   store,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *healthService) Get(ctx context.Context) (models.HealthStatus, error) {
	status, err := s.store.Get(ctx)
	if err != nil {
		return models.HealthStatus{}, fmt.Errorf("failed to read health status: %w", err)
	}
	return status, nil
}

func (s *healthService) Update(ctx context.Context, status models.HealthStatus) error {
	if _, err := models.ParseContainerStatus(string(status.ContainerStatus)); err != nil {
		return err
	}
	if err := s.store.Update(ctx, status); err != nil {
		return fmt.Errorf("failed to store health status: %w", err)
	}

	s.logger.Debug("health_updated",
		"connected", status.Connected,
		"latency_ms", status.Latency,
		"container_status", status.ContainerStatus,
	)

	// history is best effort, the live status is already stored
	if s.history != nil {
		if err := s.history.Append(ctx, models.NewHealthSnapshot(status, s.now())); err != nil {
			s.logger.Warn("health_history_append_failed", "error", err)
		}
	}

	s.mu.RLock()
	listeners := make([]HealthListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(status)
	}
	return nil
}

func (s *healthService) History(ctx context.Context, limit int) ([]models.HealthSnapshot, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	list, err := s.history.Latest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load health history: %w", err)
	}
	return list, nil
}

func (s *healthService) Subscribe(listener HealthListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}
