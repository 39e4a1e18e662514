package repository

import (
	"context"
	"webremote/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type HealthHistoryRepository interface {
	Append(ctx context.Context, snapshot *models.HealthSnapshot) error
	Latest(ctx context.Context, limit int) ([]models.HealthSnapshot, error)
}

type healthHistoryRepository struct {
	db *gorm.DB
}

func NewHealthHistoryRepository(db *gorm.DB) HealthHistoryRepository {
	return &healthHistoryRepository{db: db}
}

func (r *healthHistoryRepository) Append(ctx context.Context, snapshot *models.HealthSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

// Latest returns up to limit snapshots, newest first
func (r *healthHistoryRepository) Latest(ctx context.Context, limit int) ([]models.HealthSnapshot, error) {
	var list []models.HealthSnapshot
	if err := r.db.WithContext(ctx).
		Order("recorded_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
