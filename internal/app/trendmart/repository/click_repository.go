package repository

import (
	"context"
	"time"

	"trendmart/internal/app/trendmart/entity"

	"gorm.io/gorm"
)

type clickRepository struct {
	db *gorm.DB
}

// NewClickRepository создает новый репозиторий записей о кликах
// Записи создаются только внутри RecordClick, здесь только чтение для аналитики
func NewClickRepository(db *gorm.DB) ClickRepository {
	return &clickRepository{db: db}
}

// CountSince возвращает количество кликов начиная с указанного момента включительно
func (r *clickRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.ProductClick{}).
		Where("clicked_at >= ?", since).
		Count(&count)
	return count, result.Error
}
