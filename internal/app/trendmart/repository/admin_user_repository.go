package repository

import (
	"context"
	"errors"

	"trendmart/internal/app/trendmart/entity"

	"gorm.io/gorm"
)

type adminUserRepository struct {
	db *gorm.DB
}

// NewAdminUserRepository создает новый репозиторий администраторов
func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

// Create создает учетную запись администратора
func (r *adminUserRepository) Create(ctx context.Context, user *entity.AdminUser) error {
	result := r.db.WithContext(ctx).Create(user)
	return result.Error
}

// GetByUsername получает администратора по имени пользователя
func (r *adminUserRepository) GetByUsername(ctx context.Context, username string) (*entity.AdminUser, error) {
	var user entity.AdminUser
	result := r.db.WithContext(ctx).First(&user, "username = ?", username)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// Count возвращает количество учетных записей
// Используется при старте для сидинга администратора по умолчанию
func (r *adminUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.AdminUser{}).Count(&count)
	return count, result.Error
}
