package repository

import (
	"context"
	"errors"
	"time"

	"trendmart/internal/app/trendmart/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateKey     = errors.New("duplicate key")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByExternalID(ctx context.Context, externalID int) (*entity.Product, error)
	GetAllActive(ctx context.Context, categorySlug string) ([]entity.Product, error)
	GetAll(ctx context.Context, search string, offset, limit int) ([]entity.Product, int64, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleActive(ctx context.Context, id uuid.UUID) (bool, error)

	// RecordClick атомарно увеличивает счетчик кликов активного товара
	// и добавляет запись ProductClick в одной транзакции
	RecordClick(ctx context.Context, productID uuid.UUID, click *entity.ProductClick) (int, error)
	GetTrending(ctx context.Context, limit int) ([]entity.Product, error)

	CountActive(ctx context.Context) (int64, error)
	SumClicks(ctx context.Context) (int64, error)
	AvgRating(ctx context.Context) (float64, error)
	CategoryRollups(ctx context.Context) ([]entity.CategoryRollup, error)
	TopClicked(ctx context.Context, limit int) ([]entity.Product, error)
}

type ClickRepository interface {
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type AdminUserRepository interface {
	Create(ctx context.Context, user *entity.AdminUser) error
	GetByUsername(ctx context.Context, username string) (*entity.AdminUser, error)
	Count(ctx context.Context) (int64, error)
}

type SyncReportRepository interface {
	Create(ctx context.Context, report *entity.SyncReport) error
	GetRecent(ctx context.Context, limit int) ([]entity.SyncReport, error)
}
