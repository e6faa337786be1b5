package service

import (
	"context"

	"trendmart/internal/app/trendmart/entity"

	"github.com/google/uuid"
)

type CatalogServiceInterface interface {
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAllCategories(ctx context.Context) ([]entity.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetActiveProducts(ctx context.Context, categorySlug string) ([]entity.Product, error)
	GetAllProducts(ctx context.Context, search string, page int) (*entity.PagedProductListResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ToggleProduct(ctx context.Context, id uuid.UUID) (bool, error)
}

type TrackingServiceInterface interface {
	TrackClick(ctx context.Context, productID uuid.UUID, ipAddress, userAgent string) (int, error)
	GetTrending(ctx context.Context, limit int) ([]entity.TrendingProduct, error)
}

type AnalyticsServiceInterface interface {
	GetDashboard(ctx context.Context) (*entity.DashboardResponse, error)
}

type SyncServiceInterface interface {
	Run(ctx context.Context) (*entity.SyncResult, error)
	GetRecentReports(ctx context.Context, limit int) ([]entity.SyncReport, error)
}

type AuthServiceInterface interface {
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error)
}

// FakeStoreAPI - клиент внешнего источника каталога
// Используется для dependency injection и упрощения тестирования
type FakeStoreAPI interface {
	FetchCategories(ctx context.Context) ([]string, error)
	FetchProducts(ctx context.Context) ([]entity.ExternalProduct, error)
}
