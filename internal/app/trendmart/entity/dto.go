package entity

import "github.com/google/uuid"

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type CreateProductRequest struct {
	Title       string    `json:"title" validate:"required,min=2,max=200"`
	Description string    `json:"description" validate:"required,min=10,max=2000"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url,max=500"`
	RatingRate  float64   `json:"rating_rate" validate:"omitempty,gte=0,lte=5"`
	RatingCount int       `json:"rating_count" validate:"omitempty,gte=0"`
}

type UpdateProductRequest struct {
	Title       string    `json:"title" validate:"omitempty,min=2,max=200"`
	Description string    `json:"description" validate:"omitempty,min=10,max=2000"`
	Price       float64   `json:"price" validate:"omitempty,gt=0"`
	CategoryID  uuid.UUID `json:"category_id" validate:"omitempty"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url,max=500"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ClickResponse - ответ на трекинг клика с новым значением счетчика
type ClickResponse struct {
	Message    string `json:"message"`
	ClickCount int    `json:"click_count"`
}

// TrendingProduct - элемент списка трендовых товаров
type TrendingProduct struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"image_url"`
	RatingRate   float64   `json:"rating_rate"`
	ClickCount   int       `json:"click_count"`
	CategoryName string    `json:"category_name"`
}

// CategoryRollup - агрегаты по одной категории для дашборда
type CategoryRollup struct {
	Name         string `json:"name"`
	ProductCount int    `json:"count"`
	Clicks       int    `json:"clicks"`
}

// ClickAnalytics - элемент топа кликов с усеченным заголовком для графика
type ClickAnalytics struct {
	Title  string `json:"title"`
	Clicks int    `json:"clicks"`
}

// DashboardResponse - полный набор аналитики для дашборда админки
type DashboardResponse struct {
	TotalProducts    int              `json:"total_products"`
	TotalCategories  int              `json:"total_categories"`
	TotalClicks      int              `json:"total_clicks"`
	AvgRating        float64          `json:"avg_rating"`
	RecentClicksWeek int              `json:"recent_clicks_week"`
	CategoryData     []CategoryRollup `json:"category_data"`
	ClickAnalytics   []ClickAnalytics `json:"click_analytics"`
}

type SyncResponse struct {
	Message           string `json:"message"`
	CategoriesCreated int    `json:"categories_created"`
	ProductsCreated   int    `json:"products_created"`
	ProductsUpdated   int    `json:"products_updated"`
	ProductsSkipped   int    `json:"products_skipped"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// PagedProductListResponse - страница товаров для админки с метаданными пагинации
type PagedProductListResponse struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

type TrendingListResponse struct {
	Products []TrendingProduct `json:"products"`
	Total    int               `json:"total"`
}

type SyncReportListResponse struct {
	Reports []SyncReport `json:"reports"`
	Total   int          `json:"total"`
}
