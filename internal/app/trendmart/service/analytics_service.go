package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"trendmart/internal/app/trendmart/entity"
	"trendmart/internal/app/trendmart/repository"
)

const (
	// Окно "недавних" кликов для дашборда
	recentClicksWindow = 7 * 24 * time.Hour
	// Размер топа кликнутых товаров для графика
	topClickedLimit = 10
	// Максимальная длина заголовка в подписях графика
	chartTitleLimit = 20
)

// AnalyticsService считает агрегаты каталога для дашборда админки
// Все значения считаются заново при каждом вызове, без materialized views
type AnalyticsService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	clickRepo    repository.ClickRepository
}

// NewAnalyticsService создает новый сервис аналитики
func NewAnalyticsService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	clickRepo repository.ClickRepository,
) *AnalyticsService {
	return &AnalyticsService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		clickRepo:    clickRepo,
	}
}

// GetDashboard собирает полный набор аналитики
// Пустой каталог дает нулевые агрегаты, а не ошибку
func (s *AnalyticsService) GetDashboard(ctx context.Context) (*entity.DashboardResponse, error) {
	totalProducts, err := s.productRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	totalCategories, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	totalClicks, err := s.productRepo.SumClicks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum clicks: %w", err)
	}

	avgRating, err := s.productRepo.AvgRating(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get average rating: %w", err)
	}

	rollups, err := s.productRepo.CategoryRollups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get category rollups: %w", err)
	}
	if rollups == nil {
		rollups = []entity.CategoryRollup{}
	}

	// Граница окна включительно: клик ровно неделю назад еще считается
	weekAgo := time.Now().Add(-recentClicksWindow)
	recentClicks, err := s.clickRepo.CountSince(ctx, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent clicks: %w", err)
	}

	topClicked, err := s.productRepo.TopClicked(ctx, topClickedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top clicked products: %w", err)
	}

	clickAnalytics := make([]entity.ClickAnalytics, 0, len(topClicked))
	for _, p := range topClicked {
		clickAnalytics = append(clickAnalytics, entity.ClickAnalytics{
			Title:  truncateTitle(p.Title, chartTitleLimit),
			Clicks: p.ClickCount,
		})
	}

	return &entity.DashboardResponse{
		TotalProducts:    int(totalProducts),
		TotalCategories:  int(totalCategories),
		TotalClicks:      int(totalClicks),
		AvgRating:        math.Round(avgRating*10) / 10, // Один знак после запятой для отображения
		RecentClicksWeek: int(recentClicks),
		CategoryData:     rollups,
		ClickAnalytics:   clickAnalytics,
	}, nil
}

// truncateTitle усекает заголовок до limit символов с многоточием
// Считает руны, а не байты, чтобы не резать многобайтные символы
func truncateTitle(title string, limit int) string {
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	return string(runes[:limit]) + "..."
}
