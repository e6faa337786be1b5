package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trendmart/internal/app/trendmart/entity"
	"trendmart/internal/app/trendmart/repository"
	"trendmart/pkg/metrics"

	"github.com/google/uuid"
)

// DefaultTrendingLimit - размер трендового списка по умолчанию
const DefaultTrendingLimit = 6

// TrackingService обрабатывает клики по товарам и трендовый рейтинг
type TrackingService struct {
	productRepo repository.ProductRepository
}

// NewTrackingService создает новый сервис трекинга кликов
func NewTrackingService(productRepo repository.ProductRepository) *TrackingService {
	return &TrackingService{
		productRepo: productRepo,
	}
}

// TrackClick трекает клик по активному товару
// Инкремент счетчика и запись ProductClick выполняются одной единицей работы
// в репозитории; возвращает новое значение счетчика
func (s *TrackingService) TrackClick(ctx context.Context, productID uuid.UUID, ipAddress, userAgent string) (int, error) {
	click := &entity.ProductClick{
		ID:        uuid.New(),
		ProductID: productID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		ClickedAt: time.Now(),
	}

	clickCount, err := s.productRepo.RecordClick(ctx, productID, click)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to record click: %w", err)
	}

	metrics.RecordClickTracked()

	return clickCount, nil
}

// GetTrending возвращает трендовые товары: по убыванию кликов,
// при равных кликах - по убыванию времени последнего клика
// Без кеширования: каждый вызов отражает текущие счетчики
func (s *TrackingService) GetTrending(ctx context.Context, limit int) ([]entity.TrendingProduct, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}

	products, err := s.productRepo.GetTrending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get trending products: %w", err)
	}

	trending := make([]entity.TrendingProduct, 0, len(products))
	for _, p := range products {
		item := entity.TrendingProduct{
			ID:         p.ID,
			Title:      p.Title,
			Price:      p.Price,
			ImageURL:   p.ImageURL,
			RatingRate: p.RatingRate,
			ClickCount: p.ClickCount,
		}
		if p.Category != nil {
			item.CategoryName = p.Category.Name
		}
		trending = append(trending, item)
	}

	return trending, nil
}
