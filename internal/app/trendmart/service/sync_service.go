package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"trendmart/internal/app/trendmart/entity"
	"trendmart/internal/app/trendmart/repository"
	"trendmart/internal/app/trendmart/util"
	"trendmart/pkg/logger"
	"trendmart/pkg/metrics"

	"github.com/google/uuid"
)

// SyncService синхронизирует локальный каталог с внешним источником
// Линейный batch job: категории -> товары -> отчет; идемпотентен по external_id
type SyncService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	reportRepo   repository.SyncReportRepository
	client       FakeStoreAPI
	producer     util.MessagePublisher
	kafkaTopic   string

	// Запуски сериализованы: параллельный запуск получает ErrSyncInProgress
	running atomic.Bool
}

// NewSyncService создает новый сервис синхронизации с внедрением зависимостей
func NewSyncService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	reportRepo repository.SyncReportRepository,
	client FakeStoreAPI,
	producer util.MessagePublisher,
	kafkaTopic string,
) *SyncService {
	return &SyncService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		reportRepo:   reportRepo,
		client:       client,
		producer:     producer,
		kafkaTopic:   kafkaTopic,
	}
}

// Run выполняет полный цикл синхронизации и сохраняет отчет о запуске
// Ошибка выборки из upstream прерывает запуск; уже примененные upsert-ы остаются
func (s *SyncService) Run(ctx context.Context) (*entity.SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	startedAt := time.Now()
	logger.Info().Msg("Starting catalog sync")

	result, err := s.run(ctx)

	report := &entity.SyncReport{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}

	if err != nil {
		report.Status = "failed"
		report.Error = err.Error()
		metrics.RecordSyncRun("failed")
		logger.Error().Err(err).Msg("Catalog sync failed")
	} else {
		report.Status = "success"
		report.CategoriesCreated = result.CategoriesCreated
		report.ProductsCreated = result.ProductsCreated
		report.ProductsUpdated = result.ProductsUpdated
		report.ProductsSkipped = result.ProductsSkipped
		metrics.RecordSyncRun("success")
		logger.Info().
			Int("categories_created", result.CategoriesCreated).
			Int("products_created", result.ProductsCreated).
			Int("products_updated", result.ProductsUpdated).
			Int("products_skipped", result.ProductsSkipped).
			Dur("duration", result.Duration).
			Msg("Catalog sync finished")
	}

	// Отчет - аудит, его потеря не отменяет результат синхронизации
	if reportErr := s.reportRepo.Create(ctx, report); reportErr != nil {
		logger.Error().Err(reportErr).Msg("Failed to store sync report")
	}

	if err != nil {
		return nil, err
	}

	result.Duration = report.FinishedAt.Sub(startedAt)
	return result, nil
}

// GetRecentReports возвращает последние отчеты синхронизации для админки
func (s *SyncService) GetRecentReports(ctx context.Context, limit int) ([]entity.SyncReport, error) {
	if limit <= 0 {
		limit = 20
	}

	reports, err := s.reportRepo.GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync reports: %w", err)
	}

	return reports, nil
}

// run выполняет сам цикл синхронизации: fetch категорий, fetch товаров, upsert
func (s *SyncService) run(ctx context.Context) (*entity.SyncResult, error) {
	result := &entity.SyncResult{}

	// Сначала категории: товары ссылаются на них
	categoryNames, err := s.client.FetchCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	for _, name := range categoryNames {
		if _, created, err := s.getOrCreateCategory(ctx, name); err != nil {
			return nil, fmt.Errorf("failed to sync category %q: %w", name, err)
		} else if created {
			result.CategoriesCreated++
		}
	}

	products, err := s.client.FetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	for _, ext := range products {
		created, categoryCreated, err := s.upsertProduct(ctx, ext)
		// Категория могла появиться из записи товара, которой не было
		// в списке категорий - она тоже входит в счетчик
		if categoryCreated {
			result.CategoriesCreated++
		}
		if err != nil {
			// Одна битая запись не прерывает batch: логируем и продолжаем
			result.ProductsSkipped++
			metrics.RecordSyncProduct("skipped")
			logger.Warn().
				Int("external_id", ext.ID).
				Str("title", ext.Title).
				Err(err).
				Msg("Skipping product record")
			continue
		}

		if created {
			result.ProductsCreated++
			metrics.RecordSyncProduct("created")
		} else {
			result.ProductsUpdated++
			metrics.RecordSyncProduct("updated")
		}
	}

	return result, nil
}

// getOrCreateCategory находит категорию по нормализованному имени или создает ее
// Существующая категория никогда не переименовывается синхронизацией
func (s *SyncService) getOrCreateCategory(ctx context.Context, rawName string) (*entity.Category, bool, error) {
	name := normalizeCategoryName(rawName)
	if name == "" {
		return nil, false, fmt.Errorf("empty category name")
	}

	category, err := s.categoryRepo.GetByName(ctx, name)
	if err == nil {
		return category, false, nil
	}
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, false, fmt.Errorf("failed to look up category: %w", err)
	}

	category = &entity.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slugify(rawName),
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, false, fmt.Errorf("failed to create category: %w", err)
	}

	return category, true, nil
}

// upsertProduct применяет одну запись внешнего каталога
// Ключ идемпотентности - external_id; возвращает признаки создания
// товара и его категории
func (s *SyncService) upsertProduct(ctx context.Context, ext entity.ExternalProduct) (created, categoryCreated bool, err error) {
	if err := validateExternalProduct(ext); err != nil {
		return false, false, err
	}

	category, categoryCreated, err := s.getOrCreateCategory(ctx, ext.Category)
	if err != nil {
		return false, false, err
	}

	existing, err := s.productRepo.GetByExternalID(ctx, ext.ID)
	if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		return false, categoryCreated, fmt.Errorf("failed to look up product: %w", err)
	}

	if errors.Is(err, repository.ErrProductNotFound) {
		externalID := ext.ID
		now := time.Now()
		product := &entity.Product{
			ID:          uuid.New(),
			Title:       ext.Title,
			Description: ext.Description,
			Price:       ext.Price,
			CategoryID:  category.ID,
			ExternalID:  &externalID,
			ImageURL:    ext.Image,
			RatingRate:  ext.Rating.Rate,
			RatingCount: ext.Rating.Count,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := s.productRepo.Create(ctx, product); err != nil {
			return false, categoryCreated, fmt.Errorf("failed to create product: %w", err)
		}

		s.publishSyncEvent(ctx, "PRODUCT_CREATED", product)
		return true, categoryCreated, nil
	}

	oldPrice := existing.Price

	existing.Title = ext.Title
	existing.Description = ext.Description
	existing.Price = ext.Price
	existing.CategoryID = category.ID
	existing.ImageURL = ext.Image
	existing.RatingRate = ext.Rating.Rate
	existing.RatingCount = ext.Rating.Count
	// Upstream снова отдает товар - он снова продается
	existing.IsActive = true

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return false, categoryCreated, fmt.Errorf("failed to update product: %w", err)
	}

	if existing.Price != oldPrice {
		s.publishSyncEvent(ctx, "PRODUCT_UPDATED", existing)
	}

	return false, categoryCreated, nil
}

// validateExternalProduct проверяет обязательные поля записи внешнего каталога
func validateExternalProduct(ext entity.ExternalProduct) error {
	if ext.ID <= 0 {
		return fmt.Errorf("missing external id")
	}
	if ext.Title == "" {
		return fmt.Errorf("missing title")
	}
	if ext.Category == "" {
		return fmt.Errorf("missing category")
	}
	if ext.Price < 0 {
		return fmt.Errorf("negative price")
	}
	return nil
}

// publishSyncEvent отправляет событие о товаре в Kafka
// Ошибки отправки не влияют на результат синхронизации
func (s *SyncService) publishSyncEvent(ctx context.Context, eventType string, product *entity.Product) {
	event := entity.ProductEvent{
		EventType:  eventType,
		ProductID:  product.ID,
		Title:      product.Title,
		Price:      product.Price,
		CategoryID: product.CategoryID,
		Timestamp:  time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal product event")
		return
	}

	if err := s.producer.PublishMessage(ctx, product.ID.String(), eventData); err != nil {
		metrics.RecordKafkaError(s.kafkaTopic)
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to publish product event")
		return
	}

	metrics.RecordKafkaMessageProduced(s.kafkaTopic)
}
