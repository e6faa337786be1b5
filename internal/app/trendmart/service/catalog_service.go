package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trendmart/internal/app/trendmart/entity"
	"trendmart/internal/app/trendmart/repository"
	"trendmart/internal/app/trendmart/util"
	"trendmart/pkg/logger"
	"trendmart/pkg/metrics"

	"github.com/google/uuid"
)

// TTL кеша списка категорий
const categoriesCacheTTL = time.Hour

// Размер страницы списка товаров в админке
const adminPageSize = 10

// CatalogService обрабатывает бизнес-логику каталога товаров
// Координирует работу репозиториев, Redis кеша и Kafka producer
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	redisCache   util.RedisCache        // Кеш списка категорий
	producer     util.MessagePublisher  // Producer событий о товарах
	kafkaTopic   string
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	redisCache util.RedisCache,
	producer util.MessagePublisher,
	kafkaTopic string,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		redisCache:   redisCache,
		producer:     producer,
		kafkaTopic:   kafkaTopic,
	}
}

// === CATEGORIES ===

// CreateCategory создает новую категорию и инвалидирует кеш
// Slug генерируется из имени по тем же правилам, что и при синхронизации
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	category := &entity.Category{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      slugify(req.Name),
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	// Инвалидируем кеш категорий чтобы при следующем запросе загрузить свежие данные
	if err := s.redisCache.DeleteCategories(ctx); err != nil {
		// Категория уже создана, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}

	return category, nil
}

// GetCategory получает категорию по ID
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// GetAllCategories получает все категории с кешированием в Redis
// Сначала проверяет кеш, при промахе загружает из БД и кеширует
func (s *CatalogService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.redisCache.GetCategories(ctx)
	if err == nil && len(categories) > 0 {
		return categories, nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.redisCache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
		// Данные получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("Failed to cache categories")
	}

	return categories, nil
}

// UpdateCategory обновляет имя категории, перегенерирует slug и инвалидирует кеш
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	category.Name = req.Name
	category.Slug = slugify(req.Name)

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	if err := s.redisCache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}

	return category, nil
}

// DeleteCategory удаляет категорию вместе с ее товарами (каскад на уровне БД)
// и инвалидирует кеш
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if err := s.redisCache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}

	return nil
}

// === PRODUCTS ===

// CreateProduct создает новый товар
// Проверяет существование категории перед созданием
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		RatingRate:  req.RatingRate,
		RatingCount: req.RatingCount,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publishProductEvent(ctx, "PRODUCT_CREATED", product)

	return product, nil
}

// GetProduct получает активный товар по ID с категорией
// Для публичного API неактивный товар неотличим от отсутствующего
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetActiveProducts получает активные товары, опционально по slug категории
func (s *CatalogService) GetActiveProducts(ctx context.Context, categorySlug string) ([]entity.Product, error) {
	products, err := s.productRepo.GetAllActive(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// GetAllProducts получает страницу товаров включая неактивные для админки
// Поиск - по подстроке заголовка без учета регистра
func (s *CatalogService) GetAllProducts(ctx context.Context, search string, page int) (*entity.PagedProductListResponse, error) {
	if page < 1 {
		page = 1
	}

	products, total, err := s.productRepo.GetAll(ctx, search, (page-1)*adminPageSize, adminPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	if products == nil {
		products = []entity.Product{}
	}

	pages := int((total + adminPageSize - 1) / adminPageSize)

	return &entity.PagedProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		Pages:    pages,
	}, nil
}

// UpdateProduct обновляет товар (частичное обновление)
// При изменении цены публикует событие PRODUCT_UPDATED
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	oldPrice := product.Price

	if req.Title != "" {
		product.Title = req.Title
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.ImageURL != "" {
		product.ImageURL = req.ImageURL
	}
	if req.CategoryID != uuid.Nil {
		if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to verify category: %w", err)
		}
		product.CategoryID = req.CategoryID
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if product.Price != oldPrice {
		s.publishProductEvent(ctx, "PRODUCT_UPDATED", product)
	}

	return product, nil
}

// DeleteProduct удаляет товар, его клики удаляются каскадно
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.publishProductEvent(ctx, "PRODUCT_DELETED", product)

	return nil
}

// ToggleProduct переключает видимость товара и возвращает новое состояние
func (s *CatalogService) ToggleProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	isActive, err := s.productRepo.ToggleActive(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return false, ErrProductNotFound
		}
		return false, fmt.Errorf("failed to toggle product: %w", err)
	}

	return isActive, nil
}

// publishProductEvent отправляет событие о товаре в Kafka
// Key - ProductID для партиционирования и сохранения порядка событий товара
// Ошибки отправки не прерывают основную операцию
func (s *CatalogService) publishProductEvent(ctx context.Context, eventType string, product *entity.Product) {
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
