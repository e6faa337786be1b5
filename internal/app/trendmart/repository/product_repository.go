package repository

import (
	"context"
	"errors"
	"fmt"

	"trendmart/internal/app/trendmart/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Create(product)
	return result.Error
}

// GetByID получает товар по ID независимо от is_active
// Используется админкой
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// GetActiveByID получает активный товар по ID с категорией
// Неактивные товары для публичного API не существуют
func (r *productRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).Preload("Category").
		First(&product, "id = ? AND is_active = ?", id, true)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// GetByExternalID получает товар по ID внешнего источника
// external_id - ключ идемпотентности синхронизации
func (r *productRepository) GetByExternalID(ctx context.Context, externalID int) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "external_id = ?", externalID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// GetAllActive получает активные товары, опционально отфильтрованные по slug категории
func (r *productRepository) GetAllActive(ctx context.Context, categorySlug string) ([]entity.Product, error) {
	query := r.db.WithContext(ctx).Preload("Category").Where("products.is_active = ?", true)

	if categorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", categorySlug)
	}

	var products []entity.Product
	result := query.Order("products.created_at DESC").Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// GetAll получает страницу товаров включая неактивные для админки
// с опциональным поиском по подстроке заголовка без учета регистра.
// Возвращает также общее число товаров, подходящих под фильтр
func (r *productRepository) GetAll(ctx context.Context, search string, offset, limit int) ([]entity.Product, int64, error) {
	countQuery := r.db.WithContext(ctx).Model(&entity.Product{})
	findQuery := r.db.WithContext(ctx).Preload("Category")

	if search != "" {
		pattern := "%" + search + "%"
		countQuery = countQuery.Where("title ILIKE ?", pattern)
		findQuery = findQuery.Where("title ILIKE ?", pattern)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []entity.Product
	result := findQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&products)

	if result.Error != nil {
		return nil, 0, result.Error
	}

	return products, total, nil
}

// Update обновляет изменяемые поля товара
// click_count и last_clicked не трогает - они принадлежат трекингу кликов
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"title":        product.Title,
		"description":  product.Description,
		"price":        product.Price,
		"category_id":  product.CategoryID,
		"image_url":    product.ImageURL,
		"rating_rate":  product.RatingRate,
		"rating_count": product.RatingCount,
		"is_active":    product.IsActive,
	})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete удаляет товар, записи ProductClick удаляются каскадно
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// ToggleActive переключает is_active одним UPDATE и возвращает новое значение
func (r *productRepository) ToggleActive(ctx context.Context, id uuid.UUID) (bool, error) {
	var updated entity.Product
	result := r.db.WithContext(ctx).Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "is_active"}}}).
		Where("id = ?", id).
		Update("is_active", gorm.Expr("NOT is_active"))

	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		return false, ErrProductNotFound
	}

	return updated.IsActive, nil
}

// RecordClick выполняет единицу работы трекинга клика в одной транзакции:
// инкремент счетчика на уровне SQL (без read-modify-write, конкурентные клики
// не теряются) и вставка записи ProductClick. Если вставка записи не удалась,
// инкремент откатывается.
func (r *productRepository) RecordClick(ctx context.Context, productID uuid.UUID, click *entity.ProductClick) (int, error) {
	var clickCount int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var updated entity.Product
		result := tx.Model(&updated).
			Clauses(clause.Returning{Columns: []clause.Column{{Name: "click_count"}}}).
			Where("id = ? AND is_active = ?", productID, true).
			Updates(map[string]interface{}{
				"click_count":  gorm.Expr("click_count + 1"),
				"last_clicked": click.ClickedAt,
			})

		if result.Error != nil {
			return result.Error
		}

		// 0 строк означает отсутствующий или неактивный товар
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		clickCount = updated.ClickCount

		if err := tx.Create(click).Error; err != nil {
			return fmt.Errorf("failed to create click record: %w", err)
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return clickCount, nil
}

// GetTrending возвращает активные товары по убыванию кликов,
// при равенстве - по убыванию last_clicked. NULLS LAST обязателен:
// Postgres по умолчанию ставит NULL первыми при DESC, и товары без кликов
// обгоняли бы кликнутые при равном счетчике.
func (r *productRepository) GetTrending(ctx context.Context, limit int) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).Preload("Category").
		Where("is_active = ?", true).
		Order("click_count DESC, last_clicked DESC NULLS LAST").
		Limit(limit).
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// CountActive возвращает количество активных товаров
func (r *productRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("is_active = ?", true).
		Count(&count)
	return count, result.Error
}

// SumClicks возвращает сумму кликов по активным товарам, 0 для пустого каталога
func (r *productRepository) SumClicks(ctx context.Context) (int64, error) {
	var total int64
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(click_count), 0)").
		Scan(&total)
	return total, result.Error
}

// AvgRating возвращает средний рейтинг активных товаров, 0 для пустого каталога
func (r *productRepository) AvgRating(ctx context.Context) (float64, error) {
	var avg float64
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("is_active = ?", true).
		Select("COALESCE(AVG(rating_rate), 0)").
		Scan(&avg)
	return avg, result.Error
}

// CategoryRollups возвращает по каждой категории количество активных товаров
// и сумму их кликов. LEFT JOIN дает нулевые строки для пустых категорий.
func (r *productRepository) CategoryRollups(ctx context.Context) ([]entity.CategoryRollup, error) {
	var rollups []entity.CategoryRollup
	result := r.db.WithContext(ctx).Raw(`
		SELECT c.name AS name,
		       COUNT(p.id) AS product_count,
		       COALESCE(SUM(p.click_count), 0) AS clicks
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id AND p.is_active = true
		GROUP BY c.id, c.name
		ORDER BY c.name ASC`).
		Scan(&rollups)

	if result.Error != nil {
		return nil, result.Error
	}

	return rollups, nil
}

// TopClicked возвращает топ активных товаров с хотя бы одним кликом
func (r *productRepository) TopClicked(ctx context.Context, limit int) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND click_count > ?", true, 0).
		Order("click_count DESC").
		Limit(limit).
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}
