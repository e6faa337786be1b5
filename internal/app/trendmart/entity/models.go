package entity

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category представляет категорию товаров каталога
type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Slug      string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Product представляет товар в каталоге
// Поля click_count и last_clicked изменяются только трекингом кликов
type Product struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Description string     `json:"description" gorm:"not null"`
	Price       float64    `json:"price" gorm:"not null"` // Цена в базовой валюте (USD)
	CategoryID  uuid.UUID  `json:"category_id" gorm:"type:uuid;not null"`
	Category    *Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	ExternalID  *int       `json:"external_id,omitempty" gorm:"uniqueIndex"` // ID товара во внешнем Fake Store API
	ImageURL    string     `json:"image_url" gorm:"size:500"`
	RatingRate  float64    `json:"rating_rate" gorm:"default:0"`
	RatingCount int        `json:"rating_count" gorm:"default:0"`
	ClickCount  int        `json:"click_count" gorm:"default:0;not null"`
	LastClicked *time.Time `json:"last_clicked,omitempty"`
	IsActive    bool       `json:"is_active" gorm:"default:true;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProductClick - детальная запись о клике для аналитики
// Записи append-only, обновление и удаление не предусмотрены
type ProductClick struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Product   *Product  `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	IPAddress string    `json:"ip_address" gorm:"size:45"`
	UserAgent string    `json:"user_agent"`
	ClickedAt time.Time `json:"clicked_at" gorm:"index"`
}

// AdminUser - учетная запись администратора back-office
type AdminUser struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username     string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"size:20;not null"` // admin или manager
	CreatedAt    time.Time `json:"created_at"`
}

// SyncReport - отчет об одном запуске синхронизации каталога
// Хранится в MongoDB для истории запусков в админке
type SyncReport struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Status            string             `json:"status" bson:"status"` // success или failed
	CategoriesCreated int                `json:"categories_created" bson:"categories_created"`
	ProductsCreated   int                `json:"products_created" bson:"products_created"`
	ProductsUpdated   int                `json:"products_updated" bson:"products_updated"`
	ProductsSkipped   int                `json:"products_skipped" bson:"products_skipped"`
	Error             string             `json:"error,omitempty" bson:"error,omitempty"`
	StartedAt         time.Time          `json:"started_at" bson:"started_at"`
	FinishedAt        time.Time          `json:"finished_at" bson:"finished_at"`
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventType  string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
	ProductID  uuid.UUID `json:"product_id"`
	Title      string    `json:"title"`
	Price      float64   `json:"price"`
	CategoryID uuid.UUID `json:"category_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// ExternalProduct - товар в формате внешнего Fake Store API
type ExternalProduct struct {
	ID          int            `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Category    string         `json:"category"`
	Image       string         `json:"image"`
	Rating      ExternalRating `json:"rating"`
}

// ExternalRating - вложенный объект рейтинга внешнего API
type ExternalRating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// SyncResult - итоги одного запуска синхронизации
type SyncResult struct {
	CategoriesCreated int           `json:"categories_created"`
	ProductsCreated   int           `json:"products_created"`
	ProductsUpdated   int           `json:"products_updated"`
	ProductsSkipped   int           `json:"products_skipped"`
	Duration          time.Duration `json:"-"`
}
