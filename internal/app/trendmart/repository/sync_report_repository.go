package repository

import (
	"context"
	"fmt"
	"time"

	"trendmart/internal/app/trendmart/entity"
	"trendmart/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type syncReportRepository struct {
	collection *mongo.Collection
}

// NewSyncReportRepository создает новый репозиторий отчетов синхронизации
// Автоматически создает индекс по started_at для выборки последних запусков
func NewSyncReportRepository(db *mongo.Database) SyncReportRepository {
	collection := db.Collection("sync_reports")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "started_at", Value: -1},
		},
		Options: options.Index().SetName("started_at_idx"),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		// Индекс может уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("Failed to create index on started_at")
	}

	return &syncReportRepository{
		collection: collection,
	}
}

// Create сохраняет отчет о запуске синхронизации в MongoDB
func (r *syncReportRepository) Create(ctx context.Context, report *entity.SyncReport) error {
	result, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to create sync report: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		report.ID = oid
	}

	return nil
}

// GetRecent возвращает последние отчеты синхронизации, свежие первыми
func (r *syncReportRepository) GetRecent(ctx context.Context, limit int) ([]entity.SyncReport, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sync reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []entity.SyncReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode sync reports: %w", err)
	}

	return reports, nil
}
