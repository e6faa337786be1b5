package util

import (
	"context"
	"testing"
	"time"

	"trendmart/internal/app/trendmart/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RedisClientTestSuite тестовый suite для кеша категорий
type RedisClientTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	cache     *RedisClient
}

func TestRedisClientSuite(t *testing.T) {
	suite.Run(t, new(RedisClientTestSuite))
}

func (s *RedisClientTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.cache, err = NewRedisClient(s.miniRedis.Addr(), "", 0)
	require.NoError(s.T(), err)
}

func (s *RedisClientTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *RedisClientTestSuite) TearDownSuite() {
	s.cache.Close()
	s.miniRedis.Close()
}

func (s *RedisClientTestSuite) TestSetAndGetCategories() {
	ctx := context.Background()

	categories := []entity.Category{
		{ID: uuid.New(), Name: "Electronics", Slug: "electronics", CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), Name: "Jewelery", Slug: "jewelery", CreatedAt: time.Now().UTC()},
	}

	// Act
	err := s.cache.SetCategories(ctx, categories, time.Hour)
	s.NoError(err)

	cached, err := s.cache.GetCategories(ctx)

	// Assert
	s.NoError(err)
	s.Len(cached, 2)
	s.Equal(categories[0].ID, cached[0].ID)
	s.Equal("Electronics", cached[0].Name)
}

func (s *RedisClientTestSuite) TestGetCategories_EmptyCacheReturnsNil() {
	ctx := context.Background()

	// Act
	cached, err := s.cache.GetCategories(ctx)

	// Assert: промах кеша - не ошибка
	s.NoError(err)
	s.Nil(cached)
}

func (s *RedisClientTestSuite) TestDeleteCategories() {
	ctx := context.Background()

	categories := []entity.Category{{ID: uuid.New(), Name: "Electronics"}}
	s.NoError(s.cache.SetCategories(ctx, categories, time.Hour))

	// Act
	err := s.cache.DeleteCategories(ctx)

	// Assert
	s.NoError(err)

	cached, err := s.cache.GetCategories(ctx)
	s.NoError(err)
	s.Nil(cached)
}

func (s *RedisClientTestSuite) TestCategoriesExpireAfterTTL() {
	ctx := context.Background()

	categories := []entity.Category{{ID: uuid.New(), Name: "Electronics"}}
	s.NoError(s.cache.SetCategories(ctx, categories, time.Minute))

	// Act: перематываем время вперед за TTL
	s.miniRedis.FastForward(2 * time.Minute)

	cached, err := s.cache.GetCategories(ctx)

	// Assert
	s.NoError(err)
	s.Nil(cached)
}
