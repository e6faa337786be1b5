//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"trendmart/internal/app/trendmart/entity"
	"trendmart/internal/app/trendmart/handler"
	"trendmart/internal/app/trendmart/repository"
	"trendmart/internal/app/trendmart/service"
	"trendmart/internal/app/trendmart/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TrendmartIntegrationTestSuite содержит интеграционные тесты для trendmart
// Требует запущенные PostgreSQL и Redis
type TrendmartIntegrationTestSuite struct {
	suite.Suite
	db          *gorm.DB
	redisClient *util.RedisClient
	jwtManager  *util.JWTManager
	router      *gin.Engine
}

// SetupSuite выполняется один раз перед всеми тестами
func (s *TrendmartIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	// Подключение к PostgreSQL (тестовая БД)
	dsn := "host=localhost port=5433 user=postgres password=postgres dbname=trendmart_test sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL")
	s.db = db

	// Подключение к Redis
	redisClient, err := util.NewRedisClient("localhost:6380", "", 15)
	require.NoError(s.T(), err, "Failed to connect to Redis")
	s.redisClient = redisClient

	// Применяем миграции
	s.setupDatabase()

	// Инициализируем репозитории
	categoryRepo := repository.NewCategoryRepository(s.db)
	productRepo := repository.NewProductRepository(s.db)
	clickRepo := repository.NewClickRepository(s.db)
	userRepo := repository.NewAdminUserRepository(s.db)

	// Создаем mock Kafka producer для тестов (не отправляет реальные сообщения)
	kafkaProducer := &mockKafkaProducer{}

	// Инициализируем сервисы
	s.jwtManager = util.NewJWTManager("integration-test-secret", time.Hour)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, s.redisClient, kafkaProducer, "product-events")
	trackingService := service.NewTrackingService(productRepo)
	analyticsService := service.NewAnalyticsService(categoryRepo, productRepo, clickRepo)
	authService := service.NewAuthService(userRepo, s.jwtManager)

	// Инициализируем handlers
	catalogHandler := handler.NewCatalogHandler(catalogService)
	trackingHandler := handler.NewTrackingHandler(trackingService, analyticsService)
	authHandler := handler.NewAuthHandler(authService)
	authMiddleware := handler.NewAuthMiddleware(s.jwtManager)

	// Настраиваем router
	s.router = gin.New()

	api := s.router.Group("/api")
	{
		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/products/:id", catalogHandler.GetProduct)
		api.POST("/products/:id/click", trackingHandler.TrackClick)
		api.GET("/trending", trackingHandler.GetTrending)
		api.GET("/categories", catalogHandler.ListCategories)
		api.GET("/analytics", trackingHandler.GetAnalytics)
		api.POST("/auth/login", authHandler.Login)
	}

	admin := s.router.Group("/admin")
	admin.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole("admin", "manager"))
	{
		admin.GET("/dashboard", trackingHandler.GetAnalytics)
		admin.GET("/products", catalogHandler.ListAllProducts)
		admin.POST("/products", catalogHandler.CreateProduct)
		admin.PATCH("/products/:id/toggle", catalogHandler.ToggleProduct)
		admin.POST("/categories", catalogHandler.CreateCategory)
	}
}

// TearDownSuite выполняется один раз после всех тестов
func (s *TrendmartIntegrationTestSuite) TearDownSuite() {
	s.cleanupDatabase()
	if s.redisClient != nil {
		s.redisClient.Close()
	}
}

// SetupTest выполняется перед каждым тестом
func (s *TrendmartIntegrationTestSuite) SetupTest() {
	// Очищаем данные перед каждым тестом
	s.db.Exec("DELETE FROM product_clicks")
	s.db.Exec("DELETE FROM products")
	s.db.Exec("DELETE FROM categories")
	s.db.Exec("DELETE FROM admin_users")
	s.redisClient.DeleteCategories(context.Background())
}

func (s *TrendmartIntegrationTestSuite) setupDatabase() {
	err := s.db.AutoMigrate(&entity.Category{}, &entity.Product{}, &entity.ProductClick{}, &entity.AdminUser{})
	require.NoError(s.T(), err)
}

func (s *TrendmartIntegrationTestSuite) cleanupDatabase() {
	s.db.Exec("DROP TABLE IF EXISTS product_clicks")
	s.db.Exec("DROP TABLE IF EXISTS products")
	s.db.Exec("DROP TABLE IF EXISTS categories")
	s.db.Exec("DROP TABLE IF EXISTS admin_users")
}

// createCategory создает категорию напрямую в БД
func (s *TrendmartIntegrationTestSuite) createCategory(name, slug string) *entity.Category {
	category := &entity.Category{ID: uuid.New(), Name: name, Slug: slug, CreatedAt: time.Now()}
	require.NoError(s.T(), s.db.Create(category).Error)
	return category
}

// createProduct создает товар напрямую в БД
func (s *TrendmartIntegrationTestSuite) createProduct(categoryID uuid.UUID, title string, clicks int, active bool) *entity.Product {
	product := &entity.Product{
		ID:          uuid.New(),
		Title:       title,
		Description: "Integration test product",
		Price:       49.99,
		CategoryID:  categoryID,
		RatingRate:  4.2,
		RatingCount: 120,
		ClickCount:  clicks,
		IsActive:    active,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(s.T(), s.db.Create(product).Error)
	return product
}

// createClickedProduct создает товар с заданным временем последнего клика
func (s *TrendmartIntegrationTestSuite) createClickedProduct(categoryID uuid.UUID, title string, clicks int, lastClicked *time.Time) *entity.Product {
	product := s.createProduct(categoryID, title, clicks, true)
	if lastClicked != nil {
		require.NoError(s.T(), s.db.Model(product).Update("last_clicked", lastClicked).Error)
	}
	return product
}

// adminToken регистрирует администратора и возвращает его JWT
func (s *TrendmartIntegrationTestSuite) adminToken() string {
	hash, err := util.HashPassword("admin123")
	require.NoError(s.T(), err)

	user := &entity.AdminUser{
		ID:           uuid.New(),
		Username:     "admin",
		PasswordHash: hash,
		Role:         "admin",
		CreatedAt:    time.Now(),
	}
	require.NoError(s.T(), s.db.Create(user).Error)

	token, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	require.NoError(s.T(), err)
	return token
}

// mockKafkaProducer - мок для Kafka в интеграционных тестах
type mockKafkaProducer struct{}

func (m *mockKafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	return nil
}

func (m *mockKafkaProducer) Close() error {
	return nil
}

// stubSyncReportRepo хранит отчеты синхронизации в памяти вместо MongoDB
type stubSyncReportRepo struct {
	mu      sync.Mutex
	reports []entity.SyncReport
}

func (r *stubSyncReportRepo) Create(ctx context.Context, report *entity.SyncReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, *report)
	return nil
}

func (r *stubSyncReportRepo) GetRecent(ctx context.Context, limit int) ([]entity.SyncReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.reports) {
		limit = len(r.reports)
	}
	return r.reports[:limit], nil
}

// ==================== Storefront Tests ====================

func (s *TrendmartIntegrationTestSuite) TestListProducts_FiltersInactiveAndByCategory() {
	// Arrange
	clothing := s.createCategory("Men's Clothing", "mens-clothing")
	electronics := s.createCategory("Electronics", "electronics")
	s.createProduct(clothing.ID, "Backpack", 0, true)
	s.createProduct(clothing.ID, "Hidden jacket", 0, false)
	s.createProduct(electronics.ID, "SSD drive", 0, true)

	req := httptest.NewRequest(http.MethodGet, "/api/products?category=mens-clothing", nil)
	rec := httptest.NewRecorder()

	// Act
	s.router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var response entity.ProductListResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(s.T(), 1, response.Total)
	assert.Equal(s.T(), "Backpack", response.Products[0].Title)
}

func (s *TrendmartIntegrationTestSuite) TestGetCategories_PopulatesCache() {
	// Arrange
	s.createCategory("Electronics", "electronics")
	s.createCategory("Jewelery", "jewelery")

	// Act - первый запрос читает из БД и кладет список в Redis
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var response entity.CategoryListResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(s.T(), 2, response.Total)

	cached, err := s.redisClient.GetCategories(context.Background())
	require.NoError(s.T(), err)
	assert.Len(s.T(), cached, 2)
}

// ==================== Tracking Tests ====================

func (s *TrendmartIntegrationTestSuite) TestTrackClick_IncrementsCounterAndStoresClick() {
	// Arrange
	category := s.createCategory("Electronics", "electronics")
	product := s.createProduct(category.ID, "SSD drive", 5, true)

	req := httptest.NewRequest(http.MethodPost, "/api/products/"+product.ID.String()+"/click", nil)
	req.Header.Set("User-Agent", "integration-test")
	rec := httptest.NewRecorder()

	// Act
	s.router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var response entity.ClickResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(s.T(), 6, response.ClickCount)

	var stored entity.Product
	require.NoError(s.T(), s.db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(s.T(), 6, stored.ClickCount)
	require.NotNil(s.T(), stored.LastClicked)
	assert.WithinDuration(s.T(), time.Now(), *stored.LastClicked, time.Minute)

	var clickCount int64
	s.db.Model(&entity.ProductClick{}).Where("product_id = ?", product.ID).Count(&clickCount)
	assert.Equal(s.T(), int64(1), clickCount)
}

func (s *TrendmartIntegrationTestSuite) TestTrackClick_UnknownProduct() {
	// Arrange
	req := httptest.NewRequest(http.MethodPost, "/api/products/"+uuid.NewString()+"/click", nil)
	rec := httptest.NewRecorder()

	// Act
	s.router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *TrendmartIntegrationTestSuite) TestTrackClick_ConcurrentClicksNotLost() {
	// Arrange
	category := s.createCategory("Electronics", "electronics")
	product := s.createProduct(category.ID, "SSD drive", 0, true)

	const clicks = 20

	// Act - параллельные клики по одному товару
	var wg sync.WaitGroup
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/products/"+product.ID.String()+"/click", nil)
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)
			assert.Equal(s.T(), http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	// Assert: счетчик увеличился ровно на N, записей кликов ровно N
	var stored entity.Product
	require.NoError(s.T(), s.db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(s.T(), clicks, stored.ClickCount)

	var clickRows int64
	s.db.Model(&entity.ProductClick{}).Where("product_id = ?", product.ID).Count(&clickRows)
	assert.Equal(s.T(), int64(clicks), clickRows)
}

func (s *TrendmartIntegrationTestSuite) TestGetTrending_TieBreakByLastClickedNullsLast() {
	// Arrange: равные счетчики разрешаются более свежим кликом,
	// товары без кликов всегда в хвосте
	category := s.createCategory("Electronics", "electronics")

	t1 := time.Now().Add(-2 * time.Hour)
	t2 := time.Now().Add(-1 * time.Hour)

	s.createClickedProduct(category.ID, "Stale favourite", 10, &t1)
	s.createClickedProduct(category.ID, "Fresh favourite", 10, &t2)
	s.createClickedProduct(category.ID, "Mid product", 3, &t1)
	s.createClickedProduct(category.ID, "Never clicked", 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/trending", nil)
	rec := httptest.NewRecorder()

	// Act
	s.router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var response entity.TrendingListResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(s.T(), 4, response.Total)
	assert.Equal(s.T(), "Fresh favourite", response.Products[0].Title)
	assert.Equal(s.T(), "Stale favourite", response.Products[1].Title)
	assert.Equal(s.T(), "Mid product", response.Products[2].Title)
	assert.Equal(s.T(), "Never clicked", response.Products[3].Title)
}

func (s *TrendmartIntegrationTestSuite) TestGetTrending_OrdersByClickCount() {
	// Arrange
	category := s.createCategory("Electronics", "electronics")
	s.createProduct(category.ID, "Cold product", 1, true)
	s.createProduct(category.ID, "Hot product", 42, true)
	s.createProduct(category.ID, "Inactive hit", 100, false)

	req := httptest.NewRequest(http.MethodGet, "/api/trending?limit=2", nil)
	rec := httptest.NewRecorder()

	// Act
	s.router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var response entity.TrendingListResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(s.T(), 2, response.Total)
	assert.Equal(s.T(), "Hot product", response.Products[0].Title)
	assert.Equal(s.T(), 42, response.Products[0].ClickCount)
	assert.Equal(s.T(), "Electronics", response.Products[0].CategoryName)
}

// ==================== Analytics Tests ====================

func (s *TrendmartIntegrationTestSuite) TestAnalytics_AggregatesCatalog() {
	// Arrange
	electronics := s.createCategory("Electronics", "electronics")
	jewelery := s.createCategory("Jewelery", "jewelery")
	s.createProduct(electronics.ID, "SSD drive", 10, true)
	s.createProduct(electronics.ID, "Monitor", 3, true)
	s.createProduct(jewelery.ID, "Gold ring", 7, true)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	rec := httptest.NewRecorder()

	// Act
	s.router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var response entity.DashboardResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(s.T(), 3, response.TotalProducts)
	assert.Equal(s.T(), 2, response.TotalCategories)
	assert.Equal(s.T(), 20, response.TotalClicks)
	assert.Equal(s.T(), 4.2, response.AvgRating)
	assert.Len(s.T(), response.CategoryData, 2)
	assert.Len(s.T(), response.ClickAnalytics, 3)
	assert.Equal(s.T(), "SSD drive", response.ClickAnalytics[0].Title)
}

// ==================== Sync Tests ====================

func (s *TrendmartIntegrationTestSuite) TestSync_RunTwiceIsIdempotent() {
	// Arrange: upstream с неизменной выгрузкой
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/categories":
			json.NewEncoder(w).Encode([]string{"electronics"})
		case "/products":
			json.NewEncoder(w).Encode([]entity.ExternalProduct{
				{
					ID:          1,
					Title:       "SSD drive",
					Price:       89.99,
					Description: "Fast NVMe storage for any workstation",
					Category:    "electronics",
					Image:       "https://example.com/ssd.png",
					Rating:      entity.ExternalRating{Rate: 4.6, Count: 310},
				},
				{
					ID:          2,
					Title:       "Monitor",
					Price:       199.99,
					Description: "27 inch IPS panel",
					Category:    "electronics",
					Image:       "https://example.com/monitor.png",
					Rating:      entity.ExternalRating{Rate: 4.1, Count: 88},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	client := service.NewFakeStoreClient(upstream.URL, 5*time.Second, service.RetryPolicy{
		MaxAttempts: 3,
		BackoffBase: 10 * time.Millisecond,
	})
	syncService := service.NewSyncService(
		repository.NewCategoryRepository(s.db),
		repository.NewProductRepository(s.db),
		&stubSyncReportRepo{},
		client,
		&mockKafkaProducer{},
		"product-events",
	)

	// Act - первый запуск создает каталог
	first, err := syncService.Run(context.Background())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, first.CategoriesCreated)
	assert.Equal(s.T(), 2, first.ProductsCreated)
	assert.Equal(s.T(), 0, first.ProductsUpdated)

	var afterFirst []entity.Product
	require.NoError(s.T(), s.db.Order("external_id").Find(&afterFirst).Error)

	// Act - повторный запуск против неизменного upstream
	second, err := syncService.Run(context.Background())
	require.NoError(s.T(), err)

	// Assert: ни дубликатов, ни новых категорий, поля не изменились
	assert.Equal(s.T(), 0, second.CategoriesCreated)
	assert.Equal(s.T(), 0, second.ProductsCreated)
	assert.Equal(s.T(), 2, second.ProductsUpdated)
	assert.Equal(s.T(), 0, second.ProductsSkipped)

	var categoryCount, productCount int64
	s.db.Model(&entity.Category{}).Count(&categoryCount)
	s.db.Model(&entity.Product{}).Count(&productCount)
	assert.Equal(s.T(), int64(1), categoryCount)
	assert.Equal(s.T(), int64(2), productCount)

	var afterSecond []entity.Product
	require.NoError(s.T(), s.db.Order("external_id").Find(&afterSecond).Error)
	require.Len(s.T(), afterSecond, 2)

	for i := range afterSecond {
		assert.Equal(s.T(), afterFirst[i].ID, afterSecond[i].ID)
		assert.Equal(s.T(), afterFirst[i].Title, afterSecond[i].Title)
		assert.Equal(s.T(), afterFirst[i].Price, afterSecond[i].Price)
		assert.Equal(s.T(), afterFirst[i].CategoryID, afterSecond[i].CategoryID)
		assert.Equal(s.T(), afterFirst[i].ImageURL, afterSecond[i].ImageURL)
		assert.Equal(s.T(), afterFirst[i].RatingRate, afterSecond[i].RatingRate)
		assert.Equal(s.T(), afterFirst[i].RatingCount, afterSecond[i].RatingCount)
		assert.True(s.T(), afterSecond[i].IsActive)
	}
}

// ==================== Admin Tests ====================

func (s *TrendmartIntegrationTestSuite) TestLogin_ReturnsToken() {
	// Arrange
	s.adminToken() // создает пользователя admin/admin123

	body, _ := json.Marshal(entity.LoginRequest{Username: "admin", Password: "admin123"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	// Act
	s.router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var response entity.LoginResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotEmpty(s.T(), response.Token)
	assert.Equal(s.T(), "admin", response.Role)

	claims, err := s.jwtManager.ValidateToken(response.Token)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "admin", claims.Username)
}

func (s *TrendmartIntegrationTestSuite) TestAdminRoutes_RequireToken() {
	// Arrange
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()

	// Act
	s.router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}

func (s *TrendmartIntegrationTestSuite) TestCreateProduct_Persists() {
	// Arrange
	token := s.adminToken()
	category := s.createCategory("Electronics", "electronics")

	reqBody := entity.CreateProductRequest{
		Title:       "Mechanical keyboard",
		Description: "Tenkeyless board with hot-swap sockets",
		Price:       129.99,
		CategoryID:  category.ID,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/admin/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	// Act
	s.router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(s.T(), http.StatusCreated, rec.Code)

	var response entity.Product
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(s.T(), response.IsActive)

	var stored entity.Product
	require.NoError(s.T(), s.db.First(&stored, "id = ?", response.ID).Error)
	assert.Equal(s.T(), "Mechanical keyboard", stored.Title)
}

func (s *TrendmartIntegrationTestSuite) TestToggleProduct_HidesFromStorefront() {
	// Arrange
	token := s.adminToken()
	category := s.createCategory("Electronics", "electronics")
	product := s.createProduct(category.ID, "SSD drive", 0, true)

	req := httptest.NewRequest(http.MethodPatch, "/admin/products/"+product.ID.String()+"/toggle", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	// Act
	s.router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	listReq := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	listRec := httptest.NewRecorder()
	s.router.ServeHTTP(listRec, listReq)

	var response entity.ProductListResponse
	require.NoError(s.T(), json.Unmarshal(listRec.Body.Bytes(), &response))
	assert.Equal(s.T(), 0, response.Total)
}

func TestTrendmartIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(TrendmartIntegrationTestSuite))
}
