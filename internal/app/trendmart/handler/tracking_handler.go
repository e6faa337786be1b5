package handler

import (
	"errors"
	"net/http"
	"strconv"

	"trendmart/internal/app/trendmart/entity"
	"trendmart/internal/app/trendmart/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TrackingHandler обрабатывает HTTP запросы трекинга кликов и трендов
type TrackingHandler struct {
	trackingService  service.TrackingServiceInterface
	analyticsService service.AnalyticsServiceInterface
}

// NewTrackingHandler создает новый обработчик трекинга
func NewTrackingHandler(
	trackingService service.TrackingServiceInterface,
	analyticsService service.AnalyticsServiceInterface,
) *TrackingHandler {
	return &TrackingHandler{
		trackingService:  trackingService,
		analyticsService: analyticsService,
	}
}

// TrackClick обрабатывает POST /api/products/{id}/click
// Тело запроса не требуется, IP и User-Agent берутся из запроса
func (h *TrackingHandler) TrackClick(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	clickCount, err := h.trackingService.TrackClick(
		c.Request.Context(),
		productID,
		c.ClientIP(),
		c.Request.UserAgent(),
	)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track click"})
		return
	}

	c.JSON(http.StatusOK, entity.ClickResponse{
		Message:    "Click tracked",
		ClickCount: clickCount,
	})
}

// GetTrending обрабатывает GET /api/trending
// Невалидный ?limit= молча заменяется значением по умолчанию
func (h *TrackingHandler) GetTrending(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		limit = 0
	}

	trending, err := h.trackingService.GetTrending(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get trending products"})
		return
	}

	c.JSON(http.StatusOK, entity.TrendingListResponse{
		Products: trending,
		Total:    len(trending),
	})
}

// GetAnalytics обрабатывает GET /api/analytics и GET /admin/dashboard
func (h *TrackingHandler) GetAnalytics(c *gin.Context) {
	dashboard, err := h.analyticsService.GetDashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analytics"})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
