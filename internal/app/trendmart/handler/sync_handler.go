package handler

import (
	"errors"
	"net/http"
	"strconv"

	"trendmart/internal/app/trendmart/entity"
	"trendmart/internal/app/trendmart/service"

	"github.com/gin-gonic/gin"
)

// SyncHandler обрабатывает HTTP запросы управления синхронизацией каталога
type SyncHandler struct {
	syncService service.SyncServiceInterface
}

// NewSyncHandler создает новый обработчик синхронизации
func NewSyncHandler(syncService service.SyncServiceInterface) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

// RunSync обрабатывает POST /admin/sync
// Запускает синхронизацию немедленно; 409 если уже идет
func (h *SyncHandler) RunSync(c *gin.Context) {
	result, err := h.syncService.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "Sync already in progress"})
			return
		}
		if errors.Is(err, service.ErrUpstreamUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream catalog API unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed"})
		return
	}

	c.JSON(http.StatusOK, entity.SyncResponse{
		Message:           "Sync completed",
		CategoriesCreated: result.CategoriesCreated,
		ProductsCreated:   result.ProductsCreated,
		ProductsUpdated:   result.ProductsUpdated,
		ProductsSkipped:   result.ProductsSkipped,
	})
}

// GetSyncReports обрабатывает GET /admin/sync/reports
func (h *SyncHandler) GetSyncReports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}

	reports, err := h.syncService.GetRecentReports(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sync reports"})
		return
	}

	c.JSON(http.StatusOK, entity.SyncReportListResponse{
		Reports: reports,
		Total:   len(reports),
	})
}
