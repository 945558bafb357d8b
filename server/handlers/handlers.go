// Package handlers gin 路由处理器。
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "gpcards/server/errors"
	"gpcards/server/middleware"
	"gpcards/server/services"
)

// Handlers 全部 HTTP 处理器及其依赖。
type Handlers struct {
	cards         *services.CardService
	announcements *services.AnnouncementService
	logger        *slog.Logger
}

// New 创建处理器集合。
func New(cards *services.CardService, announcements *services.AnnouncementService, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{cards: cards, announcements: announcements, logger: logger}
}

// Health GET /api/health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NotFound 未注册路由的兜底响应。
func (h *Handlers) NotFound(c *gin.Context) {
	appErr := apperrors.NewNotFoundError("接口不存在", nil)
	c.JSON(appErr.StatusCode(), gin.H{
		"error":      appErr.UserMessage(),
		"request_id": middleware.GetRequestID(c),
	})
}

// GetCards GET /api/cards?company=&contact=&exact=&limit=
func (h *Handlers) GetCards(c *gin.Context) {
	limit, err := queryInt(c, "limit", 100)
	if err != nil {
		h.abort(c, apperrors.NewValidationError("limit 参数无效", err))
		return
	}
	exact := c.Query("exact") == "true" || c.Query("exact") == "1"

	cards, err := h.cards.Search(c.Request.Context(),
		c.Query("company"), c.Query("contact"), exact, limit)
	if err != nil {
		h.abort(c, apperrors.NewInternalError("查询名片失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(cards), "cards": cards})
}

// GetAnnouncements GET /api/announcements?keyword=&limit=
func (h *Handlers) GetAnnouncements(c *gin.Context) {
	limit, err := queryInt(c, "limit", 100)
	if err != nil {
		h.abort(c, apperrors.NewValidationError("limit 参数无效", err))
		return
	}

	records, err := h.announcements.List(c.Request.Context(), c.Query("keyword"), limit)
	if err != nil {
		h.abort(c, apperrors.NewInternalError("查询公告失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(records), "announcements": records})
}

// GetStats GET /api/stats
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.announcements.Stats(c.Request.Context())
	if err != nil {
		h.abort(c, apperrors.NewInternalError("统计查询失败", err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportCards POST /api/export  body: {"format": "xlsx"|"csv"}
func (h *Handlers) ExportCards(c *gin.Context) {
	var req struct {
		Format string `json:"format"`
	}
	// 请求体可省略，省略时按 xlsx 导出
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Format = "xlsx"
	}

	path, err := h.cards.Export(c.Request.Context(), req.Format)
	if err != nil {
		h.abort(c, apperrors.NewInternalError("导出失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": path})
}

// Reprocess POST /api/reprocess
func (h *Handlers) Reprocess(c *gin.Context) {
	report, err := h.announcements.Reprocess(c.Request.Context())
	if err != nil {
		h.abort(c, apperrors.NewInternalError("归属修复失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"checked": report.Checked,
		"moved":   report.Moved,
		"orphans": report.Orphans,
	})
}

func (h *Handlers) abort(c *gin.Context, appErr *apperrors.AppError) {
	h.logger.Error("请求处理失败",
		"error", appErr.Error(),
		"status", appErr.StatusCode(),
		"path", c.Request.URL.Path,
		"request_id", middleware.GetRequestID(c))
	c.AbortWithStatusJSON(appErr.StatusCode(), gin.H{
		"error":      appErr.UserMessage(),
		"request_id": middleware.GetRequestID(c),
	})
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
