package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/investghanahub/backend/internal/audit/application"
	"github.com/investghanahub/backend/internal/audit/domain"
	"github.com/investghanahub/backend/pkg/middleware"
)

// Handler 审计与风控管理端 HTTP 处理器
type Handler struct {
	fraud *application.FraudService
	query *application.AuditQueryService
}

func NewHandler(fraud *application.FraudService, query *application.AuditQueryService) *Handler {
	return &Handler{fraud: fraud, query: query}
}

// RegisterAdminRoutes 注册管理端路由
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.ListLogs)
	r.GET("/fraud-alerts", h.ListAlerts)
	r.POST("/fraud-alerts/:id/resolve", h.ResolveAlert)
}

func (h *Handler) ListLogs(c *gin.Context) {
	filter := domain.AuditLogFilter{
		EntityType: c.Query("entity_type"),
		Action:     c.Query("action"),
	}
	if actor := c.Query("actor_id"); actor != "" {
		id, err := strconv.ParseUint(actor, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid actor id"})
			return
		}
		filter.ActorID = uint(id)
	}
	if entity := c.Query("entity_id"); entity != "" {
		id, err := strconv.ParseUint(entity, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity id"})
			return
		}
		filter.EntityID = uint(id)
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, total, err := h.query.ListLogs(c.Request.Context(), filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		items = append(items, gin.H{
			"id":          e.ID,
			"actor_id":    e.ActorID,
			"admin_id":    e.AdminID,
			"action":      e.Action,
			"entity_type": e.EntityType,
			"entity_id":   e.EntityID,
			"detail":      e.Detail,
			"created_at":  e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) ListAlerts(c *gin.Context) {
	status := domain.FraudAlertStatus(c.DefaultQuery("status", string(domain.FraudAlertPending)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	alerts, total, err := h.query.ListAlerts(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": alerts, "total": total})
}

func (h *Handler) ResolveAlert(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}
	alert, err := h.fraud.Resolve(c.Request.Context(), p.UserID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlertNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrAlertNotPending):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, alert)
}
