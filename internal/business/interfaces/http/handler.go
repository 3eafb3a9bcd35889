package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/investghanahub/backend/internal/business/application"
	"github.com/investghanahub/backend/internal/business/domain"
	"github.com/investghanahub/backend/pkg/middleware"
)

// Handler 企业 HTTP 处理器
type Handler struct {
	cmd   *application.BusinessCommandService
	query *application.BusinessQueryService
}

func NewHandler(cmd *application.BusinessCommandService, query *application.BusinessQueryService) *Handler {
	return &Handler{cmd: cmd, query: query}
}

// RegisterRoutes 注册需要登录的路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/businesses")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
}

// RegisterAdminRoutes 注册管理端路由
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/businesses/:id/review", h.Review)
}

type businessRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Stage       string `json:"stage"`
	Region      string `json:"region"`
}

func (h *Handler) Create(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req businessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	business, err := h.cmd.Create(c.Request.Context(), application.CreateBusinessCommand{
		OwnerID:     p.UserID,
		Name:        req.Name,
		Description: req.Description,
		Industry:    req.Industry,
		Stage:       req.Stage,
		Region:      req.Region,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, businessResponse(business))
}

func (h *Handler) Update(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid business id"})
		return
	}
	var req businessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	business, err := h.cmd.Update(c.Request.Context(), application.UpdateBusinessCommand{
		BusinessID:  uint(id),
		OwnerID:     p.UserID,
		Name:        req.Name,
		Description: req.Description,
		Industry:    req.Industry,
		Stage:       req.Stage,
		Region:      req.Region,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, businessResponse(business))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid business id"})
		return
	}
	business, err := h.query.Get(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, businessResponse(business))
}

func (h *Handler) List(c *gin.Context) {
	filter := domain.BusinessFilter{
		Industry: c.Query("industry"),
		Stage:    c.Query("stage"),
		Status:   domain.BusinessStatus(c.Query("status")),
	}
	if owner := c.Query("owner_id"); owner != "" {
		id, err := strconv.ParseUint(owner, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner id"})
			return
		}
		filter.OwnerID = uint(id)
	}
	if featured := c.Query("featured"); featured != "" {
		v, err := strconv.ParseBool(featured)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid featured flag"})
			return
		}
		filter.IsFeatured = &v
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	businesses, total, err := h.query.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]gin.H, 0, len(businesses))
	for _, b := range businesses {
		items = append(items, businessResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) Review(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid business id"})
		return
	}
	var req struct {
		Approve bool   `json:"approve"`
		Reason  string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	business, err := h.cmd.Review(c.Request.Context(), application.ReviewBusinessCommand{
		AdminID:    p.UserID,
		BusinessID: uint(id),
		Approve:    req.Approve,
		Reason:     req.Reason,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, businessResponse(business))
}

func businessResponse(b *domain.Business) gin.H {
	return gin.H{
		"id":               b.ID,
		"owner_id":         b.OwnerID,
		"name":             b.Name,
		"description":      b.Description,
		"industry":         b.Industry,
		"stage":            b.Stage,
		"region":           b.Region,
		"funds_raised":     b.FundsRaised,
		"is_featured":      b.IsFeatured,
		"status":           b.Status,
		"rejection_reason": b.RejectionReason,
		"reviewed_at":      b.ReviewedAt,
		"created_at":       b.CreatedAt,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBusinessNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrOwnerKYCRequired):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrBusinessNotPending), errors.Is(err, domain.ErrBusinessImmutable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidBusiness), errors.Is(err, domain.ErrBusinessReasonRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
