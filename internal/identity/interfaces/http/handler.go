package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/investghanahub/backend/internal/identity/application"
	"github.com/investghanahub/backend/internal/identity/domain"
	"github.com/investghanahub/backend/pkg/middleware"
)

// Handler 身份与认证 HTTP 处理器
type Handler struct {
	auth  *application.AuthCommandService
	kyc   *application.KYCCommandService
	query *application.IdentityQueryService
}

func NewHandler(auth *application.AuthCommandService, kyc *application.KYCCommandService, query *application.IdentityQueryService) *Handler {
	return &Handler{auth: auth, kyc: kyc, query: query}
}

// RegisterPublicRoutes 注册无需登录的路由
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	g := r.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

// RegisterRoutes 注册需要登录的路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/logout", h.Logout)
	r.GET("/users/me", h.Me)
	r.POST("/kyc", h.SubmitKYC)
	r.GET("/kyc/me", h.MyKYC)
}

// RegisterAdminRoutes 注册管理端路由
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/kyc", h.ListKYC)
	r.POST("/kyc/:userID/review", h.ReviewKYC)
}

func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		FullName string `json:"full_name" binding:"required"`
		Phone    string `json:"phone"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.auth.Register(c.Request.Context(), application.RegisterCommand{
		Email:    strings.ToLower(req.Email),
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     domain.UserRole(req.Role),
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": id})
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, exp, err := h.auth.Login(c.Request.Context(), application.LoginCommand{
		Email:    strings.ToLower(req.Email),
		Password: req.Password,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "type": "Bearer", "expires_at": exp})
}

func (h *Handler) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) Me(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := h.query.GetUser(c.Request.Context(), p.UserID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
		"phone":     user.Phone,
		"role":      user.Role,
	})
}

func (h *Handler) SubmitKYC(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		FullName       string `json:"full_name" binding:"required"`
		DocumentType   string `json:"document_type" binding:"required"`
		DocumentNumber string `json:"document_number" binding:"required"`
		Address        string `json:"address" binding:"required"`
		Region         string `json:"region" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kyc, err := h.kyc.Submit(c.Request.Context(), application.SubmitKYCCommand{
		UserID:         p.UserID,
		FullName:       req.FullName,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		Address:        req.Address,
		Region:         req.Region,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, kycResponse(kyc))
}

func (h *Handler) MyKYC(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	kyc, err := h.query.GetKYC(c.Request.Context(), p.UserID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, kycResponse(kyc))
}

func (h *Handler) ListKYC(c *gin.Context) {
	status := domain.KYCStatus(c.DefaultQuery("status", string(domain.KYCPending)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, total, err := h.query.ListKYCByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]gin.H, 0, len(records))
	for _, r := range records {
		items = append(items, kycResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) ReviewKYC(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	userID, err := strconv.ParseUint(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
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
	kyc, err := h.kyc.Review(c.Request.Context(), application.ReviewKYCCommand{
		AdminID: p.UserID,
		UserID:  uint(userID),
		Approve: req.Approve,
		Reason:  req.Reason,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, kycResponse(kyc))
}

func kycResponse(kyc *domain.KYC) gin.H {
	return gin.H{
		"user_id":          kyc.UserID,
		"full_name":        kyc.FullName,
		"document_type":    kyc.DocumentType,
		"document_number":  kyc.DocumentNumber,
		"address":          kyc.Address,
		"region":           kyc.Region,
		"status":           kyc.Status,
		"rejection_reason": kyc.RejectionReason,
		"reviewed_at":      kyc.ReviewedAt,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrKYCNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrKYCAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrKYCNotPending):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidRole), errors.Is(err, domain.ErrReasonRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
