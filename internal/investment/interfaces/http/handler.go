package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/investghanahub/backend/internal/investment/application"
	"github.com/investghanahub/backend/internal/investment/domain"
	"github.com/investghanahub/backend/pkg/middleware"
	"github.com/shopspring/decimal"
)

// Handler 投资 HTTP 处理器
type Handler struct {
	opportunityCmd *application.OpportunityCommandService
	investCmd      *application.InvestCommandService
	query          *application.InvestmentQueryService
}

func NewHandler(
	opportunityCmd *application.OpportunityCommandService,
	investCmd *application.InvestCommandService,
	query *application.InvestmentQueryService,
) *Handler {
	return &Handler{
		opportunityCmd: opportunityCmd,
		investCmd:      investCmd,
		query:          query,
	}
}

// RegisterRoutes 注册需要登录的路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	o := r.Group("/opportunities")
	o.POST("", h.CreateOpportunity)
	o.GET("", h.ListOpportunities)
	o.GET("/:id", h.GetOpportunity)
	o.POST("/:id/invest", h.Invest)

	i := r.Group("/investments")
	i.GET("", h.Portfolio)
	i.GET("/:id", h.GetInvestment)
	i.POST("/:id/cancel", h.Cancel)

	r.GET("/transactions", h.ListTransactions)
}

func (h *Handler) CreateOpportunity(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		BusinessID       uint   `json:"business_id" binding:"required"`
		Title            string `json:"title" binding:"required"`
		Description      string `json:"description"`
		TargetAmount     string `json:"target_amount" binding:"required"`
		MinInvestment    string `json:"min_investment" binding:"required"`
		MaxInvestment    string `json:"max_investment" binding:"required"`
		AnnualReturnRate string `json:"annual_return_rate" binding:"required"`
		DurationDays     int    `json:"duration_days" binding:"required"`
		StartDate        string `json:"start_date" binding:"required"`
		EndDate          string `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err1 := decimal.NewFromString(req.TargetAmount)
	min, err2 := decimal.NewFromString(req.MinInvestment)
	max, err3 := decimal.NewFromString(req.MaxInvestment)
	rate, err4 := decimal.NewFromString(req.AnnualReturnRate)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decimal amount"})
		return
	}
	start, err5 := time.Parse(time.RFC3339, req.StartDate)
	end, err6 := time.Parse(time.RFC3339, req.EndDate)
	if err5 != nil || err6 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be RFC3339"})
		return
	}

	opportunity, err := h.opportunityCmd.Create(c.Request.Context(), application.CreateOpportunityCommand{
		BusinessID:       req.BusinessID,
		OwnerID:          p.UserID,
		Title:            req.Title,
		Description:      req.Description,
		TargetAmount:     target,
		MinInvestment:    min,
		MaxInvestment:    max,
		AnnualReturnRate: rate,
		DurationDays:     req.DurationDays,
		StartDate:        start,
		EndDate:          end,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, opportunityResponse(opportunity))
}

func (h *Handler) ListOpportunities(c *gin.Context) {
	status := domain.OpportunityStatus(c.Query("status"))
	var businessID uint
	if raw := c.Query("business_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid business id"})
			return
		}
		businessID = uint(id)
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	opportunities, total, err := h.query.ListOpportunities(c.Request.Context(), status, businessID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]gin.H, 0, len(opportunities))
	for _, o := range opportunities {
		items = append(items, opportunityResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) GetOpportunity(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity id"})
		return
	}
	opportunity, err := h.query.GetOpportunity(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, opportunityResponse(opportunity))
}

func (h *Handler) Invest(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity id"})
		return
	}
	var req struct {
		Amount string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive decimal"})
		return
	}

	investment, err := h.investCmd.Invest(c.Request.Context(), application.InvestCommand{
		InvestorID:    p.UserID,
		OpportunityID: uint(id),
		Amount:        amount,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, investmentResponse(investment))
}

func (h *Handler) Portfolio(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	investments, total, summary, err := h.query.Portfolio(c.Request.Context(), p.UserID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]gin.H, 0, len(investments))
	for _, inv := range investments {
		items = append(items, investmentResponse(inv))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "summary": summary})
}

func (h *Handler) GetInvestment(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid investment id"})
		return
	}
	investment, err := h.query.GetInvestment(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if investment.InvestorID != p.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": domain.ErrNotInvestor.Error()})
		return
	}
	c.JSON(http.StatusOK, investmentResponse(investment))
}

func (h *Handler) Cancel(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid investment id"})
		return
	}
	investment, err := h.investCmd.Cancel(c.Request.Context(), application.CancelInvestmentCommand{
		InvestorID:   p.UserID,
		InvestmentID: uint(id),
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, investmentResponse(investment))
}

func (h *Handler) ListTransactions(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	transactions, total, err := h.query.ListTransactions(c.Request.Context(), p.UserID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]gin.H, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, gin.H{
			"id":            t.ID,
			"investment_id": t.InvestmentID,
			"type":          t.Type,
			"amount":        t.Amount,
			"reference":     t.Reference,
			"created_at":    t.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func opportunityResponse(o *domain.Opportunity) gin.H {
	return gin.H{
		"id":                 o.ID,
		"business_id":        o.BusinessID,
		"title":              o.Title,
		"description":        o.Description,
		"target_amount":      o.TargetAmount,
		"min_investment":     o.MinInvestment,
		"max_investment":     o.MaxInvestment,
		"current_amount":     o.CurrentAmount,
		"annual_return_rate": o.AnnualReturnRate,
		"duration_days":      o.DurationDays,
		"start_date":         o.StartDate,
		"end_date":           o.EndDate,
		"status":             o.Status,
	}
}

func investmentResponse(i *domain.Investment) gin.H {
	return gin.H{
		"id":              i.ID,
		"investor_id":     i.InvestorID,
		"opportunity_id":  i.OpportunityID,
		"amount":          i.Amount,
		"expected_return": i.ExpectedReturn,
		"maturity_date":   i.MaturityDate,
		"status":          i.Status,
		"created_at":      i.CreatedAt,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrOpportunityNotFound), errors.Is(err, domain.ErrInvestmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotBusinessOwner), errors.Is(err, domain.ErrNotInvestor),
		errors.Is(err, domain.ErrInvestorKYCRequired):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrOpportunityNotOpen), errors.Is(err, domain.ErrBusinessNotApproved),
		errors.Is(err, domain.ErrInvestmentNotActive):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidOpportunity), errors.Is(err, domain.ErrAmountBelowMinimum),
		errors.Is(err, domain.ErrAmountAboveMaximum):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
