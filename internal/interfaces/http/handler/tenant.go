package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/identity"
	domidentity "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/identity"
)

// TenantHandler handles the authenticated tenant's profile
type TenantHandler struct {
	BaseHandler
	tenantService *identity.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *identity.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// RegisterRoutes registers tenant routes
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tenants := rg.Group("/tenants")
	tenants.GET("/me", h.GetProfile)
	tenants.PUT("/me/payout", h.UpdatePayout)
}

// GetProfile returns the authenticated tenant's profile
func (h *TenantHandler) GetProfile(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	tenant, err := h.tenantService.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// UpdatePayoutRequest represents the payout details update body
type UpdatePayoutRequest struct {
	BankName      string `json:"bank_name" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
}

// UpdatePayout replaces the tenant's payout details. The details appear
// on every invoice document the tenant sends.
func (h *TenantHandler) UpdatePayout(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenant, err := h.tenantService.UpdatePayout(c.Request.Context(), tenantID, domidentity.PayoutDetails{
		BankName:      req.BankName,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}
