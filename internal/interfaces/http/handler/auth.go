package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/identity"
	domidentity "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/identity"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/interfaces/http/middleware"
)

// AuthHandler handles tenant signup and authentication
type AuthHandler struct {
	BaseHandler
	authService   *identity.AuthService
	tenantService *identity.TenantService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, tenantService *identity.TenantService) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		tenantService: tenantService,
	}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	ChannelIdentity string `json:"channel_identity" binding:"required"`
	BusinessName    string `json:"business_name" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	ContactEmail    string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone    string `json:"contact_phone"`
	Currency        string `json:"currency" binding:"omitempty,len=3"`
	BankName        string `json:"bank_name"`
	AccountName     string `json:"account_name"`
	AccountNumber   string `json:"account_number"`
}

// Signup registers a business keyed to its channel identity
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	tenant, err := h.tenantService.Signup(c.Request.Context(), identity.SignupInput{
		ChannelIdentity: req.ChannelIdentity,
		BusinessName:    req.BusinessName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		Currency:        req.Currency,
		Password:        req.Password,
		Payout: domidentity.PayoutDetails{
			BankName:      req.BankName,
			AccountName:   req.AccountName,
			AccountNumber: req.AccountNumber,
		},
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tenant)
}

// LoginRequest represents the login request body
type LoginRequest struct {
	ChannelIdentity string `json:"channel_identity" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

// Login authenticates a tenant and returns a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		ChannelIdentity: req.ChannelIdentity,
		Password:        req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a valid refresh token for a new token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tokens)
}
