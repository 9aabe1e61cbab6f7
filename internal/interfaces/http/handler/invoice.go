package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	invoiceapp "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/invoice"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/interfaces/http/dto"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/interfaces/http/middleware"
)

// InvoiceHandler handles the tenant-facing invoice API. Invoices mostly
// arrive through the chat channel; this surface covers review and the
// lifecycle actions a tenant takes by hand.
type InvoiceHandler struct {
	BaseHandler
	lifecycle *invoiceapp.LifecycleService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(lifecycle *invoiceapp.LifecycleService) *InvoiceHandler {
	return &InvoiceHandler{lifecycle: lifecycle}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	invoices.GET("", h.List)
	invoices.POST("", h.Create)
	invoices.GET("/:id", h.Get)
	invoices.POST("/:id/confirm", h.Confirm)
	invoices.POST("/:id/request-confirmation", h.RequestConfirmation)
	invoices.POST("/:id/refund", h.Refund)
}

// ListInvoicesRequest represents invoice list query parameters
type ListInvoicesRequest struct {
	dto.ListRequest
	Status       string `form:"status" binding:"omitempty,oneof=pending awaiting_confirmation paid failed refunded"`
	CustomerName string `form:"customer_name"`
}

// List returns the tenant's invoices, newest first
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	req := ListInvoicesRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := invoice.InvoiceFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
		Status:       invoice.InvoiceStatus(req.Status),
		CustomerName: req.CustomerName,
	}

	page, err := h.lifecycle.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// LineItemRequest represents one invoice line item in a create request
type LineItemRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

// CreateInvoiceRequest represents the manual invoice creation body
type CreateInvoiceRequest struct {
	CustomerName  string            `json:"customer_name" binding:"required"`
	CustomerPhone string            `json:"customer_phone"`
	Amount        string            `json:"amount"`
	Currency      string            `json:"currency" binding:"omitempty,len=3"`
	Description   string            `json:"description"`
	LineItems     []LineItemRequest `json:"line_items"`
	DueDate       *time.Time        `json:"due_date"`
}

// Create creates an invoice directly, bypassing the chat pipeline
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	draft := &invoice.InvoiceDraft{
		TenantID:      tenantID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Currency:      valueobject.Currency(req.Currency),
		Description:   req.Description,
		DueDate:       req.DueDate,
		CreatedAt:     time.Now(),
	}

	if req.Amount != "" {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			h.BadRequest(c, "Invalid amount")
			return
		}
		draft.Amount = amount
	}

	for _, item := range req.LineItems {
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			h.BadRequest(c, "Invalid line item unit price")
			return
		}
		quantity := decimal.NewFromInt(1)
		if item.Quantity != "" {
			quantity, err = decimal.NewFromString(item.Quantity)
			if err != nil {
				h.BadRequest(c, "Invalid line item quantity")
				return
			}
		}
		draft.LineItems = append(draft.LineItems, invoice.NewLineItem(item.Description, quantity, unitPrice))
	}

	inv, err := h.lifecycle.Create(c.Request.Context(), draft)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, inv)
}

// Get returns one invoice scoped to the tenant
func (h *InvoiceHandler) Get(c *gin.Context) {
	tenantID, invoiceID, ok := h.bindInvoiceID(c)
	if !ok {
		return
	}

	inv, err := h.lifecycle.GetByID(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// Confirm records an out-of-band payment the tenant verified themselves
func (h *InvoiceHandler) Confirm(c *gin.Context) {
	tenantID, invoiceID, ok := h.bindInvoiceID(c)
	if !ok {
		return
	}

	inv, err := h.lifecycle.ManualConfirm(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// RequestConfirmation moves a pending invoice to awaiting_confirmation
// and notifies the customer.
func (h *InvoiceHandler) RequestConfirmation(c *gin.Context) {
	tenantID, invoiceID, ok := h.bindInvoiceID(c)
	if !ok {
		return
	}

	inv, err := h.lifecycle.RequestConfirmation(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// Refund marks a paid invoice refunded
func (h *InvoiceHandler) Refund(c *gin.Context) {
	tenantID, invoiceID, ok := h.bindInvoiceID(c)
	if !ok {
		return
	}

	inv, err := h.lifecycle.Refund(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// bindInvoiceID extracts the tenant from claims and the invoice ID from
// the path. Writes the error response itself when either is missing.
func (h *InvoiceHandler) bindInvoiceID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return uuid.Nil, uuid.Nil, false
	}

	invoiceID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return uuid.Nil, uuid.Nil, false
	}

	return tenantID, invoiceID, true
}
