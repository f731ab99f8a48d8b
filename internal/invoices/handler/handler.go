package handler

import (
	"net/http"

	"artisan_backend/internal/invoices/service"
	"artisan_backend/internal/invoices/transport"
	"artisan_backend/platform/httpkit"
	"artisan_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for invoices
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new invoices handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the invoice routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
}

// List handles GET /api/v1/invoices
func (h *Handler) List(c *gin.Context) {
	var req transport.ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), userID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/invoices/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid invoice ID", nil)
		return
	}
	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id, userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
