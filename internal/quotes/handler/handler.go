package handler

import (
	"net/http"

	"artisan_backend/internal/quotes/service"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/httpkit"
	"artisan_backend/platform/logger"
	"artisan_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidQuoteID   = "invalid quote ID"
)

// Handler handles HTTP requests for quotes
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

// New creates a new quotes handler
func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// RegisterRoutes registers the quote routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/next-number", h.NextQuoteNumber)
	rg.POST("/expirations/process", h.ProcessExpirations)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/convert", h.ConvertToInvoice)
	rg.POST("/:id/expiration-check", h.CheckExpiration)
	rg.GET("/:id/events", h.ListEvents)
	rg.POST("/:id/files/presign", h.PresignFileUpload)
	rg.GET("/:id/files/:fileId/download", h.GetFileDownloadURL)
}

func parseQuoteID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidQuoteID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /api/v1/quotes
func (h *Handler) List(c *gin.Context) {
	var req transport.ListQuotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
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

// Create handles POST /api/v1/quotes
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), userID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

// GetByID handles GET /api/v1/quotes/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
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

// Update handles PUT /api/v1/quotes/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	var req transport.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, userID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// UpdateStatus handles PATCH /api/v1/quotes/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	var req transport.UpdateQuoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.UpdateStatus(c.Request.Context(), id, userID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Delete handles DELETE /api/v1/quotes/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}
	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, userID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "quote deleted"})
}

// ConvertToInvoice handles POST /api/v1/quotes/:id/convert
func (h *Handler) ConvertToInvoice(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}
	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	invoice, err := h.svc.ConvertToInvoice(c.Request.Context(), id, userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, invoice)
}

// CheckExpiration handles POST /api/v1/quotes/:id/expiration-check
func (h *Handler) CheckExpiration(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}
	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.CheckAndUpdateExpiration(c.Request.Context(), id, userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ProcessExpirations handles POST /api/v1/quotes/expirations/process.
// The sweep is scoped to the caller's quotes.
func (h *Handler) ProcessExpirations(c *gin.Context) {
	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.ProcessExpirations(c.Request.Context(), &userID)
	if httpkit.HandleError(c, err) {
		return
	}

	h.log.WithContext(c.Request.Context()).SweepCompleted("api", result.Scanned, result.Processed, result.Expired)
	httpkit.OK(c, result)
}

// NextQuoteNumber handles POST /api/v1/quotes/next-number
func (h *Handler) NextQuoteNumber(c *gin.Context) {
	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.NextQuoteNumber(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ListEvents handles GET /api/v1/quotes/:id/events
func (h *Handler) ListEvents(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}
	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.ListEvents(c.Request.Context(), id, userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// PresignFileUpload handles POST /api/v1/quotes/:id/files/presign
func (h *Handler) PresignFileUpload(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	var req transport.PresignFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.PresignFileUpload(c.Request.Context(), id, userID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetFileDownloadURL handles GET /api/v1/quotes/:id/files/:fileId/download
func (h *Handler) GetFileDownloadURL(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}
	fileID, err := uuid.Parse(c.Param("fileId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid file ID", nil)
		return
	}
	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.FileDownloadURL(c.Request.Context(), id, fileID, userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
