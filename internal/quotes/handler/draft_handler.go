package handler

import (
	"net/http"

	"artisan_backend/internal/quotes/service"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/httpkit"
	"artisan_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DraftHandler handles HTTP requests for quote drafts
type DraftHandler struct {
	svc *service.Service
	val *validator.Validator
}

// NewDraftHandler creates a new quote draft handler
func NewDraftHandler(svc *service.Service, val *validator.Validator) *DraftHandler {
	return &DraftHandler{svc: svc, val: val}
}

// RegisterRoutes registers the draft routes
func (h *DraftHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("", h.Save)
	rg.GET("", h.List)
	rg.GET("/recent", h.Recent)
	rg.GET("/by-number/:quoteNumber", h.GetByQuoteNumber)
	rg.DELETE("/by-number/:quoteNumber", h.DeleteByQuoteNumber)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.Delete)
}

func parseOptionalUUID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// Save handles PUT /api/v1/quote-drafts
func (h *DraftHandler) Save(c *gin.Context) {
	var req transport.SaveDraftRequest
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

	result, err := h.svc.SaveDraft(c.Request.Context(), userID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// List handles GET /api/v1/quote-drafts
func (h *DraftHandler) List(c *gin.Context) {
	var req transport.ListDraftsRequest
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

	result, err := h.svc.ListDrafts(c.Request.Context(), userID, parseOptionalUUID(req.ProfileID))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Recent handles GET /api/v1/quote-drafts/recent
func (h *DraftHandler) Recent(c *gin.Context) {
	var req transport.RecentDraftsRequest
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

	result, err := h.svc.LoadRecentDrafts(c.Request.Context(), userID, req.Limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Get handles GET /api/v1/quote-drafts/:id
func (h *DraftHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid draft ID", nil)
		return
	}
	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.LoadDraft(c.Request.Context(), id, userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByQuoteNumber handles GET /api/v1/quote-drafts/by-number/:quoteNumber
func (h *DraftHandler) GetByQuoteNumber(c *gin.Context) {
	var req transport.DraftKeyRequest
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

	result, err := h.svc.LoadDraftByQuoteNumber(c.Request.Context(), userID, parseOptionalUUID(req.ProfileID), c.Param("quoteNumber"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Delete handles DELETE /api/v1/quote-drafts/:id
func (h *DraftHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid draft ID", nil)
		return
	}
	userID, ok := httpkit.MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteDraft(c.Request.Context(), id, userID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "draft deleted"})
}

// DeleteByQuoteNumber handles DELETE /api/v1/quote-drafts/by-number/:quoteNumber
func (h *DraftHandler) DeleteByQuoteNumber(c *gin.Context) {
	var req transport.DraftKeyRequest
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

	err := h.svc.DeleteDraftByQuoteNumber(c.Request.Context(), userID, parseOptionalUUID(req.ProfileID), c.Param("quoteNumber"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "draft deleted"})
}
