package handler

import (
	"net/http"
	"strings"

	"artisan_backend/internal/quotes/service"
	"artisan_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// PublicHandler handles unauthenticated HTTP requests for shared quotes.
type PublicHandler struct {
	svc *service.Service
}

// NewPublicHandler creates a new public quotes handler.
func NewPublicHandler(svc *service.Service) *PublicHandler {
	return &PublicHandler{svc: svc}
}

// RegisterRoutes registers the public quote routes (no auth middleware).
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:token", h.GetPublicQuote)
}

// GetPublicQuote handles GET /api/v1/public/quotes/:token
func (h *PublicHandler) GetPublicQuote(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		httpkit.Error(c, http.StatusBadRequest, "token is required", nil)
		return
	}

	result, err := h.svc.ViewShared(c.Request.Context(), token, service.AccessInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
