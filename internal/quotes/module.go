// Package quotes provides the quotes domain module: the quote lifecycle,
// drafts, expiration and the public share link.
package quotes

import (
	apphttp "artisan_backend/internal/http"
	"artisan_backend/internal/quotes/handler"
	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/service"
	"artisan_backend/platform/logger"
	"artisan_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module
type Module struct {
	handler       *handler.Handler
	draftHandler  *handler.DraftHandler
	publicHandler *handler.PublicHandler
	service       *service.Service
	repo          *repository.Repository
}

// NewModule creates a new quotes module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{
		handler:       handler.New(svc, val, log),
		draftHandler:  handler.NewDraftHandler(svc, val),
		publicHandler: handler.NewPublicHandler(svc),
		service:       svc,
		repo:          repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for maintenance jobs
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/quotes"))
	m.draftHandler.RegisterRoutes(ctx.Protected.Group("/quote-drafts"))

	// Public routes: no auth middleware, rate limited per IP
	publicQuotes := ctx.V1.Group("/public/quotes")
	if ctx.PublicRateLimiter != nil {
		publicQuotes.Use(ctx.PublicRateLimiter.RateLimit())
	}
	m.publicHandler.RegisterRoutes(publicQuotes)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
