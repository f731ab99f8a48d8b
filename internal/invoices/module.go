// Package invoices provides the invoices created from converted quotes.
package invoices

import (
	apphttp "artisan_backend/internal/http"
	"artisan_backend/internal/invoices/handler"
	"artisan_backend/internal/invoices/repository"
	"artisan_backend/internal/invoices/service"
	"artisan_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the invoices domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new invoices module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	svc := service.New(repository.New(pool))
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "invoices"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/invoices"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
