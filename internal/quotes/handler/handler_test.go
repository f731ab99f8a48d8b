package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"artisan_backend/internal/quotes/service"
	"artisan_backend/platform/httpkit"
	"artisan_backend/platform/logger"
	"artisan_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// newTestEngine mounts the handlers over a service without a store; every
// request below is rejected before the service is reached.
func newTestEngine(authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	svc := service.New(nil, logger.Discard())
	group := engine.Group("/quotes")
	if authenticated {
		group.Use(func(c *gin.Context) {
			c.Set(httpkit.ContextUserIDKey, uuid.New())
			c.Next()
		})
	}
	New(svc, validator.New(), logger.Discard()).RegisterRoutes(group)
	NewDraftHandler(svc, validator.New()).RegisterRoutes(engine.Group("/quote-drafts"))
	return engine
}

func serve(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestInvalidQuoteIDIsBadRequest(t *testing.T) {
	engine := newTestEngine(true)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/quotes/not-a-uuid", ""},
		{http.MethodPatch, "/quotes/not-a-uuid/status", `{"status":"sent"}`},
		{http.MethodPost, "/quotes/not-a-uuid/convert", ""},
		{http.MethodDelete, "/quotes/not-a-uuid", ""},
	} {
		rec := serve(engine, tc.method, tc.path, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s %s: expected 400, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestStatusEndpointValidatesTarget(t *testing.T) {
	engine := newTestEngine(true)
	path := "/quotes/" + uuid.NewString() + "/status"

	for _, body := range []string{`{"status":"expired"}`, `{"status":"converted_to_invoice"}`, `{}`, `{"status":"sent","emailOverride":"not-an-email"}`} {
		rec := serve(engine, http.MethodPatch, path, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestCreateRejectsMalformedJSON(t *testing.T) {
	engine := newTestEngine(true)

	rec := serve(engine, http.MethodPost, "/quotes", `{"quoteNumber":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListValidatesQuery(t *testing.T) {
	engine := newTestEngine(true)

	rec := serve(engine, http.MethodGet, "/quotes?pageSize=500", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized page, got %d", rec.Code)
	}

	rec = serve(engine, http.MethodGet, "/quotes?status=archived", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestMissingIdentityIsUnauthorized(t *testing.T) {
	engine := newTestEngine(false)

	rec := serve(engine, http.MethodGet, "/quotes/"+uuid.NewString(), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = serve(engine, http.MethodGet, "/quote-drafts", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on drafts, got %d", rec.Code)
	}
}
