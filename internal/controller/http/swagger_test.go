package http

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerHandler(t *testing.T) {
	spec := []byte("openapi: 3.0.3\ninfo:\n  title: Test\npaths:\n  /x:\n    get:\n      responses:\n        '200':\n          description: OK\n")

	r := chi.NewRouter()
	NewSwaggerHandler("Test API", spec).RegisterRoutes(r)

	rec := do(t, r, http.MethodGet, "/docs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Test API - API Documentation")

	rec = do(t, r, http.MethodGet, "/docs/openapi.yaml", "")
	assert.Equal(t, spec, rec.Body.Bytes())

	rec = do(t, r, http.MethodGet, "/docs/openapi.json", "")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"openapi":"3.0.3","info":{"title":"Test"},"paths":{"/x":{"get":{"responses":{"200":{"description":"OK"}}}}}}`, rec.Body.String())
}
