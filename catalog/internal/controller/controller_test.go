package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/catalog/catalog/internal/service"
	"github.com/Alturino/catalog/internal/auth"
)

type errorEnvelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Error      struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter() *mux.Router {
	router := mux.NewRouter()
	router.StrictSlash(true)
	svc := service.NewProductService(nil, 5*time.Second)
	validator := auth.NewTokenValidator("test-secret-key", "hedonify", "catalog-service", 0, nil)
	AttachProductController(router, &svc, validator)
	return router
}

func TestHealthCheckNeedsNoCredential(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.EqualValues(t, http.StatusOK, rec.Code)
	body := map[string]interface{}{}
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.EqualValues(t, "success", body["status"])
}

func TestRouteDispatch(t *testing.T) {
	tests := []struct {
		name               string
		method             string
		path               string
		expectedStatusCode int
		expectedKind       string
	}{
		{
			name:               "given unknown path should return route_not_found",
			method:             http.MethodGet,
			path:               "/api/v1/unknown",
			expectedStatusCode: http.StatusNotFound,
			expectedKind:       "route_not_found",
		},
		{
			name:               "given unsupported method should return route_not_found",
			method:             http.MethodPatch,
			path:               "/api/v1/produtos",
			expectedStatusCode: http.StatusNotFound,
			expectedKind:       "route_not_found",
		},
		{
			name:               "given mutation without credential should return unauthorized before any side effect",
			method:             http.MethodPost,
			path:               "/api/v1/produtos",
			expectedStatusCode: http.StatusUnauthorized,
			expectedKind:       "unauthorized",
		},
		{
			name:               "given read without credential should return unauthorized",
			method:             http.MethodGet,
			path:               "/api/v1/produtos",
			expectedStatusCode: http.StatusUnauthorized,
			expectedKind:       "unauthorized",
		},
		{
			name:               "given malformed uuid path parameter should return validation before auth",
			method:             http.MethodDelete,
			path:               "/api/v1/produtos/not-a-uuid",
			expectedStatusCode: http.StatusBadRequest,
			expectedKind:       "validation",
		},
	}

	router := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.EqualValues(t, tt.expectedStatusCode, rec.Code)
			body := errorEnvelope{}
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.EqualValues(t, "failed", body.Status)
			assert.EqualValues(t, tt.expectedStatusCode, body.StatusCode)
			assert.EqualValues(t, tt.expectedKind, body.Error.Kind)
		})
	}
}
