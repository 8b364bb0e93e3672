package controller

import (
	"net/http"
	"time"

	"github.com/Alturino/catalog/internal/constants"
	inHttp "github.com/Alturino/catalog/internal/http"
)

var startedAt = time.Now()

// HealthCheck is the only public route; it never passes through the
// credential validator.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	inHttp.WriteJsonResponse(r.Context(), w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "healthy",
		"data": map[string]interface{}{
			"service": constants.AppCatalogService,
			"uptime":  time.Since(startedAt).String(),
		},
	})
}
