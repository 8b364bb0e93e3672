package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	apperrors "github.com/Alturino/catalog/internal/errors"
	"github.com/Alturino/catalog/internal/otel"
)

func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str("tag", "WriteJsonResponse").Logger()

	w.Header().Add(KeyHeaderContentType, ValueHeaderApplicationJson)
	for k, v := range header {
		w.Header().Add(k, v)
	}

	if v, ok := body["statusCode"]; ok {
		w.WriteHeader(v.(int))
	}

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
}

// WriteErrorResponse is the single response-shaping point for failures.
// Domain errors pass through with their own kind; anything untyped surfaces
// as the internal kind so downstream detail never leaks to the caller.
func WriteErrorResponse(c context.Context, w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	statusCode := apperrors.StatusCode(err)
	message := err.Error()
	if kind == apperrors.KindInternal {
		message = "internal server error"
	}
	WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": statusCode,
		"error": map[string]interface{}{
			"kind":    kind,
			"message": message,
		},
	})
}
