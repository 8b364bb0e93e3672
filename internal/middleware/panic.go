package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	apperrors "github.com/Alturino/catalog/internal/errors"
	inHttp "github.com/Alturino/catalog/internal/http"
	"github.com/Alturino/catalog/internal/otel"
)

func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, span := otel.Tracer.Start(r.Context(), "RecoverPanic")
		defer span.End()

		logger := zerolog.Ctx(c).With().Logger()
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				logger.Error().Err(err).Stack().Msg("recovered from panic")
				otel.RecordError(err, span)
				inHttp.WriteErrorResponse(c, w, apperrors.Wrap(apperrors.KindInternal, err))
				return
			}
		}()

		next.ServeHTTP(w, r)
	})
}
