package middleware

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	apperrors "github.com/Alturino/catalog/internal/errors"
	inHttp "github.com/Alturino/catalog/internal/http"
	"github.com/Alturino/catalog/internal/log"
)

// PathUUID rejects malformed uuid path parameters before authorization runs,
// so a bad request never reaches the credential validator.
func PathUUID(params []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).
			With().
			Str(log.KeyTag, "middleware PathUUID").
			Logger()
		c := logger.WithContext(r.Context())

		pathValues := mux.Vars(r)
		for _, param := range params {
			if _, err := uuid.Parse(pathValues[param]); err != nil {
				err = fmt.Errorf("malformed path parameter %s with error=%w", param, err)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteErrorResponse(c, w, apperrors.Wrap(apperrors.KindValidation, err))
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(c))
	})
}
