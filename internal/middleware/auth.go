package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Alturino/catalog/internal/auth"
	apperrors "github.com/Alturino/catalog/internal/errors"
	inHttp "github.com/Alturino/catalog/internal/http"
	"github.com/Alturino/catalog/internal/log"
)

// Auth gates a handler behind credential validation and an optional scope
// requirement. The health route never passes through here.
func Auth(validator auth.TokenValidator, scope string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).
			With().
			Str(log.KeyTag, "middleware Auth").
			Logger()
		c := logger.WithContext(r.Context())

		authorization := r.Header.Get(inHttp.KeyHeaderAuthorization)
		token, found := strings.CutPrefix(authorization, "Bearer ")
		if !found {
			token, found = strings.CutPrefix(authorization, "bearer ")
		}
		if !found {
			token = ""
		}

		identity, err := validator.Validate(c, token)
		if err != nil {
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}

		if scope != "" && !identity.HasScope(scope) {
			logger.Error().
				Err(apperrors.ErrScopeMissing).
				Str("requiredScope", scope).
				Msg(apperrors.ErrScopeMissing.Error())
			inHttp.WriteErrorResponse(c, w, apperrors.ErrScopeMissing)
			return
		}

		logger = logger.With().Str(log.KeyPrincipal, identity.Principal.String()).Logger()
		logger.Debug().Msg("authorized request")
		c = auth.AttachIdentityToContext(c, identity)
		c = logger.WithContext(c)
		next.ServeHTTP(w, r.WithContext(c))
	})
}
